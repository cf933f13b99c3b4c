package domain

import "time"

// ActivityAction captures what happened on a ticket.
type ActivityAction string

const (
	ActionTicketCreated      ActivityAction = "TICKET_CREATED"
	ActionStatusChanged      ActivityAction = "STATUS_CHANGED"
	ActionTechnicianAssigned ActivityAction = "TECHNICIAN_ASSIGNED"
	ActionTechnicianRemoved  ActivityAction = "TECHNICIAN_REMOVED"
	ActionTimeLogged         ActivityAction = "TIME_LOGGED"
	ActionTimeUpdated        ActivityAction = "TIME_UPDATED"
	ActionTimeDeleted        ActivityAction = "TIME_DELETED"
	ActionScheduled          ActivityAction = "SCHEDULED"
	ActionScheduleCancelled  ActivityAction = "SCHEDULE_CANCELLED"
)

// Activity is an immutable audit trail entry.
type Activity struct {
	ID          string
	TicketID    string
	ActorID     *string
	ActorName   string
	Action      ActivityAction
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
