package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusScheduled  TicketStatus = "SCHEDULED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusScheduled, TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusScheduled:  {TicketStatusInProgress, TicketStatusOnHold, TicketStatusOpen, TicketStatusCancelled},
	TicketStatusInProgress: {TicketStatusOnHold, TicketStatusCompleted, TicketStatusCancelled},
	TicketStatusOnHold:     {TicketStatusScheduled, TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusCompleted:  {},
	TicketStatusCancelled:  {},
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Ticket is a customer service request.
type Ticket struct {
	ID            string
	TicketNumber  string
	Title         string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	CategoryID    *string
	ContactID     *string
	Location      string
	ScheduledDate *time.Time
	CreatedByID   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time

	Assignments []TicketAssignment
}

// TicketAssignment links a technician to a ticket.
type TicketAssignment struct {
	TicketID     string
	TechnicianID string
	IsLead       bool
	AssignedByID *string
	AssignedAt   time.Time

	TechnicianName string
}

// TicketStats summarizes the ticket board.
type TicketStats struct {
	Total          int                    `json:"total"`
	Open           int                    `json:"open"`
	UrgentOpen     int                    `json:"urgent_open"`
	Unassigned     int                    `json:"unassigned"`
	CompletedToday int                    `json:"completed_today"`
	LoggedMinutes  int64                  `json:"logged_minutes"`
	ByStatus       map[TicketStatus]int   `json:"by_status"`
	ByPriority     map[TicketPriority]int `json:"by_priority"`
	GeneratedAt    time.Time              `json:"generated_at"`
}
