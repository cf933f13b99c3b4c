package events

import (
	"time"

	"github.com/spec-kit/service-crm/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTechnicianAssigned   EventType = "technician_assigned"
	EventTechnicianUnassigned EventType = "technician_unassigned"
	EventTimeEntryLogged      EventType = "time_entry_logged"
	EventTimeEntryUpdated     EventType = "time_entry_updated"
	EventTimeEntryDeleted     EventType = "time_entry_deleted"
	EventSlotScheduled        EventType = "slot_scheduled"
	EventSlotCancelled        EventType = "slot_cancelled"
)

// AllEventTypes lists every event a subscriber may want to mirror.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTechnicianAssigned,
	EventTechnicianUnassigned,
	EventTimeEntryLogged,
	EventTimeEntryUpdated,
	EventTimeEntryDeleted,
	EventSlotScheduled,
	EventSlotCancelled,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	TechnicianID *string `json:"technician_id,omitempty"`
	Name         string  `json:"name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	CategoryID   *string               `json:"category_id,omitempty"`
	ContactID    *string               `json:"contact_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TechnicianAssignmentPayload payload.
type TechnicianAssignmentPayload struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	IsLead         bool   `json:"is_lead"`
}

// TimeEntryPayload payload.
type TimeEntryPayload struct {
	TimeEntryID     string `json:"time_entry_id"`
	TechnicianID    string `json:"technician_id"`
	DurationMinutes int    `json:"duration_minutes"`
	PreviousMinutes int    `json:"previous_minutes,omitempty"`
}

// SlotPayload payload.
type SlotPayload struct {
	SlotID       string    `json:"slot_id"`
	TechnicianID string    `json:"technician_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
}
