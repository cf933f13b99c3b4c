package domain

import "time"

// SlotStatus enumerates schedule slot states.
type SlotStatus string

const (
	SlotStatusPlanned   SlotStatus = "PLANNED"
	SlotStatusCancelled SlotStatus = "CANCELLED"
)

// ScheduleSlot books a technician onto a ticket for a time window.
type ScheduleSlot struct {
	ID           string
	TicketID     string
	TechnicianID string
	StartsAt     time.Time
	EndsAt       time.Time
	Status       SlotStatus
	Notes        string
	CreatedByID  *string
	CreatedAt    time.Time

	TicketNumber   string
	TicketTitle    string
	TechnicianName string
}

// Overlaps reports whether the two slots are closer than buffer to each other.
func (s ScheduleSlot) Overlaps(other ScheduleSlot, buffer time.Duration) bool {
	return s.StartsAt.Before(other.EndsAt.Add(buffer)) && other.StartsAt.Before(s.EndsAt.Add(buffer))
}

// WeekDay is one column of the weekly planning bar.
type WeekDay struct {
	Date  time.Time
	Slots []ScheduleSlot
}

// Week is seven days starting on Monday.
type Week struct {
	Start time.Time
	End   time.Time
	Days  []WeekDay
}
