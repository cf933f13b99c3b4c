package dto

import "time"

// CreateSlotRequest payload.
type CreateSlotRequest struct {
	TicketID     string    `json:"ticket_id" validate:"required,uuid"`
	TechnicianID string    `json:"technician_id" validate:"required,uuid"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
	Notes        string    `json:"notes" validate:"max=1000"`
}

// SlotResponse response.
type SlotResponse struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticket_id"`
	TicketNumber   string    `json:"ticket_number"`
	TicketTitle    string    `json:"ticket_title"`
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
}

// WeekDayResponse is one planner column.
type WeekDayResponse struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Slots   []SlotResponse `json:"slots"`
}

// WeekResponse is the weekly planning bar.
type WeekResponse struct {
	Start string            `json:"start"`
	End   string            `json:"end"`
	Days  []WeekDayResponse `json:"days"`
}
