package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntryRequest payload for creating or updating a manual entry.
type TimeEntryRequest struct {
	TechnicianID string    `json:"technician_id" validate:"omitempty,uuid"`
	CheckIn      time.Time `json:"check_in" validate:"required"`
	CheckOut     time.Time `json:"check_out" validate:"required"`
	Notes        string    `json:"notes" validate:"max=2000"`
	Billable     bool      `json:"billable"`
}

// TimeEntryResponse response.
type TimeEntryResponse struct {
	ID              string          `json:"id"`
	TicketID        string          `json:"ticket_id"`
	TechnicianID    string          `json:"technician_id"`
	TechnicianName  string          `json:"technician_name"`
	CheckIn         time.Time       `json:"check_in"`
	CheckOut        time.Time       `json:"check_out"`
	DurationMinutes int             `json:"duration_minutes"`
	Duration        string          `json:"duration"`
	Notes           string          `json:"notes"`
	IsManual        bool            `json:"is_manual"`
	Billable        bool            `json:"billable"`
	BillableAmount  decimal.Decimal `json:"billable_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TimesheetResponse lists entries with totals.
type TimesheetResponse struct {
	Entries        []TimeEntryResponse `json:"entries"`
	TotalMinutes   int                 `json:"total_minutes"`
	Total          string              `json:"total"`
	BillableAmount decimal.Decimal     `json:"billable_amount"`
}
