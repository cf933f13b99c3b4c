package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is a logged work interval for a technician on a ticket.
type TimeEntry struct {
	ID              string
	TicketID        string
	TechnicianID    string
	CheckIn         time.Time
	CheckOut        time.Time
	DurationMinutes int
	Notes           string
	IsManual        bool
	Billable        bool
	BillableAmount  decimal.Decimal
	CreatedByID     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	TechnicianName string
}
