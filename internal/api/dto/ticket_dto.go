package dto

import (
	"time"

	"github.com/spec-kit/service-crm/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string                `json:"title" validate:"max=200"`
	Description   string                `json:"description" validate:"max=10000"`
	Priority      domain.TicketPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	CategoryID    *string               `json:"category_id" validate:"omitempty,uuid"`
	ContactID     *string               `json:"contact_id" validate:"omitempty,uuid"`
	Location      string                `json:"location" validate:"max=500"`
	ScheduledDate *time.Time            `json:"scheduled_date"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status" validate:"required"`
	Comment string              `json:"comment" validate:"max=2000"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technician_id" validate:"required,uuid"`
	IsLead       bool   `json:"is_lead"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	CategoryID    *string               `json:"category_id"`
	ContactID     *string               `json:"contact_id"`
	Location      string                `json:"location"`
	ScheduledDate *time.Time            `json:"scheduled_date"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string               `json:"description"`
	CreatedByID *string              `json:"created_by_id"`
	CompletedAt *time.Time           `json:"completed_at"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Items  []TicketSummary `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// AssignmentResponse describes a technician on a ticket.
type AssignmentResponse struct {
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	IsLead         bool      `json:"is_lead"`
	AssignedByID   *string   `json:"assigned_by_id"`
	AssignedAt     time.Time `json:"assigned_at"`
}

// ActivityResponse is one history line.
type ActivityResponse struct {
	ID          string                `json:"id"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	ActorID     *string               `json:"actor_id"`
	ActorName   string                `json:"actor_name"`
	Metadata    map[string]any        `json:"metadata"`
	CreatedAt   time.Time             `json:"created_at"`
}
