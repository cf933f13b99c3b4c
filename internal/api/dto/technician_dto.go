package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/service-crm/internal/domain"
)

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	Name       string                `json:"name" validate:"required,max=200"`
	Email      string                `json:"email" validate:"required,email"`
	Phone      string                `json:"phone" validate:"max=50"`
	Password   string                `json:"password" validate:"required,min=8"`
	Role       domain.TechnicianRole `json:"role" validate:"omitempty,oneof=TECHNICIAN DISPATCHER ADMIN"`
	HourlyRate decimal.Decimal       `json:"hourly_rate"`
}

// SetSkillRequest payload.
type SetSkillRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Level      int    `json:"level" validate:"required,min=1,max=5"`
}

// TechnicianResponse hides credentials.
type TechnicianResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Phone      string                `json:"phone"`
	Role       domain.TechnicianRole `json:"role"`
	Active     bool                  `json:"active"`
	HourlyRate decimal.Decimal       `json:"hourly_rate"`
	Skills     []SkillResponse       `json:"skills"`
}

// SkillResponse is one technician skill.
type SkillResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Level        int    `json:"level"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
