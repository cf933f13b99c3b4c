package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TechnicianRole enumerates staff roles.
type TechnicianRole string

const (
	RoleTechnician TechnicianRole = "TECHNICIAN"
	RoleDispatcher TechnicianRole = "DISPATCHER"
	RoleAdmin      TechnicianRole = "ADMIN"
)

// CanDispatch reports whether the role may assign and schedule other technicians.
func (r TechnicianRole) CanDispatch() bool {
	return r == RoleDispatcher || r == RoleAdmin
}

// Technician models a staff member assignable to tickets.
type Technician struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         TechnicianRole
	Active       bool
	HourlyRate   decimal.Decimal
	Skills       []TechnicianSkill
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TechnicianSkill records proficiency in a category, 1 (basic) to 5 (expert).
type TechnicianSkill struct {
	CategoryID   string
	CategoryName string
	Level        int
}

// SkillLevel returns the level for categoryID or 0.
func (t Technician) SkillLevel(categoryID string) int {
	for _, s := range t.Skills {
		if s.CategoryID == categoryID {
			return s.Level
		}
	}
	return 0
}
