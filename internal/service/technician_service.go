package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// TechnicianService lists and manages technicians.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	categories  repository.CategoryRepository
	bcryptCost  int
	validate    *validator.Validate
	logger      *zap.Logger
}

// TechnicianDependencies bundles collaborators.
type TechnicianDependencies struct {
	TechnicianRepo repository.TechnicianRepository
	CategoryRepo   repository.CategoryRepository
	BcryptCost     int
	Logger         *zap.Logger
}

// TechnicianInput is the payload for a new technician account.
type TechnicianInput struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	Role       domain.TechnicianRole
	HourlyRate decimal.Decimal
}

// NewTechnicianService builds the service.
func NewTechnicianService(deps TechnicianDependencies) *TechnicianService {
	return &TechnicianService{
		technicians: deps.TechnicianRepo,
		categories:  deps.CategoryRepo,
		bcryptCost:  deps.BcryptCost,
		validate:    validator.New(),
		logger:      orNop(deps.Logger),
	}
}

// GetAll returns active technicians ordered by name.
func (s *TechnicianService) GetAll(ctx context.Context) ([]domain.Technician, error) {
	techs, err := s.technicians.List(ctx, repository.TechnicianFilter{Active: ptrBool(true)})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if techs == nil {
		techs = []domain.Technician{}
	}
	return techs, nil
}

// GetAllWithSkills returns active technicians skilled in category, best first.
// An empty category falls back to GetAll.
func (s *TechnicianService) GetAllWithSkills(ctx context.Context, categoryID string) ([]domain.Technician, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return s.GetAll(ctx)
	}
	techs, err := s.technicians.List(ctx, repository.TechnicianFilter{Active: ptrBool(true), CategoryID: &categoryID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if techs == nil {
		techs = []domain.Technician{}
	}
	return techs, nil
}

// Get returns a technician by id.
func (s *TechnicianService) Get(ctx context.Context, id string) (*domain.Technician, error) {
	tech, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": id})
	}
	return tech, nil
}

// Create registers a technician with a hashed password.
func (s *TechnicianService) Create(ctx context.Context, input TechnicianInput) (*domain.Technician, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", map[string]any{"field": "password"})
	}
	role := input.Role
	if role == "" {
		role = domain.RoleTechnician
	}
	switch role {
	case domain.RoleTechnician, domain.RoleDispatcher, domain.RoleAdmin:
	default:
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role", "value": role})
	}
	if input.HourlyRate.IsNegative() {
		return nil, apperrors.NewValidationError("hourly rate cannot be negative", map[string]any{"field": "hourly_rate"})
	}

	if _, err := s.technicians.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if de := apperrors.ToDomainError(err); de.Code != "NOT_FOUND" {
		return nil, de
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tech := &domain.Technician{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		HourlyRate:   input.HourlyRate,
	}
	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("technician created", zap.String("technician_id", tech.ID), zap.String("role", string(role)))
	return tech, nil
}

// SetSkill records a technician's level in a category.
func (s *TechnicianService) SetSkill(ctx context.Context, technicianID, categoryID string, level int) error {
	if level < 1 || level > 5 {
		return apperrors.NewValidationError("skill level must be between 1 and 5", map[string]any{"field": "level", "value": level})
	}
	if _, err := s.technicians.GetByID(ctx, technicianID); err != nil {
		return apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": technicianID})
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return apperrors.NotFoundOr(err, "category", map[string]any{"category_id": categoryID})
	}
	if err := s.technicians.SetSkill(ctx, technicianID, domain.TechnicianSkill{CategoryID: categoryID, Level: level}); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
