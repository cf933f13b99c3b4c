package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// AuthService coordinates staff login.
type AuthService struct {
	technicians repository.TechnicianRepository
	tokenMgr    *auth.TokenManager
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	TechnicianRepo repository.TechnicianRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		technicians: deps.TechnicianRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// Login authenticates a technician and returns a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Technician, string, time.Time, error) {
	tech, err := s.technicians.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if de := apperrors.ToDomainError(err); de.Code == "NOT_FOUND" {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(tech.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !tech.Active {
		return nil, "", time.Time{}, apperrors.NewForbidden("technician inactive")
	}
	token, exp, err := s.tokenMgr.GenerateToken(tech.ID, tech.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return tech, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
