package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the technician.
type AuthMiddleware struct {
	tokens      *TokenManager
	technicians repository.TechnicianRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, technicians repository.TechnicianRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, technicians: technicians}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	tech, err := m.technicians.GetByID(c.UserContext(), claims.TechnicianID)
	if err != nil {
		if de := apperrors.ToDomainError(err); de.Code == "NOT_FOUND" {
			return apperrors.NewUnauthorized("technician not found")
		}
		return apperrors.MapError(err)
	}
	if !tech.Active {
		return apperrors.NewUnauthorized("technician inactive")
	}

	c.Locals(principalKey, tech)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated technician.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Technician, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	tech, ok := val.(*domain.Technician)
	return tech, ok
}

// WithPrincipal stores tech as the caller; used by tests and internal tooling.
func WithPrincipal(c *fiber.Ctx, tech *domain.Technician) {
	c.Locals(principalKey, tech)
}
