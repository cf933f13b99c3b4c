package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/domain"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.TechnicianRole) fiber.Handler {
	allowedSet := make(map[domain.TechnicianRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		tech, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[tech.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireDispatcher allows dispatchers and admins.
func RequireDispatcher() fiber.Handler {
	return RequireRole(domain.RoleDispatcher, domain.RoleAdmin)
}
