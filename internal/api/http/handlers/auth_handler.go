package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/service"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// AuthHandler exposes login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tech, token, exp, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:      token,
		ExpiresAt:  exp,
		Technician: technicianResponse(tech),
	}})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	tech, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": technicianResponse(tech)})
}
