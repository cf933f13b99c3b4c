package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/service"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// ScheduleHandler backs the weekly planning bar.
type ScheduleHandler struct {
	service  *service.ScheduleService
	location *time.Location
	now      func() time.Time
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(scheduleService *service.ScheduleService, location *time.Location) *ScheduleHandler {
	if location == nil {
		location = time.UTC
	}
	return &ScheduleHandler{service: scheduleService, location: location, now: time.Now}
}

// Week GET /api/schedule/week?start=YYYY-MM-DD&technician_id=.
func (h *ScheduleHandler) Week(c *fiber.Ctx) error {
	start := h.now()
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.location)
		if err != nil {
			return apperrors.NewValidationError("start must be YYYY-MM-DD", map[string]any{"start": raw})
		}
		start = parsed
	}
	week, err := h.service.Week(c.UserContext(), start, optionalQuery(c, "technician_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": weekResponse(week)})
}

// CreateSlot POST /api/schedule/slots.
func (h *ScheduleHandler) CreateSlot(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.CreateSlotRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	slot, err := h.service.CreateSlot(c.UserContext(), principal, service.SlotInput{
		TicketID:     req.TicketID,
		TechnicianID: req.TechnicianID,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": slotResponse(slot)})
}

// CancelSlot DELETE /api/schedule/slots/:id.
func (h *ScheduleHandler) CancelSlot(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.service.CancelSlot(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
