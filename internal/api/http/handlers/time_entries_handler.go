package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/service"
)

// TimeEntriesHandler exposes manual time tracking.
type TimeEntriesHandler struct {
	service *service.TimeService
}

// NewTimeEntriesHandler constructs handler.
func NewTimeEntriesHandler(timeService *service.TimeService) *TimeEntriesHandler {
	return &TimeEntriesHandler{service: timeService}
}

// List GET /api/tickets/:id/time-entries.
func (h *TimeEntriesHandler) List(c *fiber.Ctx) error {
	sheet, err := h.service.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timesheetResponse(sheet)})
}

// Create POST /api/tickets/:id/time-entries.
func (h *TimeEntriesHandler) Create(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.TimeEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.service.CreateManualEntry(c.UserContext(), principal, service.TimeEntryInput{
		TicketID:     c.Params("id"),
		TechnicianID: req.TechnicianID,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Notes:        req.Notes,
		Billable:     req.Billable,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// Update PUT /api/time-entries/:id.
func (h *TimeEntriesHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.TimeEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.service.UpdateTimeEntry(c.UserContext(), principal, c.Params("id"), service.TimeEntryInput{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Notes:    req.Notes,
		Billable: req.Billable,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// Delete DELETE /api/time-entries/:id.
func (h *TimeEntriesHandler) Delete(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.service.DeleteTimeEntry(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
