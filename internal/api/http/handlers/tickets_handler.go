package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	activity    *service.ActivityService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, activity *service.ActivityService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, activity: activity}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), principal, service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		CategoryID:    req.CategoryID,
		ContactID:     req.ContactID,
		Location:      req.Location,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, err := h.tickets.GetAll(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, ticketSummary(&page.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}})
}

// GetStats GET /api/tickets/stats.
func (h *TicketsHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.tickets.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), principal, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListAssignments GET /api/tickets/:id/assignments.
func (h *TicketsHandler) ListAssignments(c *fiber.Ctx) error {
	list, err := h.assignments.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponses(list)})
}

// Assign POST /api/tickets/:id/assignments.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.AssignTechnicianRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	assignment, err := h.assignments.Assign(c.UserContext(), principal, c.Params("id"), req.TechnicianID, req.IsLead)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// Unassign DELETE /api/tickets/:id/assignments/:technicianId.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.assignments.Unassign(c.UserContext(), principal, c.Params("id"), c.Params("technicianId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListActivity GET /api/tickets/:id/activity.
func (h *TicketsHandler) ListActivity(c *fiber.Ctx) error {
	items, err := h.activity.GetTicketActivity(c.UserContext(), c.Params("id"), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(items)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		CategoryID:   optionalQuery(c, "category_id"),
		ContactID:    optionalQuery(c, "contact_id"),
		TechnicianID: optionalQuery(c, "technician_id"),
		SearchTerm:   optionalQuery(c, "search"),
		Limit:        parseInt(c.Query("limit"), 0),
		Offset:       parseInt(c.Query("offset"), 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(part)))
			}
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(part)))
			}
		}
	}
	return filter
}
