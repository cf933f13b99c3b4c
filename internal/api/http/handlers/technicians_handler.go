package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/service"
)

// TechniciansHandler lists technicians and categories.
type TechniciansHandler struct {
	technicians *service.TechnicianService
	categories  *service.CategoryService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicians *service.TechnicianService, categories *service.CategoryService) *TechniciansHandler {
	return &TechniciansHandler{technicians: technicians, categories: categories}
}

// List GET /api/technicians?category=.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	techs, err := h.technicians.GetAllWithSkills(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(techs))
	for i := range techs {
		items = append(items, technicianResponse(&techs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/technicians/:id.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	tech, err := h.technicians.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": technicianResponse(tech)})
}

// Create POST /api/technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tech, err := h.technicians.Create(c.UserContext(), service.TechnicianInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": technicianResponse(tech)})
}

// SetSkill PUT /api/technicians/:id/skills.
func (h *TechniciansHandler) SetSkill(c *fiber.Ctx) error {
	var req dto.SetSkillRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.technicians.SetSkill(c.UserContext(), c.Params("id"), req.CategoryID, req.Level); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListCategories GET /api/categories.
func (h *TechniciansHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /api/categories.
func (h *TechniciansHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cat, err := h.categories.Create(c.UserContext(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description}})
}
