package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/dto"
	"github.com/spec-kit/service-crm/internal/service"
)

// ContactsHandler serves the customer lookup.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// Search GET /api/contacts/search?q=.
func (h *ContactsHandler) Search(c *fiber.Ctx) error {
	contacts, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, contactResponse(&contacts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateContactRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	contact, err := h.service.Create(c.UserContext(), service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Address:   req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": contactResponse(contact)})
}

// Get GET /api/contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	contact, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactResponse(contact)})
}
