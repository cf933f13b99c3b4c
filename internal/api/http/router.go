package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-crm/internal/api/http/handlers"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	TimeEntries    *handlers.TimeEntriesHandler
	Contacts       *handlers.ContactsHandler
	Technicians    *handlers.TechniciansHandler
	Schedule       *handlers.ScheduleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	dispatch := auth.RequireDispatcher()

	api.Get("/me", cfg.Auth.Me)
	api.Get("/metrics", dispatch, cfg.Health.Metrics)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/stats", cfg.Tickets.GetStats)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/assignments", cfg.Tickets.ListAssignments)
	tickets.Post("/:id/assignments", cfg.Tickets.Assign)
	tickets.Delete("/:id/assignments/:technicianId", cfg.Tickets.Unassign)
	tickets.Get("/:id/activity", cfg.Tickets.ListActivity)
	tickets.Get("/:id/time-entries", cfg.TimeEntries.List)
	tickets.Post("/:id/time-entries", cfg.TimeEntries.Create)

	api.Put("/time-entries/:id", cfg.TimeEntries.Update)
	api.Delete("/time-entries/:id", cfg.TimeEntries.Delete)

	api.Get("/contacts/search", cfg.Contacts.Search)
	api.Post("/contacts", cfg.Contacts.Create)
	api.Get("/contacts/:id", cfg.Contacts.Get)

	api.Get("/categories", cfg.Technicians.ListCategories)
	api.Post("/categories", auth.RequireRole(domain.RoleAdmin), cfg.Technicians.CreateCategory)

	api.Get("/technicians", cfg.Technicians.List)
	api.Post("/technicians", auth.RequireRole(domain.RoleAdmin), cfg.Technicians.Create)
	api.Get("/technicians/:id", cfg.Technicians.Get)
	api.Put("/technicians/:id/skills", dispatch, cfg.Technicians.SetSkill)

	schedule := api.Group("/schedule")
	schedule.Get("/week", cfg.Schedule.Week)
	schedule.Post("/slots", cfg.Schedule.CreateSlot)
	schedule.Delete("/slots/:id", cfg.Schedule.CancelSlot)
}
