package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/api/http/handlers"
	"github.com/spec-kit/service-crm/internal/auth"
	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/observability"
	"github.com/spec-kit/service-crm/internal/service"
)

const testPassword = "correct-horse"

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	app        *fiber.App
	store      *store
	dispatcher string
	field      string
	fieldID    string
	ticketID   string
	categoryID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60}}
	st := newStore()
	ctx := context.Background()

	hash, err := auth.HashPassword(testPassword, 4)
	require.NoError(t, err)

	techs := technicianRepo{st}
	dispatcher := &domain.Technician{Name: "Dana", Email: "dana@example.com", PasswordHash: hash, Role: domain.RoleDispatcher, Active: true}
	field := &domain.Technician{Name: "Sam", Email: "sam@example.com", PasswordHash: hash, Role: domain.RoleTechnician, Active: true, HourlyRate: decimal.NewFromInt(60)}
	require.NoError(t, techs.Create(ctx, dispatcher))
	require.NoError(t, techs.Create(ctx, field))

	category := &domain.Category{Name: "Plumbing", IsActive: true}
	require.NoError(t, categoryRepo{st}.Create(ctx, category))
	require.NoError(t, contactRepo{st}.Create(ctx, &domain.Contact{FirstName: "Alice", LastName: "Archer", Email: "alice@example.com"}))

	ticket := &domain.Ticket{TicketNumber: "SVC-SEED0001", Title: "Leaking tap", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium}
	require.NoError(t, ticketRepo{st}.Create(ctx, ticket))
	st.ticketCreates = 0

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	memCache := cache.NewMemory()
	bus := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(cfg, service.AuthDependencies{TechnicianRepo: techs})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo{st},
		AssignmentRepo: assignmentRepo{st},
		ContactRepo:    contactRepo{st},
		CategoryRepo:   categoryRepo{st},
		Cache:          memCache,
		StatsTTL:       time.Minute,
		Dispatcher:     bus,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo{st},
		TechnicianRepo: techs,
		AssignmentRepo: assignmentRepo{st},
		Cache:          memCache,
		Dispatcher:     bus,
		Logger:         logger,
	})
	activityService := service.NewActivityService(activityRepo{st}, ticketRepo{st}, time.UTC, logger)
	activityService.RegisterHandlers(bus)
	timeService := service.NewTimeService(service.TimeDependencies{
		TicketRepo:     ticketRepo{st},
		TechnicianRepo: techs,
		TimeEntryRepo:  timeEntryRepo{st},
		Cache:          memCache,
		Dispatcher:     bus,
		Logger:         logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{ContactRepo: contactRepo{st}, Cache: memCache, Logger: logger})
	technicianService := service.NewTechnicianService(service.TechnicianDependencies{TechnicianRepo: techs, CategoryRepo: categoryRepo{st}, BcryptCost: 4, Logger: logger})
	categoryService := service.NewCategoryService(categoryRepo{st}, memCache, time.Minute, logger)
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo:   scheduleRepo{st},
		TicketRepo:     ticketRepo{st},
		TechnicianRepo: techs,
		Cache:          memCache,
		Buffer:         30 * time.Minute,
		Dispatcher:     bus,
		Logger:         logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("service-crm", "test", okPinger{}, okPinger{}, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService, activityService),
		TimeEntries:    handlers.NewTimeEntriesHandler(timeService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Technicians:    handlers.NewTechniciansHandler(technicianService, categoryService),
		Schedule:       handlers.NewScheduleHandler(scheduleService, time.UTC),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), techs),
	})

	dispatcherToken, _, err := authService.TokenManager().GenerateToken(dispatcher.ID, dispatcher.Role)
	require.NoError(t, err)
	fieldToken, _, err := authService.TokenManager().GenerateToken(field.ID, field.Role)
	require.NoError(t, err)

	return &testServer{
		app:        app,
		store:      st,
		dispatcher: dispatcherToken,
		field:      fieldToken,
		fieldID:    field.ID,
		ticketID:   ticket.ID,
		categoryID: category.ID,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func errorCode(payload map[string]any) string {
	e, _ := payload["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "POST", "/auth/login", "", map[string]any{"email": "sam@example.com", "password": testPassword})
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	status, payload = s.do(t, "POST", "/auth/login", "", map[string]any{"email": "sam@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))

	status, payload = s.do(t, "POST", "/auth/login", "", map[string]any{"email": "not-an-email", "password": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := payload["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "Invalid email format", details["email"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/api/tickets", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))

	status, _ = s.do(t, "GET", "/api/tickets", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUnknownRouteMapsToNotFound(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/does-not-exist", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(payload))
}

func TestCreateTicket(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "POST", "/api/tickets", s.field, map[string]any{"title": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))
	assert.Zero(t, s.store.ticketCreates)

	status, payload = s.do(t, "POST", "/api/tickets", s.field, map[string]any{"title": "  Boiler making noise ", "category_id": s.categoryID})
	require.Equal(t, fiber.StatusCreated, status)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "Boiler making noise", data["title"])
	assert.Equal(t, "MEDIUM", data["priority"])
	assert.Equal(t, "OPEN", data["status"])
	assert.Regexp(t, `^SVC-[0-9A-F]{8}$`, data["ticket_number"])
	assert.Equal(t, 1, s.store.ticketCreates)
}

func TestTicketStats(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/api/tickets/stats", s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := payload["data"].(map[string]any)
	assert.EqualValues(t, 1, data["total"])
}

func TestContactSearch(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/api/contacts/search?q=a", s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []any{}, payload["data"])
	assert.Zero(t, s.store.contactQueries)

	status, payload = s.do(t, "GET", "/api/contacts/search?q=ali", s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := payload["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 1, s.store.contactQueries)
}

func TestManualTimeEntryAndActivity(t *testing.T) {
	s := newTestServer(t)
	path := "/api/tickets/" + s.ticketID + "/time-entries"

	status, payload := s.do(t, "POST", path, s.field, map[string]any{
		"check_in":  "2026-10-12T10:00:00Z",
		"check_out": "2026-10-12T11:30:00Z",
		"billable":  true,
	})
	require.Equal(t, fiber.StatusCreated, status)
	data := payload["data"].(map[string]any)
	assert.EqualValues(t, 90, data["duration_minutes"])
	assert.Equal(t, "1h 30m", data["duration"])
	assert.Equal(t, "90", data["billable_amount"])

	status, payload = s.do(t, "POST", path, s.field, map[string]any{
		"check_in":  "2026-10-12T11:30:00Z",
		"check_out": "2026-10-12T10:00:00Z",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	status, payload = s.do(t, "GET", "/api/tickets/"+s.ticketID+"/activity", s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	items := payload["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Logged 1h 30m", items[0].(map[string]any)["description"])
}

func TestScheduleSlotConflict(t *testing.T) {
	s := newTestServer(t)
	slot := func(start, end string) map[string]any {
		return map[string]any{"ticket_id": s.ticketID, "technician_id": s.fieldID, "starts_at": start, "ends_at": end}
	}

	status, payload := s.do(t, "POST", "/api/schedule/slots", s.dispatcher, slot("2026-10-12T09:00:00Z", "2026-10-12T11:00:00Z"))
	require.Equal(t, fiber.StatusCreated, status)
	firstID := payload["data"].(map[string]any)["id"]

	status, payload = s.do(t, "POST", "/api/schedule/slots", s.dispatcher, slot("2026-10-12T11:15:00Z", "2026-10-12T12:00:00Z"))
	assert.Equal(t, fiber.StatusConflict, status)
	details := payload["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, firstID, details["slot_id"])

	status, _ = s.do(t, "POST", "/api/schedule/slots", s.dispatcher, slot("2026-10-12T11:30:00Z", "2026-10-12T12:30:00Z"))
	assert.Equal(t, fiber.StatusCreated, status)

	status, payload = s.do(t, "GET", "/api/tickets/"+s.ticketID, s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "SCHEDULED", payload["data"].(map[string]any)["status"])

	status, payload = s.do(t, "GET", "/api/schedule/week?start=2026-10-14&technician_id="+s.fieldID, s.field, nil)
	require.Equal(t, fiber.StatusOK, status)
	days := payload["data"].(map[string]any)["days"].([]any)
	require.Len(t, days, 7)
	assert.Len(t, days[0].(map[string]any)["slots"], 2)
}

func TestMetricsRequireDispatcher(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/api/metrics", s.field, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(payload))

	status, _ = s.do(t, "GET", "/api/metrics", s.dispatcher, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t)

	status, payload := s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", payload["status"])

	status, payload = s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", payload["status"])
}
