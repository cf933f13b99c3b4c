package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

const (
	maxTitleLength   = 200
	defaultListLimit = 50
	maxListLimit     = 200
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	contacts    repository.ContactRepository
	categories  repository.CategoryRepository
	cache       cache.Cache
	statsTTL    time.Duration
	location    *time.Location
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	ContactRepo    repository.ContactRepository
	CategoryRepo   repository.CategoryRepository
	Cache          cache.Cache
	StatsTTL       time.Duration
	Location       *time.Location
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title         string
	Description   string
	Priority      domain.TicketPriority
	CategoryID    *string
	ContactID     *string
	Location      string
	ScheduledDate *time.Time
}

// TicketListFilter describes the filter bar.
type TicketListFilter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	CategoryID   *string
	ContactID    *string
	TechnicianID *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// TicketPage is one page of tickets plus the unpaged total.
type TicketPage struct {
	Tickets []domain.Ticket
	Total   int
	Limit   int
	Offset  int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		contacts:    deps.ContactRepo,
		categories:  deps.CategoryRepo,
		cache:       deps.Cache,
		statsTTL:    deps.StatsTTL,
		location:    loc,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
		now:         time.Now,
	}
}

// Create validates and persists a new ticket.
func (s *TicketService) Create(ctx context.Context, actor *domain.Technician, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperrors.NewValidationError("title is too long", map[string]any{"field": "title", "max": maxTitleLength})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"field": "priority", "value": priority})
	}

	if input.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, apperrors.NotFoundOr(err, "category", map[string]any{"category_id": *input.CategoryID})
		}
		if !category.IsActive {
			return nil, apperrors.NewConflict("category inactive", map[string]any{"category_id": category.ID})
		}
	}
	if input.ContactID != nil {
		if _, err := s.contacts.GetByID(ctx, *input.ContactID); err != nil {
			return nil, apperrors.NotFoundOr(err, "contact", map[string]any{"contact_id": *input.ContactID})
		}
	}

	ticket := &domain.Ticket{
		TicketNumber:  generateTicketNumber(),
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.TicketStatusOpen,
		Priority:      priority,
		CategoryID:    input.CategoryID,
		ContactID:     input.ContactID,
		Location:      strings.TrimSpace(input.Location),
		ScheduledDate: input.ScheduledDate,
		CreatedByID:   actorID(actor),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.String("ticket_number", ticket.TicketNumber))
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    technicianActor(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			CategoryID:   ticket.CategoryID,
			ContactID:    ticket.ContactID,
		},
	})
	return ticket, nil
}

// GetAll returns a page of tickets, newest activity first.
func (s *TicketService) GetAll(ctx context.Context, filter TicketListFilter) (*TicketPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"value": st})
		}
	}
	for _, pr := range filter.Priorities {
		if !pr.Valid() {
			return nil, apperrors.NewValidationError("invalid priority filter", map[string]any{"value": pr})
		}
	}

	tickets, total, err := s.tickets.List(ctx, repository.TicketFilter{
		Statuses:     filter.Statuses,
		Priorities:   filter.Priorities,
		CategoryID:   filter.CategoryID,
		ContactID:    filter.ContactID,
		TechnicianID: filter.TechnicianID,
		SearchTerm:   filter.SearchTerm,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return &TicketPage{Tickets: tickets, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns a ticket with its technician assignments.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}
	assignments, err := s.assignments.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Assignments = assignments
	return ticket, nil
}

// UpdateStatus moves a ticket along its lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Technician, id string, next domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status", "value": next})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}
	if ticket.Status == next {
		return ticket, nil
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}

	old := ticket.Status
	ticket.Status = next
	if next == domain.TicketStatusCompleted {
		now := s.now()
		ticket.CompletedAt = &now
	} else {
		ticket.CompletedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    technicianActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: next,
			Comment:   strings.TrimSpace(comment),
		},
	})
	return ticket, nil
}

// GetStats returns dashboard counters, served from cache when fresh.
func (s *TicketService) GetStats(ctx context.Context) (*domain.TicketStats, error) {
	var cached domain.TicketStats
	if cacheGet(ctx, s.cache, s.logger, cache.KeyTicketStats, &cached) {
		return &cached, nil
	}

	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	stats, err := s.tickets.Stats(ctx, dayStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	cacheSet(ctx, s.cache, s.logger, cache.KeyTicketStats, stats, s.statsTTL)
	return stats, nil
}

func generateTicketNumber() string {
	return "SVC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
