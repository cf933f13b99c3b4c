package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

var minutesPerHour = decimal.NewFromInt(60)

// TimeService manages time entries on tickets.
type TimeService struct {
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	entries     repository.TimeEntryRepository
	cache       cache.Cache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TimeDependencies bundles collaborators.
type TimeDependencies struct {
	TicketRepo     repository.TicketRepository
	TechnicianRepo repository.TechnicianRepository
	TimeEntryRepo  repository.TimeEntryRepository
	Cache          cache.Cache
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// TimeEntryInput is the payload for a manual time entry.
// TechnicianID empty means the acting technician.
type TimeEntryInput struct {
	TicketID     string
	TechnicianID string
	CheckIn      time.Time
	CheckOut     time.Time
	Notes        string
	Billable     bool
}

// Timesheet lists a ticket's entries with totals.
type Timesheet struct {
	Entries        []domain.TimeEntry
	Total          Duration
	BillableAmount decimal.Decimal
}

// NewTimeService builds the service.
func NewTimeService(deps TimeDependencies) *TimeService {
	return &TimeService{
		tickets:     deps.TicketRepo,
		technicians: deps.TechnicianRepo,
		entries:     deps.TimeEntryRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
	}
}

// CreateManualEntry logs a manual interval for a technician on a ticket.
func (s *TimeService) CreateManualEntry(ctx context.Context, actor *domain.Technician, input TimeEntryInput) (*domain.TimeEntry, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("technician required")
	}
	duration, err := CalculateDuration(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}
	technicianID := strings.TrimSpace(input.TechnicianID)
	if technicianID == "" {
		technicianID = actor.ID
	}
	if err := canActFor(actor, technicianID); err != nil {
		return nil, err
	}

	if _, err := s.tickets.GetByID(ctx, input.TicketID); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": input.TicketID})
	}
	tech, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": technicianID})
	}

	entry := &domain.TimeEntry{
		TicketID:        input.TicketID,
		TechnicianID:    tech.ID,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		DurationMinutes: duration.TotalMinutes,
		Notes:           strings.TrimSpace(input.Notes),
		IsManual:        true,
		Billable:        input.Billable,
		BillableAmount:  billableAmount(tech.HourlyRate, duration.TotalMinutes, input.Billable),
		CreatedByID:     actorID(actor),
		TechnicianName:  tech.Name,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("time entry logged",
		zap.String("ticket_id", entry.TicketID),
		zap.String("technician_id", entry.TechnicianID),
		zap.Int("minutes", entry.DurationMinutes))
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTimeEntryLogged,
		TicketID: entry.TicketID,
		Actor:    technicianActor(actor),
		Payload: events.TimeEntryPayload{
			TimeEntryID:     entry.ID,
			TechnicianID:    entry.TechnicianID,
			DurationMinutes: entry.DurationMinutes,
		},
	})
	return entry, nil
}

// UpdateTimeEntry rewrites an entry's interval, notes and billing flag.
func (s *TimeService) UpdateTimeEntry(ctx context.Context, actor *domain.Technician, id string, input TimeEntryInput) (*domain.TimeEntry, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("technician required")
	}
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "time entry", map[string]any{"time_entry_id": id})
	}
	if err := canActFor(actor, entry.TechnicianID); err != nil {
		return nil, err
	}
	duration, err := CalculateDuration(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}
	tech, err := s.technicians.GetByID(ctx, entry.TechnicianID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": entry.TechnicianID})
	}

	previous := entry.DurationMinutes
	entry.CheckIn = input.CheckIn
	entry.CheckOut = input.CheckOut
	entry.DurationMinutes = duration.TotalMinutes
	entry.Notes = strings.TrimSpace(input.Notes)
	entry.Billable = input.Billable
	entry.BillableAmount = billableAmount(tech.HourlyRate, duration.TotalMinutes, input.Billable)
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTimeEntryUpdated,
		TicketID: entry.TicketID,
		Actor:    technicianActor(actor),
		Payload: events.TimeEntryPayload{
			TimeEntryID:     entry.ID,
			TechnicianID:    entry.TechnicianID,
			DurationMinutes: entry.DurationMinutes,
			PreviousMinutes: previous,
		},
	})
	return entry, nil
}

// DeleteTimeEntry removes an entry.
func (s *TimeService) DeleteTimeEntry(ctx context.Context, actor *domain.Technician, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("technician required")
	}
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return apperrors.NotFoundOr(err, "time entry", map[string]any{"time_entry_id": id})
	}
	if err := canActFor(actor, entry.TechnicianID); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return apperrors.NotFoundOr(err, "time entry", map[string]any{"time_entry_id": id})
	}
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTimeEntryDeleted,
		TicketID: entry.TicketID,
		Actor:    technicianActor(actor),
		Payload: events.TimeEntryPayload{
			TimeEntryID:     entry.ID,
			TechnicianID:    entry.TechnicianID,
			DurationMinutes: entry.DurationMinutes,
		},
	})
	return nil
}

// ListByTicket returns the ticket's timesheet.
func (s *TimeService) ListByTicket(ctx context.Context, ticketID string) (*Timesheet, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	entries, err := s.entries.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	total := 0
	amount := decimal.Zero
	for _, e := range entries {
		total += e.DurationMinutes
		if e.Billable {
			amount = amount.Add(e.BillableAmount)
		}
	}
	return &Timesheet{Entries: entries, Total: DurationFromMinutes(total), BillableAmount: amount}, nil
}

func canActFor(actor *domain.Technician, technicianID string) error {
	if actor.ID == technicianID || actor.Role.CanDispatch() {
		return nil
	}
	return apperrors.NewForbidden("cannot manage time entries of another technician")
}

func billableAmount(rate decimal.Decimal, minutes int, billable bool) decimal.Decimal {
	if !billable {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour).Round(2)
}
