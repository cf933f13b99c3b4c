package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// ScheduleService backs the weekly planning bar.
type ScheduleService struct {
	slots       repository.ScheduleRepository
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	cache       cache.Cache
	buffer      time.Duration
	location    *time.Location
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// ScheduleDependencies bundles collaborators.
type ScheduleDependencies struct {
	ScheduleRepo   repository.ScheduleRepository
	TicketRepo     repository.TicketRepository
	TechnicianRepo repository.TechnicianRepository
	Cache          cache.Cache
	Buffer         time.Duration
	Location       *time.Location
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// SlotInput requests a new slot.
type SlotInput struct {
	TicketID     string
	TechnicianID string
	StartsAt     time.Time
	EndsAt       time.Time
	Notes        string
}

// NewScheduleService builds the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	buffer := deps.Buffer
	if buffer < 0 {
		buffer = 0
	}
	return &ScheduleService{
		slots:       deps.ScheduleRepo,
		tickets:     deps.TicketRepo,
		technicians: deps.TechnicianRepo,
		cache:       deps.Cache,
		buffer:      buffer,
		location:    loc,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
	}
}

// WeekStart returns Monday 00:00 of the week containing t in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -offset)
}

// Week returns the seven day buckets of the week containing start.
func (s *ScheduleService) Week(ctx context.Context, start time.Time, technicianID *string) (*domain.Week, error) {
	monday := WeekStart(start, s.location)
	end := monday.AddDate(0, 0, 7)

	slots, err := s.slots.ListRange(ctx, monday, end, technicianID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	week := &domain.Week{Start: monday, End: end, Days: make([]domain.WeekDay, 7)}
	for i := range week.Days {
		week.Days[i] = domain.WeekDay{Date: monday.AddDate(0, 0, i), Slots: []domain.ScheduleSlot{}}
	}
	for _, slot := range slots {
		// Day buckets are walked by date since DST days are not 24h long.
		idx := 0
		for i := 6; i > 0; i-- {
			if !slot.StartsAt.Before(week.Days[i].Date) {
				idx = i
				break
			}
		}
		week.Days[idx].Slots = append(week.Days[idx].Slots, slot)
	}
	return week, nil
}

// CreateSlot books a technician onto a ticket, keeping the buffer to other visits.
func (s *ScheduleService) CreateSlot(ctx context.Context, actor *domain.Technician, input SlotInput) (*domain.ScheduleSlot, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("technician required")
	}
	if !actor.Role.CanDispatch() && actor.ID != input.TechnicianID {
		return nil, apperrors.NewForbidden("only dispatchers may schedule other technicians")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return nil, apperrors.NewValidationError("start and end are required", nil)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, apperrors.NewValidationError("end must be after start", map[string]any{
			"starts_at": input.StartsAt,
			"ends_at":   input.EndsAt,
		})
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": input.TicketID})
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"status": ticket.Status})
	}
	tech, err := s.technicians.GetByID(ctx, input.TechnicianID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": input.TechnicianID})
	}
	if !tech.Active {
		return nil, apperrors.NewConflict("technician inactive", map[string]any{"technician_id": tech.ID})
	}

	slot := domain.ScheduleSlot{
		TicketID:       ticket.ID,
		TechnicianID:   tech.ID,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		Status:         domain.SlotStatusPlanned,
		Notes:          strings.TrimSpace(input.Notes),
		CreatedByID:    actorID(actor),
		TicketNumber:   ticket.TicketNumber,
		TicketTitle:    ticket.Title,
		TechnicianName: tech.Name,
	}

	techID := tech.ID
	nearby, err := s.slots.ListRange(ctx, input.StartsAt.Add(-s.buffer), input.EndsAt.Add(s.buffer), &techID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, other := range nearby {
		if slot.Overlaps(other, s.buffer) {
			return nil, apperrors.NewConflict("technician is already booked near this time", map[string]any{
				"slot_id":        other.ID,
				"ticket_id":      other.TicketID,
				"starts_at":      other.StartsAt,
				"ends_at":        other.EndsAt,
				"buffer_minutes": int(s.buffer / time.Minute),
			})
		}
	}

	if err := s.slots.Create(ctx, &slot); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("slot scheduled",
		zap.String("slot_id", slot.ID),
		zap.String("ticket_id", slot.TicketID),
		zap.String("technician_id", slot.TechnicianID),
		zap.Time("starts_at", slot.StartsAt))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventSlotScheduled,
		TicketID: ticket.ID,
		Actor:    technicianActor(actor),
		Payload: events.SlotPayload{
			SlotID:       slot.ID,
			TechnicianID: slot.TechnicianID,
			StartsAt:     slot.StartsAt,
			EndsAt:       slot.EndsAt,
		},
	})

	if ticket.Status == domain.TicketStatusOpen {
		old := ticket.Status
		ticket.Status = domain.TicketStatusScheduled
		if ticket.ScheduledDate == nil {
			when := slot.StartsAt
			ticket.ScheduledDate = &when
		}
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    technicianActor(actor),
			Payload:  events.TicketStatusChangedPayload{OldStatus: old, NewStatus: ticket.Status},
		})
	}
	return &slot, nil
}

// CancelSlot frees a slot. Cancelled slots no longer block the buffer.
func (s *ScheduleService) CancelSlot(ctx context.Context, actor *domain.Technician, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("technician required")
	}
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return apperrors.NotFoundOr(err, "schedule slot", map[string]any{"slot_id": id})
	}
	if !actor.Role.CanDispatch() && actor.ID != slot.TechnicianID {
		return apperrors.NewForbidden("only dispatchers may cancel other technicians' slots")
	}
	if slot.Status == domain.SlotStatusCancelled {
		return nil
	}
	if err := s.slots.UpdateStatus(ctx, id, domain.SlotStatusCancelled); err != nil {
		return apperrors.NotFoundOr(err, "schedule slot", map[string]any{"slot_id": id})
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventSlotCancelled,
		TicketID: slot.TicketID,
		Actor:    technicianActor(actor),
		Payload: events.SlotPayload{
			SlotID:       slot.ID,
			TechnicianID: slot.TechnicianID,
			StartsAt:     slot.StartsAt,
			EndsAt:       slot.EndsAt,
		},
	})
	return nil
}
