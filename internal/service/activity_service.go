package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

const (
	defaultActivityLimit = 100
	maxActivityLimit     = 500
)

// ActivityService keeps the append-only history of each ticket.
type ActivityService struct {
	activity repository.ActivityRepository
	tickets  repository.TicketRepository
	location *time.Location
	logger   *zap.Logger
}

// NewActivityService builds the service. Visit windows in descriptions are
// rendered in loc, UTC when nil.
func NewActivityService(activity repository.ActivityRepository, tickets repository.TicketRepository, loc *time.Location, logger *zap.Logger) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{activity: activity, tickets: tickets, location: loc, logger: orNop(logger)}
}

// GetTicketActivity returns a ticket's history, newest first.
func (s *ActivityService) GetTicketActivity(ctx context.Context, ticketID string, limit int) ([]domain.Activity, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	items, err := s.activity.ListByTicket(ctx, ticketID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.Activity{}
	}
	return items, nil
}

// Record appends an activity entry.
func (s *ActivityService) Record(ctx context.Context, activity *domain.Activity) error {
	if activity == nil || strings.TrimSpace(activity.TicketID) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	if activity.Action == "" {
		return apperrors.NewValidationError("action is required", nil)
	}
	if activity.Metadata == nil {
		activity.Metadata = map[string]any{}
	}
	if err := s.activity.Create(ctx, activity); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RegisterHandlers turns every domain event into an activity entry.
func (s *ActivityService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, s.handleEvent)
	}
}

func (s *ActivityService) handleEvent(ctx context.Context, event events.Event) error {
	activity, ok := ActivityFromEvent(event, s.location)
	if !ok {
		s.logger.Debug("event has no activity mapping", zap.String("event_type", string(event.Type)))
		return nil
	}
	return s.Record(ctx, activity)
}

// ActivityFromEvent maps a domain event to its history entry. Times in the
// description are shown in loc.
func ActivityFromEvent(event events.Event, loc *time.Location) (*domain.Activity, bool) {
	if loc == nil {
		loc = time.UTC
	}
	activity := &domain.Activity{
		TicketID:  event.TicketID,
		ActorID:   event.Actor.TechnicianID,
		ActorName: event.Actor.Name,
		Metadata:  map[string]any{"event_id": event.ID},
	}

	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		activity.Action = domain.ActionTicketCreated
		activity.Description = "Ticket created"
		activity.Metadata["ticket_number"] = p.TicketNumber
		activity.Metadata["priority"] = p.Priority
	case events.TicketStatusChangedPayload:
		activity.Action = domain.ActionStatusChanged
		activity.Description = fmt.Sprintf("Status changed from %s to %s", p.OldStatus, p.NewStatus)
		activity.Metadata["old_status"] = p.OldStatus
		activity.Metadata["new_status"] = p.NewStatus
		if p.Comment != "" {
			activity.Metadata["comment"] = p.Comment
		}
	case events.TechnicianAssignmentPayload:
		role := "Technician"
		if p.IsLead {
			role = "Lead technician"
		}
		if event.Type == events.EventTechnicianUnassigned {
			activity.Action = domain.ActionTechnicianRemoved
			activity.Description = fmt.Sprintf("%s %s removed", role, p.TechnicianName)
		} else {
			activity.Action = domain.ActionTechnicianAssigned
			activity.Description = fmt.Sprintf("%s %s assigned", role, p.TechnicianName)
		}
		activity.Metadata["technician_id"] = p.TechnicianID
		activity.Metadata["is_lead"] = p.IsLead
	case events.TimeEntryPayload:
		logged := DurationFromMinutes(p.DurationMinutes).String()
		switch event.Type {
		case events.EventTimeEntryUpdated:
			activity.Action = domain.ActionTimeUpdated
			activity.Description = fmt.Sprintf("Time entry changed from %s to %s", DurationFromMinutes(p.PreviousMinutes), logged)
		case events.EventTimeEntryDeleted:
			activity.Action = domain.ActionTimeDeleted
			activity.Description = fmt.Sprintf("Time entry of %s deleted", logged)
		default:
			activity.Action = domain.ActionTimeLogged
			activity.Description = "Logged " + logged
		}
		activity.Metadata["time_entry_id"] = p.TimeEntryID
		activity.Metadata["technician_id"] = p.TechnicianID
		activity.Metadata["duration_minutes"] = p.DurationMinutes
	case events.SlotPayload:
		start, end := p.StartsAt.In(loc), p.EndsAt.In(loc)
		window := fmt.Sprintf("%s %s-%s", start.Format("Mon 02 Jan"), start.Format("15:04"), end.Format("15:04"))
		if event.Type == events.EventSlotCancelled {
			activity.Action = domain.ActionScheduleCancelled
			activity.Description = "Visit cancelled for " + window
		} else {
			activity.Action = domain.ActionScheduled
			activity.Description = "Visit scheduled for " + window
		}
		activity.Metadata["slot_id"] = p.SlotID
		activity.Metadata["technician_id"] = p.TechnicianID
	default:
		return nil, false
	}
	return activity, true
}
