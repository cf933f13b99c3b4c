package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// AssignmentService handles technician assignments on tickets.
type AssignmentService struct {
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	assignments repository.AssignmentRepository
	cache       cache.Cache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	TechnicianRepo repository.TechnicianRepository
	AssignmentRepo repository.AssignmentRepository
	Cache          cache.Cache
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		technicians: deps.TechnicianRepo,
		assignments: deps.AssignmentRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
	}
}

// Assign puts a technician on a ticket. A new lead demotes the previous one.
// Technicians may assign themselves; assigning anybody else needs a dispatcher.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.Technician, ticketID, technicianID string, isLead bool) (*domain.TicketAssignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("technician required")
	}
	if actor.ID != technicianID && !actor.Role.CanDispatch() {
		return nil, apperrors.NewForbidden("only dispatchers may assign other technicians")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"status": ticket.Status})
	}
	tech, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "technician", map[string]any{"technician_id": technicianID})
	}
	if !tech.Active {
		return nil, apperrors.NewConflict("technician inactive", map[string]any{"technician_id": tech.ID})
	}

	current, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, a := range current {
		if a.TechnicianID == technicianID {
			return nil, apperrors.NewConflict("technician already assigned", map[string]any{
				"ticket_id":     ticketID,
				"technician_id": technicianID,
			})
		}
	}

	assignment := &domain.TicketAssignment{
		TicketID:       ticketID,
		TechnicianID:   technicianID,
		IsLead:         isLead,
		AssignedByID:   actorID(actor),
		TechnicianName: tech.Name,
	}
	if err := s.assignments.Add(ctx, assignment); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("technician already assigned", map[string]any{
				"ticket_id":     ticketID,
				"technician_id": technicianID,
			})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("technician assigned",
		zap.String("ticket_id", ticketID),
		zap.String("technician_id", technicianID),
		zap.Bool("lead", isLead))
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTechnicianAssigned,
		TicketID: ticketID,
		Actor:    technicianActor(actor),
		Payload: events.TechnicianAssignmentPayload{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			IsLead:         isLead,
		},
	})
	return assignment, nil
}

// Unassign removes a technician from a ticket.
func (s *AssignmentService) Unassign(ctx context.Context, actor *domain.Technician, ticketID, technicianID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("technician required")
	}
	if actor.ID != technicianID && !actor.Role.CanDispatch() {
		return apperrors.NewForbidden("only dispatchers may remove other technicians")
	}

	current, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	var removed *domain.TicketAssignment
	for i := range current {
		if current[i].TechnicianID == technicianID {
			removed = &current[i]
			break
		}
	}
	if removed == nil {
		return apperrors.NewNotFound("assignment", map[string]any{"ticket_id": ticketID, "technician_id": technicianID})
	}
	if err := s.assignments.Remove(ctx, ticketID, technicianID); err != nil {
		return apperrors.NotFoundOr(err, "assignment", map[string]any{"ticket_id": ticketID, "technician_id": technicianID})
	}
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyTicketStats)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTechnicianUnassigned,
		TicketID: ticketID,
		Actor:    technicianActor(actor),
		Payload: events.TechnicianAssignmentPayload{
			TechnicianID:   technicianID,
			TechnicianName: removed.TechnicianName,
			IsLead:         removed.IsLead,
		},
	})
	return nil
}

// List returns the technicians on a ticket, lead first.
func (s *AssignmentService) List(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	assignments, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if assignments == nil {
		assignments = []domain.TicketAssignment{}
	}
	return assignments, nil
}
