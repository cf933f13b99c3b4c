package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
)

func newAssignmentFixture(status domain.TicketStatus) (*AssignmentService, *fakeAssignments, *recordingDispatcher) {
	tickets := new(MockTicketRepository)
	tickets.On("GetByID", mock.Anything, "t1").Return(&domain.Ticket{ID: "t1", Status: status}, nil)
	inactive := domain.Technician{ID: "tech-off", Name: "Gone", Role: domain.RoleTechnician}
	assignments := &fakeAssignments{}
	d := &recordingDispatcher{}
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:     tickets,
		TechnicianRepo: newFakeTechnicians(dispatcherTech, fieldTech, otherTech, inactive),
		AssignmentRepo: assignments,
		Dispatcher:     d,
	})
	return svc, assignments, d
}

func TestAssignmentService_AssignLeadDemotesPrevious(t *testing.T) {
	svc, store, d := newAssignmentFixture(domain.TicketStatusOpen)
	ctx := context.Background()

	_, err := svc.Assign(ctx, &dispatcherTech, "t1", fieldTech.ID, true)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, &dispatcherTech, "t1", otherTech.ID, true)
	require.NoError(t, err)

	list, err := svc.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	leads := 0
	for _, a := range list {
		if a.IsLead {
			leads++
			assert.Equal(t, otherTech.ID, a.TechnicianID)
		}
	}
	assert.Equal(t, 1, leads)
	assert.Equal(t, 2, store.leadSwaps)
	assert.Equal(t, []events.EventType{events.EventTechnicianAssigned, events.EventTechnicianAssigned}, d.types())
}

func TestAssignmentService_AssignConflicts(t *testing.T) {
	svc, _, _ := newAssignmentFixture(domain.TicketStatusOpen)
	ctx := context.Background()

	_, err := svc.Assign(ctx, &dispatcherTech, "t1", "tech-off", false)
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	_, err = svc.Assign(ctx, &dispatcherTech, "t1", fieldTech.ID, false)
	require.NoError(t, err)
	_, err = svc.Assign(ctx, &dispatcherTech, "t1", fieldTech.ID, false)
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	_, err = svc.Assign(ctx, &dispatcherTech, "t1", "nobody", false)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestAssignmentService_ConcurrentDuplicateIsConflict(t *testing.T) {
	svc, store, d := newAssignmentFixture(domain.TicketStatusOpen)
	ctx := context.Background()

	_, err := svc.Assign(ctx, &dispatcherTech, "t1", fieldTech.ID, true)
	require.NoError(t, err)

	// another request inserted the same pair after the pre-check
	store.addErr = &pgconn.PgError{Code: "23505"}
	_, err = svc.Assign(ctx, &dispatcherTech, "t1", otherTech.ID, true)
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	list, err := svc.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsLead)
	assert.Equal(t, fieldTech.ID, list[0].TechnicianID)
	assert.Len(t, d.types(), 1)
}

func TestAssignmentService_Permissions(t *testing.T) {
	svc, _, _ := newAssignmentFixture(domain.TicketStatusOpen)
	ctx := context.Background()

	_, err := svc.Assign(ctx, &fieldTech, "t1", otherTech.ID, false)
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	_, err = svc.Assign(ctx, &fieldTech, "t1", fieldTech.ID, false)
	assert.NoError(t, err)

	_, err = svc.Assign(ctx, nil, "t1", fieldTech.ID, false)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestAssignmentService_ClosedTicket(t *testing.T) {
	svc, _, _ := newAssignmentFixture(domain.TicketStatusCompleted)
	_, err := svc.Assign(context.Background(), &dispatcherTech, "t1", fieldTech.ID, false)
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestAssignmentService_Unassign(t *testing.T) {
	svc, _, d := newAssignmentFixture(domain.TicketStatusOpen)
	ctx := context.Background()
	_, err := svc.Assign(ctx, &dispatcherTech, "t1", fieldTech.ID, true)
	require.NoError(t, err)

	require.NoError(t, svc.Unassign(ctx, &dispatcherTech, "t1", fieldTech.ID))
	assert.Equal(t, "NOT_FOUND", errorCode(t, svc.Unassign(ctx, &dispatcherTech, "t1", fieldTech.ID)))

	last := d.published[len(d.published)-1]
	assert.Equal(t, events.EventTechnicianUnassigned, last.Type)
	assert.True(t, last.Payload.(events.TechnicianAssignmentPayload).IsLead)
}
