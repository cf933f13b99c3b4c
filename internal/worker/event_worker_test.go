package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/service"
)

type activitySink struct {
	mu    sync.Mutex
	items []domain.Activity
}

func (s *activitySink) Create(_ context.Context, a *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *a)
	return nil
}

func (s *activitySink) ListByTicket(context.Context, string, int) ([]domain.Activity, error) {
	return nil, nil
}

type publisher struct {
	subjects []string
}

func (p *publisher) Publish(subject string, _ []byte) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func TestStartEventWorkers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sink := &activitySink{}
	pub := &publisher{}
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: "https://hooks.example.com/crm"})

	StartEventWorkers(dispatcher, EventSubscribers{
		Activity:      service.NewActivityService(sink, nil, nil, zap.NewNop()),
		Notifications: notifications,
		Bridge:        events.NewNatsBridge(pub, "crm", zap.NewNop()),
	})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "ticket-1",
		Payload:  events.TicketCreatedPayload{TicketNumber: "SVC-0000AAAA", Title: "Leak"},
	})
	require.NoError(t, err)

	require.Len(t, sink.items, 1)
	assert.Equal(t, domain.ActionTicketCreated, sink.items[0].Action)
	assert.Equal(t, []string{"crm.ticket_created"}, pub.subjects)
	assert.EqualValues(t, 1, notifications.Sent())
}

func TestStartEventWorkersWithoutBridge(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sink := &activitySink{}

	StartEventWorkers(dispatcher, EventSubscribers{Activity: service.NewActivityService(sink, nil, nil, zap.NewNop())})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "ticket-1",
		Payload:  events.TicketCreatedPayload{TicketNumber: "SVC-0000BBBB"},
	}))
	assert.Len(t, sink.items, 1)
}
