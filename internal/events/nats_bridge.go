package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher is the subset of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NatsBridge mirrors dispatcher events onto NATS subjects "<prefix>.<event_type>".
type NatsBridge struct {
	conn   Publisher
	prefix string
	logger *zap.Logger
	closer func()
}

// ConnectNats dials the server and returns a bridge. An empty url returns nil, nil.
func ConnectNats(url, prefix string, logger *zap.Logger) (*NatsBridge, error) {
	if url == "" {
		logger.Warn("NATS_URL not provided; events stay in-process")
		return nil, nil
	}
	nc, err := nats.Connect(url, nats.Name("service-crm"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("connected to nats", zap.String("url", nc.ConnectedUrl()))
	bridge := NewNatsBridge(nc, prefix, logger)
	bridge.closer = func() {
		_ = nc.Drain()
	}
	return bridge, nil
}

// NewNatsBridge wraps an existing publisher.
func NewNatsBridge(conn Publisher, prefix string, logger *zap.Logger) *NatsBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "crm"
	}
	return &NatsBridge{conn: conn, prefix: prefix, logger: logger}
}

// Attach subscribes the bridge to every event type.
func (b *NatsBridge) Attach(dispatcher Dispatcher) {
	if b == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, b.forward)
	}
}

// Subject returns the subject an event type is published on.
func (b *NatsBridge) Subject(eventType EventType) string {
	return b.prefix + "." + string(eventType)
}

func (b *NatsBridge) forward(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.conn.Publish(b.Subject(event.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close drains the underlying connection when the bridge owns it.
func (b *NatsBridge) Close() {
	if b != nil && b.closer != nil {
		b.closer()
	}
}
