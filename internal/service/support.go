package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func technicianActor(tech *domain.Technician) events.Actor {
	if tech == nil {
		return events.Actor{Name: "system"}
	}
	id := tech.ID
	return events.Actor{TechnicianID: &id, Name: tech.Name}
}

func actorID(tech *domain.Technician) *string {
	if tech == nil {
		return nil
	}
	id := tech.ID
	return &id
}

// cacheGet treats cache failures as misses.
func cacheGet(ctx context.Context, c cache.Cache, logger *zap.Logger, key string, dest any) bool {
	if c == nil {
		return false
	}
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func cacheSet(ctx context.Context, c cache.Cache, logger *zap.Logger, key string, value any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheInvalidate(ctx context.Context, c cache.Cache, logger *zap.Logger, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func ptrBool(v bool) *bool {
	return &v
}
