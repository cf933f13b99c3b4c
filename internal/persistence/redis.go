package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/config"
)

// Cached values are small JSON blobs; a slow Redis must not hold up a request
// longer than a cache miss would.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
	redisPoolSize    = 10
)

// Redis holds the client backing the stats, category and contact search caches.
type Redis struct {
	Client *redis.Client
	// Reachable is set when the startup ping succeeded.
	Reachable bool
}

// RedisOptions builds client options from the env config.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
		PoolSize:     redisPoolSize,
	}
}

// NewRedis creates the client and pings it once. An unreachable server is not
// fatal; the service runs on the in-process cache instead.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	r := &Redis{Client: redis.NewClient(RedisOptions(cfg))}
	if err := r.Client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
		return r
	}
	r.Reachable = true
	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return r
}

// Cache returns the Redis cache when the server answered at startup and an
// in-process cache otherwise.
func (r *Redis) Cache(logger *zap.Logger) cache.Cache {
	if r == nil || r.Client == nil || !r.Reachable {
		logger.Warn("falling back to in-process cache")
		return cache.NewMemory()
	}
	return cache.NewRedisCache(r.Client)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports cache health for /health/ready.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
