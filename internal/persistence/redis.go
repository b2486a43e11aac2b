package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. An empty
// address disables Redis and returns nil.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; ledger log guard disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// LogGuard reserves ticket numbers while they are being logged, so two bot
// processes sharing a sheet do not both append the same ticket.
type LogGuard struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewLogGuard builds a guard; ttl bounds how long a crashed holder blocks others.
func NewLogGuard(client redis.Cmdable, ttl time.Duration) *LogGuard {
	return &LogGuard{client: client, prefix: "ledger:log:", ttl: ttl}
}

// Acquire returns false when another holder already reserved ticketNumber.
func (g *LogGuard) Acquire(ctx context.Context, ticketNumber string) (bool, error) {
	return g.client.SetNX(ctx, g.prefix+ticketNumber, "1", g.ttl).Result()
}

// Release drops the reservation.
func (g *LogGuard) Release(ctx context.Context, ticketNumber string) error {
	return g.client.Del(ctx, g.prefix+ticketNumber).Err()
}
