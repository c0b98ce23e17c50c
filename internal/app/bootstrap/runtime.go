package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/luciene-trg/agenda-backend/internal/bookings"
	appconfig "github.com/luciene-trg/agenda-backend/internal/config"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

// Booking store backends selectable through BOOKING_STORE.
const (
	StoreAuto     = "auto"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ResolveStoreKind maps BOOKING_STORE to a concrete backend. "auto" prefers
// Postgres, then Redis, then memory, depending on what is configured.
func ResolveStoreKind(cfg *appconfig.Config) (string, error) {
	if cfg == nil {
		return StoreMemory, nil
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.BookingStore))
	switch kind {
	case "", StoreAuto:
		switch {
		case strings.TrimSpace(cfg.DatabaseURL) != "":
			return StorePostgres, nil
		case strings.TrimSpace(cfg.RedisAddr) != "":
			return StoreRedis, nil
		default:
			return StoreMemory, nil
		}
	case StoreMemory:
		return StoreMemory, nil
	case StoreRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return "", fmt.Errorf("bootstrap: BOOKING_STORE=redis requires REDIS_ADDR")
		}
		return StoreRedis, nil
	case StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return "", fmt.Errorf("bootstrap: BOOKING_STORE=postgres requires DATABASE_URL")
		}
		return StorePostgres, nil
	default:
		return "", fmt.Errorf("bootstrap: unknown BOOKING_STORE %q", cfg.BookingStore)
	}
}

// BuildBookingStore opens the pending checkout store. The returned cleanup
// func releases connections and is never nil. An unreachable Redis or
// Postgres degrades to the in-memory store with a warning.
func BuildBookingStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bookings.Store, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	kind, err := ResolveStoreKind(cfg)
	if err != nil {
		return nil, noop, err
	}

	switch kind {
	case StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("postgres not available, using memory store", "error", err)
			return bookings.NewMemoryStore(), noop, nil
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("postgres not reachable, using memory store", "error", err)
			pool.Close()
			return bookings.NewMemoryStore(), noop, nil
		}
		logger.Info("booking store ready", "backend", StorePostgres)
		return bookings.NewPostgresStore(pool), pool.Close, nil
	case StoreRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			logger.Warn("redis not reachable, using memory store")
			return bookings.NewMemoryStore(), noop, nil
		}
		logger.Info("booking store ready", "backend", StoreRedis, "ttl", cfg.BookingTTL)
		return bookings.NewRedisStore(client, cfg.BookingTTL), func() { _ = client.Close() }, nil
	default:
		logger.Info("booking store ready", "backend", StoreMemory)
		return bookings.NewMemoryStore(), noop, nil
	}
}
