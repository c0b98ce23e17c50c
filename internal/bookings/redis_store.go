package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "booking:pref:"

// RedisStore keeps pending checkouts in Redis so they survive restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client. A zero ttl keeps entries without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("bookings: redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, preferenceID string) (*PricedBooking, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+preferenceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: redis get: %w", err)
	}
	var b PricedBooking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("bookings: redis decode: %w", err)
	}
	return &b, nil
}

func (s *RedisStore) Set(ctx context.Context, preferenceID string, booking PricedBooking) error {
	if preferenceID == "" {
		return errors.New("bookings: preference id required")
	}
	raw, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("bookings: redis encode: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+preferenceID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("bookings: redis set: %w", err)
	}
	return nil
}
