package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const challengePrefix = "otp:challenge:"

// RedisStore keeps challenges in Redis so any API replica can verify a code
// issued by another. Keys expire with the challenge TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed challenge store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, c Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	if err := s.client.Set(ctx, challengePrefix+c.Phone, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, phone string) (Challenge, bool, error) {
	raw, err := s.client.Get(ctx, challengePrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, false, nil
	}
	if err != nil {
		return Challenge{}, false, fmt.Errorf("load challenge: %w", err)
	}
	var c Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return Challenge{}, false, fmt.Errorf("decode challenge: %w", err)
	}
	return c, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, challengePrefix+phone).Err(); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}
