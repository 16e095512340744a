package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	idempotencyPrefix    = "eration:idem:"
	pendingMarker        = "pending"
	idempotencyTimeout   = 2 * time.Second
	maxIdempotencyKeyLen = 128
)

var errReplayPending = errors.New("replay pending")

// replay is the response recorded for a completed request.
type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// replayStore keeps replays in Redis for ttl.
type replayStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// key scopes a client key to the route, the bearer token and the request
// body. Two devices reusing a key never see each other's responses, and a
// reused key with a different body is a new request.
func (s replayStore) key(c *fiber.Ctx, clientKey string) string {
	caller := sha256.Sum256([]byte(c.Get(fiber.HeaderAuthorization)))
	body := sha256.Sum256(c.Body())
	return idempotencyPrefix + c.Method() + ":" + c.Path() + ":" +
		hex.EncodeToString(caller[:8]) + ":" + hex.EncodeToString(body[:8]) + ":" + clientKey
}

// lookup returns a finished replay, errReplayPending while the first request
// is still running, or redis.Nil when the key is unseen.
func (s replayStore) lookup(ctx context.Context, key string) (replay, error) {
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return replay{}, err
	}
	if string(raw) == pendingMarker {
		return replay{}, errReplayPending
	}
	var r replay
	if err := json.Unmarshal(raw, &r); err != nil {
		return replay{}, err
	}
	return r, nil
}

func (s replayStore) reserve(ctx context.Context, key string) (bool, error) {
	return s.cache.SetNX(ctx, key, pendingMarker, s.ttl).Result()
}

func (s replayStore) commit(ctx context.Context, key string, r replay) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
	defer cancel()
	s.cache.Del(ctx, key)
}

// Idempotency replays the recorded response when an authenticated mutating
// request repeats an Idempotency-Key. Anonymous requests, such as the login
// steps, and requests without the header pass through untouched. Error
// responses are never recorded so the client may retry with the same key.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *zap.Logger) fiber.Handler {
	store := replayStore{cache: cache, ttl: ttl}
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead || c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		clientKey := c.Get(idempotencyKeyHeader)
		if clientKey == "" || c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if len(clientKey) > maxIdempotencyKeyLen {
			return fiber.NewError(fiber.StatusBadRequest, "idempotency key too long")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), idempotencyTimeout)
		defer cancel()
		key := store.key(c, clientKey)

		r, err := store.lookup(ctx, key)
		switch {
		case err == nil:
			c.Set(replayedHeader, "true")
			if r.ContentType != "" {
				c.Set(fiber.HeaderContentType, r.ContentType)
			}
			return c.Status(r.Status).Send(r.Body)
		case errors.Is(err, errReplayPending):
			return fiber.NewError(fiber.StatusConflict, "request with this idempotency key is in progress")
		case !errors.Is(err, redis.Nil):
			logger.Error("idempotency lookup failed", zap.String("path", c.Path()), zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}

		reserved, err := store.reserve(ctx, key)
		if err != nil {
			logger.Error("idempotency reservation failed", zap.String("path", c.Path()), zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "request with this idempotency key is in progress")
		}

		if err := c.Next(); err != nil {
			store.release(key)
			return err
		}
		resp := c.Response()
		if resp.StatusCode() >= fiber.StatusBadRequest {
			store.release(key)
			return nil
		}

		done := replay{
			Status:      resp.StatusCode(),
			ContentType: string(resp.Header.ContentType()),
			Body:        append([]byte(nil), resp.Body()...),
		}
		commitCtx, commitCancel := context.WithTimeout(context.Background(), idempotencyTimeout)
		defer commitCancel()
		if err := store.commit(commitCtx, key, done); err != nil {
			logger.Error("idempotent response not recorded", zap.String("path", c.Path()), zap.Error(err))
			store.release(key)
		}
		return nil
	}
}
