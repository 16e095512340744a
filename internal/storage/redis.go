package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "eration:kv:"

type redisBlobs struct {
	client *redis.Client
}

// NewRedis stores documents as plain Redis strings without expiry.
func NewRedis(client *redis.Client) Adapter {
	return jsonAdapter{blobs: redisBlobs{client: client}}
}

func (r redisBlobs) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r redisBlobs) put(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, redisPrefix+key, data, 0).Err()
}

func (r redisBlobs) del(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisPrefix+key).Err()
}
