package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

const labelKeyPrefix = "label:"

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

// GetLabel looks up a previously classified request text. Returns
// false on a miss so the caller falls through to the oracle.
func (r *RedisAdapter) GetLabel(ctx context.Context, text string) (domain.Label, bool, error) {
	val, err := r.client.Get(ctx, labelKey(text)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return domain.ParseLabel(val), true, nil
}

func (r *RedisAdapter) SetLabel(ctx context.Context, text string, label domain.Label) error {
	return r.client.Set(ctx, labelKey(text), label.String(), r.ttl).Err()
}

// labelKey hashes the request text; raw text is arbitrary length and
// does not belong in a key.
func labelKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return labelKeyPrefix + hex.EncodeToString(sum[:])
}
