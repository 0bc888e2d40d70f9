package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token and snapshot in Redis so several client
// instances (e.g. a pool of automation workers) can share one session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. The prefix namespaces the
// keys; ttl bounds how long a token or snapshot survives untouched
// (zero means no expiry).
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "storefront:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) tokenKey() string { return r.prefix + "token" }
func (r *RedisStore) snapKey() string  { return r.prefix + "state" }

func (r *RedisStore) Save(ctx context.Context, token string) error {
	return r.client.Set(ctx, r.tokenKey(), token, r.ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.tokenKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.tokenKey(), r.snapKey()).Err()
}

func (r *RedisStore) Put(ctx context.Context, s Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.client.Set(ctx, r.snapKey(), raw, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context) (*Snapshot, error) {
	val, err := r.client.Get(ctx, r.snapKey()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, nil
	}
	return &s, nil
}
