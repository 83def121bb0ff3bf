package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/durianostics/durianostics-client/pkg/config"
	"github.com/redis/go-redis/v9"
)

const redisKeyNamespace = "durianostics"

// RedisStore backs the key-value contract with redis for the hosted web
// deployment, where "device local" storage is a per-browser key space
// maintained server-side.
type RedisStore struct {
	raw *redis.Client
}

// NewRedisStore connects using the configured URL and verifies
// connectivity before returning.
func NewRedisStore(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	if cfg.RedisURL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.RedisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.RedisReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.RedisWriteTimeout
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{raw: raw}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.raw.Get(ctx, buildRedisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) GetMulti(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = buildRedisKey(key)
	}
	results, err := s.raw.MGet(ctx, namespaced...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %d keys: %w", len(keys), err)
	}
	values := make(map[string]string, len(keys))
	for i, result := range results {
		if result == nil {
			continue
		}
		if str, ok := result.(string); ok {
			values[keys[i]] = str
		}
	}
	return values, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.raw.Set(ctx, buildRedisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetMulti(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, buildRedisKey(key), value)
	}
	if err := s.raw.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("writing %d keys: %w", len(values), err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = buildRedisKey(key)
	}
	if err := s.raw.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("deleting %d keys: %w", len(keys), err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.raw.Close()
}

func buildRedisKey(key string) string {
	return strings.Join([]string{redisKeyNamespace, key}, ":")
}
