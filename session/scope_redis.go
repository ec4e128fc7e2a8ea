package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Scope = (*RedisScope)(nil)

// RedisScope stores values as Redis strings under a key prefix.
// A non-zero ttl makes every write expire, which is how the transient
// scope is bounded to a process lifetime.
type RedisScope struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisScope creates a durable Redis scope
func NewRedisScope(client redis.UniversalClient, prefix string) *RedisScope {
	return &RedisScope{
		client: client,
		prefix: prefix,
	}
}

// NewTransientRedisScope creates a scope namespaced to this process with a fresh
// identifier. Values expire after ttl unless rewritten.
func NewTransientRedisScope(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisScope {
	return &RedisScope{
		client: client,
		prefix: prefix + uuid.NewString() + ":",
		ttl:    ttl,
	}
}

// Prefix returns the key prefix including any per-process namespace
func (r *RedisScope) Prefix() string {
	return r.prefix
}

func (r *RedisScope) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	found := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	values, err := r.client.MGet(ctx, r.keys(keys)...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[RedisScope.Load] redis mget")
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			found[keys[i]] = s
		}
	}
	return found, nil
}

// Store writes all values in one MULTI/EXEC transaction
func (r *RedisScope) Store(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.prefix+k, v, r.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "[RedisScope.Store] redis tx")
	}
	return nil
}

func (r *RedisScope) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, r.keys(keys)...).Err(); err != nil {
		return errors.Wrap(err, "[RedisScope.Remove] redis del")
	}
	return nil
}

func (r *RedisScope) keys(keys []string) []string {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.prefix + k
	}
	return prefixed
}
