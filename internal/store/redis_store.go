package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions holds the connection settings for a Redis server
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements Backend on top of a go-redis client.
// The client keeps its own connection pool shared by all callers.
type RedisStore struct {
	client    *redis.Client
	closeOnce sync.Once
	closeErr  error
}

var _ Backend = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. No connection is made until the
// first command.
func NewRedisStore(opts RedisOptions) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}))
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping sends PING to the server
func (rs *RedisStore) Ping(ctx context.Context) error {
	return mapRedisError(rs.client.Ping(ctx).Err())
}

// Set issues SET, with EX when ttl is positive
func (rs *RedisStore) Set(ctx context.Context, key Key, value string, ttl time.Duration) error {
	if err := key.Validate(); err != nil {
		return err
	}
	// go-redis treats -1 as KEEPTTL, so anything non-positive becomes 0
	if ttl < 0 {
		ttl = 0
	}
	return mapRedisError(rs.client.Set(ctx, key.String(), value, ttl).Err())
}

// Get issues GET
func (rs *RedisStore) Get(ctx context.Context, key Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	value, err := rs.client.Get(ctx, key.String()).Result()
	if err != nil {
		return "", mapRedisError(err)
	}
	return value, nil
}

// Incr issues INCR
func (rs *RedisStore) Incr(ctx context.Context, key Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	value, err := rs.client.Incr(ctx, key.String()).Result()
	if err != nil {
		return 0, mapRedisError(err)
	}
	return value, nil
}

// Delete issues DEL and reports ErrKeyNotFound when nothing was removed
func (rs *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	removed, err := rs.client.Del(ctx, key.String()).Result()
	if err != nil {
		return mapRedisError(err)
	}
	if removed == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// Keys walks the whole keyspace with SCAN. SCAN may report a key more than
// once, so the result is deduplicated.
func (rs *RedisStore) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	seen := make(map[string]struct{})

	iter := rs.client.Scan(ctx, 0, "*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, mapRedisError(err)
	}

	return keys, nil
}

// Close closes the client and its connection pool
func (rs *RedisStore) Close() error {
	rs.closeOnce.Do(func() {
		rs.closeErr = rs.client.Close()
	})
	return rs.closeErr
}

// mapRedisError converts go-redis errors to the package sentinels
func mapRedisError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrKeyNotFound
	case errors.Is(err, redis.ErrClosed):
		return ErrStoreClosed
	case strings.Contains(err.Error(), "not an integer"):
		return fmt.Errorf("%w: %v", ErrNotInteger, err)
	default:
		return err
	}
}
