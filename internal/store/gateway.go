package store

import (
	"context"
	"errors"
	"time"

	"kvgateway/internal/apperr"
	"kvgateway/pkg/logger"
)

// Gateway is the single point of contact with the key-value store. It never
// returns errors: every failure is logged and reported through the
// operation's failure value (false, absent or an empty list).
type Gateway struct {
	backend Backend
	logger  *logger.Logger
}

// NewGateway creates a Gateway over backend
func NewGateway(backend Backend, l *logger.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		logger:  l.With("component", "store"),
	}
}

// Ping reports whether the store is reachable
func (g *Gateway) Ping(ctx context.Context) bool {
	start := time.Now()
	err := g.backend.Ping(ctx)
	g.observe(ctx, "ping", "", start, err)
	return err == nil
}

// SetValue stores value under key. A positive ttl makes the key expire.
func (g *Gateway) SetValue(ctx context.Context, key, value string, ttl time.Duration) bool {
	start := time.Now()
	err := g.backend.Set(ctx, Key(key), value, ttl)
	g.observe(ctx, "set", key, start, err, "ttl_seconds", int64(ttl/time.Second))
	return err == nil
}

// GetValue returns the value stored under key. ok is false both when the
// key does not exist and when the store failed; the two are told apart only
// in the logs.
func (g *Gateway) GetValue(ctx context.Context, key string) (value string, ok bool) {
	start := time.Now()
	value, err := g.backend.Get(ctx, Key(key))
	g.observe(ctx, "get", key, start, err)
	if err != nil {
		return "", false
	}
	return value, true
}

// Increment atomically increments the counter under key and returns the
// new value. ok is false on any error, including a non-integer value.
func (g *Gateway) Increment(ctx context.Context, key string) (value int64, ok bool) {
	start := time.Now()
	value, err := g.backend.Incr(ctx, Key(key))
	g.observe(ctx, "incr", key, start, err)
	if err != nil {
		return 0, false
	}
	return value, true
}

// DeleteKey removes key. It returns true only if the key existed.
func (g *Gateway) DeleteKey(ctx context.Context, key string) bool {
	start := time.Now()
	err := g.backend.Delete(ctx, Key(key))
	g.observe(ctx, "delete", key, start, err)
	return err == nil
}

// ListAllKeys returns every key in the store. The result is never nil and
// is empty on error.
func (g *Gateway) ListAllKeys(ctx context.Context) []string {
	start := time.Now()
	keys, err := g.backend.Keys(ctx)
	g.observe(ctx, "keys", "", start, err, "count", len(keys))
	if err != nil || keys == nil {
		return []string{}
	}
	return keys
}

// Close releases the backend connection
func (g *Gateway) Close() error {
	return g.backend.Close()
}

// observe logs the outcome of one backend call. A missing key is not a
// failure and is logged at debug level.
func (g *Gateway) observe(ctx context.Context, operation, key string, start time.Time, err error, args ...any) {
	duration := time.Since(start)

	if errors.Is(err, ErrKeyNotFound) {
		g.logger.DebugContext(ctx, "Store key not found",
			"operation", operation,
			"key", key,
			"duration_ms", duration.Milliseconds(),
		)
		return
	}

	if err != nil {
		args = append(args, "kind", classify(err).String())
	}
	g.logger.StoreOperation(ctx, operation, key, duration, err, args...)
}

// classify maps a backend error to an error kind
func classify(err error) apperr.Kind {
	if errors.Is(err, ErrStoreClosed) {
		return apperr.KindStoreUnavailable
	}
	return apperr.Classify(err)
}
