// Package store provides the gateway to the external key-value store
package store

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by backends
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the store
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when an empty key is provided
	ErrInvalidKey = errors.New("invalid key")

	// ErrNotInteger is returned when incrementing a value that is not an integer
	ErrNotInteger = errors.New("value is not an integer or out of range")

	// ErrStoreClosed is returned when attempting to operate on a closed store
	ErrStoreClosed = errors.New("store is closed")
)

// Key represents a store key
type Key string

// Validate validates a key according to store rules
func (k Key) Validate() error {
	if len(k) == 0 {
		return ErrInvalidKey
	}
	return nil
}

// String returns the string representation of the key
func (k Key) String() string {
	return string(k)
}

// Backend is the error-returning view of a key-value store.
// Implementations must be safe for concurrent use by multiple goroutines.
type Backend interface {
	// Ping checks that the store is reachable
	Ping(ctx context.Context) error

	// Set stores value under key. A positive ttl makes the key expire after
	// that duration; zero or negative means no expiry.
	Set(ctx context.Context, key Key, value string, ttl time.Duration) error

	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key Key) (string, error)

	// Incr atomically increments the integer stored under key and returns
	// the new value. A missing key counts as 0.
	Incr(ctx context.Context, key Key) (int64, error)

	// Delete removes key, or returns ErrKeyNotFound if it did not exist
	Delete(ctx context.Context, key Key) error

	// Keys returns every key currently in the store
	Keys(ctx context.Context) ([]string, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}
