package store

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"
)

// entry is a stored value with its optional expiry deadline
type entry struct {
	data      string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore implements Backend using an in-memory map with per-key expiry.
// Expired keys are invisible to readers and purged on the next write.
type MemoryStore struct {
	// data holds the key-value pairs with their expiry deadlines
	data map[string]entry

	// mutex provides thread-safe access to the data map
	mutex sync.RWMutex

	// now is the clock used for expiry
	now func() time.Time

	// closed indicates if the store has been closed
	closed bool
}

var _ Backend = (*MemoryStore)(nil)

// NewMemoryStore creates and returns a new instance of MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// checkContext returns the context error if ctx is already done
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// lookup returns the live entry for key. Callers must hold the mutex.
func (ms *MemoryStore) lookup(key Key) (entry, bool) {
	e, exists := ms.data[string(key)]
	if !exists || e.expired(ms.now()) {
		return entry{}, false
	}
	return e, true
}

// Ping reports whether the store is open
func (ms *MemoryStore) Ping(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return ErrStoreClosed
	}
	return nil
}

// Set stores a key-value pair in the store
func (ms *MemoryStore) Set(ctx context.Context, key Key, value string, ttl time.Duration) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}

	e := entry{data: value}
	if ttl > 0 {
		e.expiresAt = ms.now().Add(ttl)
	}
	ms.data[string(key)] = e
	ms.purgeExpired()

	return nil
}

// Get retrieves the value associated with the given key
func (ms *MemoryStore) Get(ctx context.Context, key Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	if err := checkContext(ctx); err != nil {
		return "", err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return "", ErrStoreClosed
	}

	e, ok := ms.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return e.data, nil
}

// Incr increments the integer stored under key, keeping its expiry
func (ms *MemoryStore) Incr(ctx context.Context, key Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return 0, ErrStoreClosed
	}

	e, ok := ms.lookup(key)
	var current int64
	if ok {
		n, err := strconv.ParseInt(e.data, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = n
	}

	if current == math.MaxInt64 {
		return 0, ErrNotInteger
	}

	current++
	e.data = strconv.FormatInt(current, 10)
	ms.data[string(key)] = e

	return current, nil
}

// Delete removes a key-value pair from the store
func (ms *MemoryStore) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}

	if _, ok := ms.lookup(key); !ok {
		delete(ms.data, string(key))
		return ErrKeyNotFound
	}

	delete(ms.data, string(key))
	return nil
}

// Keys returns all live keys in sorted order
func (ms *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return nil, ErrStoreClosed
	}

	now := ms.now()
	keys := make([]string, 0, len(ms.data))
	for key, e := range ms.data {
		if e.expired(now) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

// Close closes the store and releases any resources
func (ms *MemoryStore) Close() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.closed = true
	return nil
}

// purgeExpired drops expired entries. Callers must hold the write lock.
func (ms *MemoryStore) purgeExpired() {
	now := ms.now()
	for key, e := range ms.data {
		if e.expired(now) {
			delete(ms.data, key)
		}
	}
}
