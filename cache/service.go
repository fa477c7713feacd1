package cache

import (
	"context"
	"time"
)

// NoExpiry stores a value until it is overwritten or deleted.
const NoExpiry time.Duration = 0

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls and processes.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// Cache is the key-value store every read-through path goes through.
// Values are opaque byte strings; a TTL of NoExpiry keeps the value until it is replaced.
type Cache interface {
	// Get returns the value stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// MGet resolves all keys in one round-trip. The result has one slot per key, nil for misses.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	// Implementations must make the check and the write atomic.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// DelIfValue deletes key only while it still holds value and reports
	// whether it did. Implementations must make the compare and the delete atomic.
	DelIfValue(ctx context.Context, key string, value []byte) (bool, error)
}

// GetValue is a type-safe wrapper that reads and decodes a cached value.
// A payload that no longer decodes into T is reported as a miss.
func GetValue[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var zero T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	value, err := Unmarshal[T](raw)
	if err != nil {
		return zero, false, nil
	}
	return value, true, nil
}

// SetValue encodes value and stores it under key.
func SetValue[T any](ctx context.Context, c Cache, key string, value T, ttl time.Duration) error {
	raw, err := Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
