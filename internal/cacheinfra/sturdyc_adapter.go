package cacheinfra

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// entry is what the in-process cache stores per key.
type entry struct {
	value     []byte
	expiresAt time.Time // zero: kept until the client TTL evicts it
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// sturdycCache is an in-process cache.Cache backed by a sturdyc client.
// sturdyc only knows one TTL per client, so per-entry expiry is tracked in the
// entry itself and checked on read.
type sturdycCache struct {
	client *sturdyc.Client[entry]
	now    func() time.Time

	// writeMu serializes writers so SetNX can check and set atomically.
	writeMu sync.Mutex
}

// MemoryOption customizes the in-process cache.
type MemoryOption func(*sturdycCache)

// WithClock replaces the clock used for per-entry expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *sturdycCache) {
		c.now = now
	}
}

// NewSturdycCache creates a new sturdyc backed cache.
// It validates the configuration and initializes a sturdyc client with the provided settings.
func NewSturdycCache(cfg Config, opts ...MemoryOption) (*sturdycCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	c := &sturdycCache{client: client, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (s *sturdycCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := s.client.Get(key)
	if !ok || e.expired(s.now()) {
		return nil, false, nil
	}
	return clone(e.value), true, nil
}

func (s *sturdycCache) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	now := s.now()
	found := s.client.GetMany(keys)
	for i, key := range keys {
		if e, ok := found[key]; ok && !e.expired(now) {
			out[i] = clone(e.value)
		}
	}
	return out, nil
}

func (s *sturdycCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.set(key, value, ttl)
	return nil
}

func (s *sturdycCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if e, ok := s.client.Get(key); ok && !e.expired(s.now()) {
		return false, nil
	}
	s.set(key, value, ttl)
	return true, nil
}

func (s *sturdycCache) Del(ctx context.Context, keys ...string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

func (s *sturdycCache) DelIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	e, ok := s.client.Get(key)
	if !ok || e.expired(s.now()) || !bytes.Equal(e.value, value) {
		return false, nil
	}
	s.client.Delete(key)
	return true, nil
}

func (s *sturdycCache) set(key string, value []byte, ttl time.Duration) {
	e := entry{value: clone(value)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.client.Set(key, e)
}

// clone keeps callers from mutating stored payloads.
func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
