package cacheinfra

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Backend is the cache contract the breaker decorates.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DelIfValue(ctx context.Context, key string, value []byte) (bool, error)
}

// BreakerConfig holds configuration for the cache circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the circuit breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// breakerCache fails fast while the remote cache is unhealthy, so callers
// fall through to the store instead of waiting on network timeouts.
type breakerCache struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerCache wraps next with a circuit breaker.
func NewBreakerCache(next Backend, cfg BreakerConfig, logger *zap.Logger) *breakerCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &breakerCache{next: next, cb: cb}
}

// State reports the current breaker state.
func (b *breakerCache) State() gobreaker.State {
	return b.cb.State()
}

type getResult struct {
	value []byte
	ok    bool
}

func (b *breakerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.next.Get(ctx, key)
		return getResult{value: v, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := res.(getResult)
	return r.value, r.ok, nil
}

func (b *breakerCache) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.MGet(ctx, keys...)
	})
	if err != nil {
		return nil, err
	}
	return res.([][]byte), nil
}

func (b *breakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

func (b *breakerCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.SetNX(ctx, key, value, ttl)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (b *breakerCache) Del(ctx context.Context, keys ...string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Del(ctx, keys...)
	})
	return err
}

func (b *breakerCache) DelIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.DelIfValue(ctx, key, value)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}
