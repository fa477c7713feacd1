package di

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/cacheinfra"
	"github.com/trim21/bangumi-server-private/pkg/testsupport"
	"github.com/trim21/bangumi-server-private/store"
)

func TestNewContainer(t *testing.T) {
	db := testsupport.OpenDB(t, store.Models()...)
	config := DefaultConfig()
	config.KeyPrefix = "test:"
	config.Memory = cache.Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}

	container, err := NewContainer(db, config, nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if container == nil {
		t.Fatal("NewContainer() returned nil container")
	}

	// Verify that dependencies are properly initialized
	if container.Cache() == nil {
		t.Error("Container should have a non-nil cache")
	}
	if container.Fetchers() == nil || container.Fetchers().Subjects == nil {
		t.Error("Container should wire the fetchers")
	}
	if container.Browser() == nil {
		t.Error("Container should wire the subject browser")
	}
	if container.Aggregator() == nil {
		t.Error("Container should wire the trending aggregator")
	}
	if container.Metrics().Registry() == nil {
		t.Error("Container should have a metrics registry")
	}

	if got := container.Keys().Entity("subject", 1); got != "test:subject:1" {
		t.Errorf("Expected prefixed key, got %q", got)
	}

	stored := container.Config()
	if stored.Memory.Capacity != config.Memory.Capacity {
		t.Errorf("Expected capacity %d, got %d", config.Memory.Capacity, stored.Memory.Capacity)
	}

	if err := container.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(testsupport.OpenDB(t), nil)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	config := container.Config()
	defaults := DefaultConfig()
	if config.Memory.TTL != defaults.Memory.TTL {
		t.Errorf("Expected default TTL %v, got %v", defaults.Memory.TTL, config.Memory.TTL)
	}
	if config.RedisURL != "" {
		t.Errorf("Expected in-process cache by default, got %q", config.RedisURL)
	}
}

func TestNewContainer_NilDB(t *testing.T) {
	_, err := NewContainer(nil, DefaultConfig(), nil)
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Memory.Capacity = 0 // Invalid: must be > 0

	_, err := NewContainer(testsupport.OpenDB(t), config, nil)
	var cfgErr *cacheinfra.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
	if cfgErr.Field != "Capacity" {
		t.Errorf("Expected Capacity to be reported, got %q", cfgErr.Field)
	}
}

func TestNewContainer_InvalidRedisURL(t *testing.T) {
	config := DefaultConfig()
	config.RedisURL = "://nope"

	if _, err := NewContainer(testsupport.OpenDB(t), config, nil); err == nil {
		t.Error("NewContainer() should fail with an invalid redis url")
	}
}

func TestNewContainer_Redis(t *testing.T) {
	server := miniredis.RunT(t)
	config := DefaultConfig()
	config.RedisURL = "redis://" + server.Addr()

	container, err := NewContainer(testsupport.OpenDB(t), config, nil)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	key := container.Keys().Entity("user", 1)
	if err := container.Cache().Set(ctx, key, []byte("sai"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// the key space prefix is the only prefix
	if !server.Exists("chii:user:1") {
		t.Errorf("Expected key chii:user:1 in redis, got %v", server.Keys())
	}

	value, ok, err := container.Cache().Get(ctx, key)
	if err != nil || !ok || string(value) != "sai" {
		t.Errorf("Get() = %q, %v, %v", value, ok, err)
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults(testsupport.OpenDB(t), nil)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	// Call getters multiple times to ensure they return the same instances
	if container.Cache() != container.Cache() {
		t.Error("Cache() should return the same instance (singleton behavior)")
	}
	if container.Fetchers() != container.Fetchers() {
		t.Error("Fetchers() should return the same instance (singleton behavior)")
	}
	if container.Metrics() != container.Metrics() {
		t.Error("Metrics() should return the same instance (singleton behavior)")
	}
}
