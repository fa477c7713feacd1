package di

import (
	"github.com/go-redis/redis/v8"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/cacheinfra"
	"github.com/trim21/bangumi-server-private/internal/metrics"
	"github.com/trim21/bangumi-server-private/repositorycache"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/trending"
)

// Config selects the cache backend of a Container.
type Config struct {
	// RedisURL selects the remote cache behind a circuit breaker. Empty keeps
	// the cache in process.
	RedisURL string
	// KeyPrefix starts every cache key.
	KeyPrefix        string
	Memory           cache.Config
	Breaker          cacheinfra.BreakerConfig
	MetricsNamespace string
}

// DefaultConfig returns an in-process configuration.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:        "chii:",
		Memory:           cache.DefaultConfig(),
		Breaker:          cacheinfra.DefaultBreakerConfig("redis-cache"),
		MetricsNamespace: "chii",
	}
}

// Container wires the caching core over one database.
// It manages singleton instances of the cache, the key space and metrics,
// and the fetchers, browser and aggregator built on them.
type Container struct {
	config     Config
	cache      cache.Cache
	keys       cache.KeySpace
	metrics    *metrics.Collector
	redis      redis.UniversalClient
	fetchers   *repositorycache.Fetchers
	browser    *repositorycache.SubjectBrowser
	aggregator *trending.Aggregator
}

// NewContainer creates a container over db. The database stays owned by the
// caller; Close only releases what the container opened.
func NewContainer(db bun.IDB, config Config, logger *zap.Logger) (*Container, error) {
	if db == nil {
		return nil, goerrors.New("container needs a database", goerrors.CategoryValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		config:  config,
		keys:    cache.NewKeySpace(config.KeyPrefix),
		metrics: metrics.NewCollector(config.MetricsNamespace),
	}

	if config.RedisURL != "" {
		client, err := cacheinfra.NewRedisUniversalClient(config.RedisURL)
		if err != nil {
			return nil, err
		}
		c.redis = client
		// keys are prefixed by the key space already
		c.cache = cacheinfra.NewBreakerCache(cacheinfra.NewRedisCache(client, ""), config.Breaker, logger.Named("cache"))
	} else {
		memory, err := cache.NewMemoryCache(config.Memory)
		if err != nil {
			return nil, err
		}
		c.cache = memory
	}

	c.fetchers = repositorycache.NewFetchers(db, c.cache, c.keys,
		repositorycache.WithLogger(logger.Named("fetcher")),
		repositorycache.WithMetrics(c.metrics),
	)
	c.aggregator = trending.NewAggregator(c.cache, c.keys, store.NewInterests(db),
		trending.WithLogger(logger.Named("trending")),
		trending.WithMetrics(c.metrics),
		trending.WithSubjects(c.fetchers.SlimSubjects),
	)
	c.browser = repositorycache.NewSubjectBrowser(store.NewSubjects(db), store.NewTags(db), c.aggregator, c.cache, c.keys,
		repositorycache.WithLogger(logger.Named("browse")),
		repositorycache.WithMetrics(c.metrics),
	)

	return c, nil
}

// NewContainerWithDefaults creates an in-process container over db.
func NewContainerWithDefaults(db bun.IDB, logger *zap.Logger) (*Container, error) {
	return NewContainer(db, DefaultConfig(), logger)
}

// Cache returns the shared cache.
func (c *Container) Cache() cache.Cache {
	return c.cache
}

func (c *Container) Keys() cache.KeySpace {
	return c.keys
}

func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

func (c *Container) Fetchers() *repositorycache.Fetchers {
	return c.fetchers
}

func (c *Container) Browser() *repositorycache.SubjectBrowser {
	return c.browser
}

func (c *Container) Aggregator() *trending.Aggregator {
	return c.aggregator
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Close releases the redis client, if any.
func (c *Container) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
