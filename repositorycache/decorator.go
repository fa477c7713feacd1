package repositorycache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/metrics"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/visibility"
)

// Definition describes one cached entity kind.
type Definition[R any, T any] struct {
	// Kind namespaces the cache keys, e.g. "subject:slim".
	Kind    string
	TTL     time.Duration
	Lookup  store.Lookup[R]
	Convert func(R) T
	ID      func(T) uint32
	Visible visibility.Gate[T]
}

// Option configures a Fetcher or a SubjectBrowser.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// WithLogger sets the logger; nil keeps a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records cache lookups into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Fetcher decorates a store lookup with a read-through cache.
//
// Records are cached as converted, whoever asked first, and the visibility
// gate runs on every read, hit or miss. Cache failures degrade to store
// reads; store failures are returned.
type Fetcher[R any, T any] struct {
	def   Definition[R, T]
	cache cache.Cache
	keys  cache.KeySpace
	options
}

// NewFetcher creates a Fetcher for def.
func NewFetcher[R any, T any](def Definition[R, T], c cache.Cache, keys cache.KeySpace, opts ...Option) *Fetcher[R, T] {
	if def.Visible == nil {
		def.Visible = visibility.Always[T]
	}
	return &Fetcher[R, T]{def: def, cache: c, keys: keys, options: newOptions(opts)}
}

// FetchByID returns the record with id when it exists and is visible
// under opts.
func (f *Fetcher[R, T]) FetchByID(ctx context.Context, id uint32, opts visibility.Options) (T, bool, error) {
	var zero T
	key := f.keys.Entity(f.def.Kind, id)

	record, hit, err := cache.GetValue[T](ctx, f.cache, key)
	switch {
	case err != nil:
		f.logger.Warn("cache get failed, reading store", zap.String("key", key), zap.Error(err))
		f.metrics.CacheLookups(f.def.Kind, metrics.ResultError, 1)
	case hit:
		f.metrics.CacheLookups(f.def.Kind, metrics.ResultHit, 1)
		return f.visible(ctx, record, opts)
	default:
		f.metrics.CacheLookups(f.def.Kind, metrics.ResultMiss, 1)
	}

	row, ok, err := f.def.Lookup.GetByID(ctx, id)
	if err != nil || !ok {
		return zero, false, err
	}

	record = f.def.Convert(row)
	f.write(ctx, key, record)
	return f.visible(ctx, record, opts)
}

// FetchByIDs resolves ids in one cache round-trip and at most one store
// query. Ids that do not exist or are not visible are absent from the map.
func (f *Fetcher[R, T]) FetchByIDs(ctx context.Context, ids []uint32, opts visibility.Options) (map[uint32]T, error) {
	result := make(map[uint32]T, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	unique := dedupe(ids)
	keys := f.keys.Entities(f.def.Kind, unique)

	cached, err := f.cache.MGet(ctx, keys...)
	if err != nil || len(cached) != len(keys) {
		f.logger.Warn("cache mget failed, reading store",
			zap.String("kind", f.def.Kind), zap.Int("keys", len(keys)), zap.Error(err))
		f.metrics.CacheLookups(f.def.Kind, metrics.ResultError, len(keys))
		cached = make([][]byte, len(keys))
	}

	var missing []uint32
	for i, id := range unique {
		if cached[i] == nil {
			missing = append(missing, id)
			continue
		}
		record, err := cache.Unmarshal[T](cached[i])
		if err != nil {
			missing = append(missing, id)
			continue
		}
		if err := f.include(ctx, result, id, record, opts); err != nil {
			return nil, err
		}
	}
	f.metrics.CacheLookups(f.def.Kind, metrics.ResultHit, len(unique)-len(missing))
	f.metrics.CacheLookups(f.def.Kind, metrics.ResultMiss, len(missing))

	if len(missing) == 0 {
		return result, nil
	}

	rows, err := f.def.Lookup.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := f.def.Convert(row)
		id := f.def.ID(record)
		f.write(ctx, f.keys.Entity(f.def.Kind, id), record)
		if err := f.include(ctx, result, id, record, opts); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Invalidate drops the cached records of ids, for write paths that own them.
func (f *Fetcher[R, T]) Invalidate(ctx context.Context, ids ...uint32) error {
	if len(ids) == 0 {
		return nil
	}
	return f.cache.Del(ctx, f.keys.Entities(f.def.Kind, dedupe(ids))...)
}

func (f *Fetcher[R, T]) visible(ctx context.Context, record T, opts visibility.Options) (T, bool, error) {
	var zero T
	ok, err := f.def.Visible(ctx, record, opts)
	if err != nil || !ok {
		return zero, false, err
	}
	return record, true, nil
}

func (f *Fetcher[R, T]) include(ctx context.Context, result map[uint32]T, id uint32, record T, opts visibility.Options) error {
	ok, err := f.def.Visible(ctx, record, opts)
	if err != nil {
		return err
	}
	if ok {
		result[id] = record
	}
	return nil
}

func (f *Fetcher[R, T]) write(ctx context.Context, key string, record T) {
	if err := cache.SetValue(ctx, f.cache, key, record, f.def.TTL); err != nil {
		f.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// dedupe returns ids without repeats, keeping first occurrences in order.
func dedupe(ids []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(ids))
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
