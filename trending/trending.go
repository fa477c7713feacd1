// Package trending computes and serves ranked lists of the subjects users
// showed the most interest in over a trailing period.
//
// Computation is driven by a scheduler calling Trigger and guarded by an
// advisory lock in the cache; readers only ever see the last computed list.
package trending

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/metrics"
	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/visibility"
)

// MaxItems caps the length of a trending list.
const MaxItems = 1000

const kind = "subjects"

// Period is the trailing window a trending list covers.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists every known period.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// ErrInvalidPeriod is returned for a period without a known window.
var ErrInvalidPeriod = goerrors.New("invalid trending period", goerrors.CategoryValidation)

// Duration returns the length of p.
func (p Period) Duration() (time.Duration, error) {
	const day = 24 * time.Hour
	switch p {
	case PeriodDay:
		return day, nil
	case PeriodWeek:
		return 7 * day, nil
	case PeriodMonth:
		return 30 * day, nil
	case PeriodYear:
		return 365 * day, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
}

// InterestCounter aggregates interest per subject.
type InterestCounter interface {
	Counts(ctx context.Context, q store.InterestQuery) ([]model.TrendingItem, error)
}

// SubjectResolver loads slim subjects by id.
type SubjectResolver interface {
	FetchByIDs(ctx context.Context, ids []uint32, opts visibility.Options) (map[uint32]model.SlimSubject, error)
}

// Aggregator computes trending lists into the cache and reads them back.
type Aggregator struct {
	cache     cache.Cache
	keys      cache.KeySpace
	interests InterestCounter
	subjects  SubjectResolver
	logger    *zap.Logger
	metrics   *metrics.Collector
	now       func() time.Time
	newToken  func() string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger; nil keeps a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithMetrics records trending runs into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock sets the time source the trailing windows are measured from.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithSubjects enables ReadSubjects.
func WithSubjects(subjects SubjectResolver) Option {
	return func(a *Aggregator) { a.subjects = subjects }
}

// NewAggregator creates an Aggregator counting interests into c.
func NewAggregator(c cache.Cache, keys cache.KeySpace, interests InterestCounter, opts ...Option) *Aggregator {
	a := &Aggregator{
		cache:     c,
		keys:      keys,
		interests: interests,
		now:       time.Now,
		newToken:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

func (a *Aggregator) key(subjectType model.SubjectType, period Period) string {
	return a.keys.Trending(kind, uint8(subjectType), string(period))
}

// Trigger recomputes the list of subjectType for period unless another
// computation holds the lock, in which case it returns nil right away.
// flush drops the lock first. On failure the lock is kept until it expires.
// The lock holds a per-run token and is only released by the run that set it.
func (a *Aggregator) Trigger(ctx context.Context, subjectType model.SubjectType, period Period, flush bool) error {
	key := a.key(subjectType, period)
	lock := a.keys.Lock(key)
	labelType, labelPeriod := subjectType.String(), string(period)
	log := a.logger.With(zap.String("subject_type", labelType), zap.String("period", labelPeriod))

	if flush {
		if err := a.cache.Del(ctx, lock); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "flush trending lock")
		}
	}

	token := []byte(a.newToken())
	acquired, err := a.cache.SetNX(ctx, lock, token, cache.TTLLock)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "acquire trending lock")
	}
	if !acquired {
		log.Info("trending computation already in progress")
		a.metrics.TrendingRun(labelType, labelPeriod, metrics.OutcomeBusy)
		return nil
	}

	window, err := period.Duration()
	if err != nil {
		log.Error("cannot compute trending list", zap.Error(err))
		a.metrics.TrendingRun(labelType, labelPeriod, metrics.OutcomeFailed)
		return err
	}

	start := a.now()
	items, err := a.interests.Counts(ctx, store.InterestQuery{
		Type:   subjectType,
		Window: windowOf(subjectType),
		Since:  start.Add(-window).Unix(),
		Limit:  MaxItems,
	})
	if err != nil {
		log.Error("trending aggregation failed, lock left to expire", zap.Error(err))
		a.metrics.TrendingRun(labelType, labelPeriod, metrics.OutcomeFailed)
		return err
	}

	if err := cache.SetValue(ctx, a.cache, key, items, cache.NoExpiry); err != nil {
		log.Error("cannot store trending list", zap.Error(err))
		a.metrics.TrendingRun(labelType, labelPeriod, metrics.OutcomeFailed)
		return goerrors.Wrap(err, goerrors.CategoryExternal, "store trending list")
	}
	// a run that outlived the lock must not release the next holder's lock
	if released, err := a.cache.DelIfValue(ctx, lock, token); err != nil {
		log.Warn("cannot release trending lock", zap.Error(err))
	} else if !released {
		log.Warn("trending lock expired during computation")
	}

	a.metrics.TrendingRun(labelType, labelPeriod, metrics.OutcomeComputed)
	a.metrics.ObserveTrending(labelType, labelPeriod, a.now().Sub(start))
	log.Info("trending list computed", zap.Int("items", len(items)))
	return nil
}

// TriggerAll triggers every subject type for every period. Pairs are
// independent; the errors of all failed pairs are joined.
func (a *Aggregator) TriggerAll(ctx context.Context, periods []Period, flush bool) error {
	var errs []error
	for _, subjectType := range model.SubjectTypes {
		for _, period := range periods {
			if err := a.Trigger(ctx, subjectType, period, flush); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", subjectType, period, err))
			}
		}
	}
	return goerrors.Join(errs...)
}

// Flush drops the lock of one list without recomputing it.
func (a *Aggregator) Flush(ctx context.Context, subjectType model.SubjectType, period Period) error {
	if err := a.cache.Del(ctx, a.keys.Lock(a.key(subjectType, period))); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "flush trending lock")
	}
	return nil
}

// Read returns items [offset, offset+limit) of the last computed list. It
// never computes; a list that was not computed yet reads as empty.
func (a *Aggregator) Read(ctx context.Context, subjectType model.SubjectType, period Period, limit, offset int) ([]model.TrendingItem, error) {
	key := a.key(subjectType, period)
	items, ok, err := cache.GetValue[[]model.TrendingItem](ctx, a.cache, key)
	if err != nil {
		a.logger.Warn("cannot read trending list", zap.String("key", key), zap.Error(err))
		return []model.TrendingItem{}, nil
	}
	if !ok || limit <= 0 {
		return []model.TrendingItem{}, nil
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []model.TrendingItem{}, nil
	}
	if limit > len(items)-offset {
		limit = len(items) - offset
	}
	return items[offset : offset+limit], nil
}

// ReadSubjects reads a slice of the list like Read and resolves it into
// subjects, in rank order. Subjects not visible under opts are left out.
func (a *Aggregator) ReadSubjects(ctx context.Context, subjectType model.SubjectType, period Period, limit, offset int, opts visibility.Options) ([]model.SlimSubject, error) {
	if a.subjects == nil {
		return nil, goerrors.New("trending aggregator has no subject resolver", goerrors.CategoryInternal)
	}

	items, err := a.Read(ctx, subjectType, period, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	found, err := a.subjects.FetchByIDs(ctx, ids, opts)
	if err != nil {
		return nil, err
	}

	out := make([]model.SlimSubject, 0, len(found))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// windowOf returns the interest timestamp trending is measured on. Books
// and music are tracked by last update instead of by start date.
func windowOf(subjectType model.SubjectType) store.InterestWindow {
	switch subjectType {
	case model.SubjectTypeBook, model.SubjectTypeMusic:
		return store.WindowUpdated
	}
	return store.WindowDoing
}
