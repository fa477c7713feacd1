package trending

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/metrics"
	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/pkg/testsupport"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/visibility"
)

var fixedNow = time.Unix(1700000000, 0).Add(30 * 24 * time.Hour)

type stubCounter struct {
	mu      sync.Mutex
	queries []store.InterestQuery
	items   []model.TrendingItem
	err     error

	// when block is set, Counts closes started and waits on block
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *stubCounter) Counts(ctx context.Context, q store.InterestQuery) ([]model.TrendingItem, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if s.block != nil {
		s.once.Do(func() { close(s.started) })
		<-s.block
	}
	return s.items, s.err
}

func (s *stubCounter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type stubResolver struct {
	subjects map[uint32]model.SlimSubject
}

func (s stubResolver) FetchByIDs(ctx context.Context, ids []uint32, opts visibility.Options) (map[uint32]model.SlimSubject, error) {
	out := make(map[uint32]model.SlimSubject)
	for _, id := range ids {
		if subject, ok := s.subjects[id]; ok && (opts.AllowNSFW || !subject.NSFW) {
			out[id] = subject
		}
	}
	return out, nil
}

func newTestAggregator(t *testing.T, counter InterestCounter, opts ...Option) (*Aggregator, cache.Cache, cache.KeySpace) {
	t.Helper()
	c, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)
	keys := cache.NewKeySpace("test:")

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewAggregator(c, keys, counter, opts...), c, keys
}

func lockHeld(t *testing.T, c cache.Cache, keys cache.KeySpace, subjectType model.SubjectType, period Period) bool {
	t.Helper()
	_, ok, err := c.Get(context.Background(), keys.Lock(keys.Trending(kind, uint8(subjectType), string(period))))
	require.NoError(t, err)
	return ok
}

func ranked() []model.TrendingItem {
	return []model.TrendingItem{{ID: 20, Total: 9}, {ID: 10, Total: 5}, {ID: 30, Total: 1}}
}

func TestPeriod_Duration(t *testing.T) {
	tests := []struct {
		period Period
		want   time.Duration
	}{
		{PeriodDay, 24 * time.Hour},
		{PeriodWeek, 7 * 24 * time.Hour},
		{PeriodMonth, 30 * 24 * time.Hour},
		{PeriodYear, 365 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, err := tt.period.Duration()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Period("decade").Duration()
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestAggregator_TriggerThenRead(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{items: ranked()}
	agg, c, keys := newTestAggregator(t, counter)

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false))

	require.Len(t, counter.queries, 1)
	q := counter.queries[0]
	assert.Equal(t, model.SubjectTypeAnime, q.Type)
	assert.Equal(t, store.WindowDoing, q.Window)
	assert.Equal(t, int64(1700000000), q.Since)
	assert.Equal(t, MaxItems, q.Limit)
	assert.False(t, lockHeld(t, c, keys, model.SubjectTypeAnime, PeriodMonth), "lock released after success")

	all, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, ranked(), all)

	page, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.TrendingItem{{ID: 10, Total: 5}, {ID: 30, Total: 1}}, page)

	past, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, 5, 3)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestAggregator_ReadNeverComputes(t *testing.T) {
	counter := &stubCounter{items: ranked()}
	agg, _, _ := newTestAggregator(t, counter)

	items, err := agg.Read(context.Background(), model.SubjectTypeGame, PeriodWeek, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Zero(t, counter.calls())
}

func TestAggregator_WindowPerSubjectType(t *testing.T) {
	tests := []struct {
		subjectType model.SubjectType
		want        store.InterestWindow
	}{
		{model.SubjectTypeBook, store.WindowUpdated},
		{model.SubjectTypeMusic, store.WindowUpdated},
		{model.SubjectTypeAnime, store.WindowDoing},
		{model.SubjectTypeGame, store.WindowDoing},
		{model.SubjectTypeReal, store.WindowDoing},
	}
	for _, tt := range tests {
		t.Run(tt.subjectType.String(), func(t *testing.T) {
			counter := &stubCounter{items: ranked()}
			agg, _, _ := newTestAggregator(t, counter)

			require.NoError(t, agg.Trigger(context.Background(), tt.subjectType, PeriodDay, false))
			require.Len(t, counter.queries, 1)
			assert.Equal(t, tt.want, counter.queries[0].Window)
			assert.Equal(t, fixedNow.Add(-24*time.Hour).Unix(), counter.queries[0].Since)
		})
	}
}

func TestAggregator_ConcurrentTriggerRunsOnce(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{
		items:   ranked(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	agg, _, _ := newTestAggregator(t, counter)

	done := make(chan error, 1)
	go func() { done <- agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false) }()
	<-counter.started

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false), "busy trigger is not an error")
	close(counter.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, counter.calls())

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false))
	assert.Equal(t, 2, counter.calls(), "lock is released once a run finishes")
}

func TestAggregator_ExpiredRunKeepsNextHoldersLock(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{
		items:   ranked(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	agg, c, keys := newTestAggregator(t, counter)
	lock := keys.Lock(keys.Trending(kind, uint8(model.SubjectTypeAnime), string(PeriodMonth)))

	done := make(chan error, 1)
	go func() { done <- agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false) }()
	<-counter.started

	// the first run's lock expires and another worker takes it
	require.NoError(t, c.Del(ctx, lock))
	acquired, err := c.SetNX(ctx, lock, []byte("worker-b"), cache.TTLLock)
	require.NoError(t, err)
	require.True(t, acquired)

	close(counter.block)
	require.NoError(t, <-done)

	value, ok, err := c.Get(ctx, lock)
	require.NoError(t, err)
	require.True(t, ok, "lock of the next holder must survive")
	assert.Equal(t, "worker-b", string(value))

	items, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, ranked(), items)
}

func TestAggregator_LockHoldsRunToken(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{
		items:   ranked(),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	agg, c, keys := newTestAggregator(t, counter)
	agg.newToken = func() string { return "run-1" }
	lock := keys.Lock(keys.Trending(kind, uint8(model.SubjectTypeGame), string(PeriodDay)))

	done := make(chan error, 1)
	go func() { done <- agg.Trigger(ctx, model.SubjectTypeGame, PeriodDay, false) }()
	<-counter.started

	value, ok, err := c.Get(ctx, lock)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", string(value))

	close(counter.block)
	require.NoError(t, <-done)
	assert.False(t, lockHeld(t, c, keys, model.SubjectTypeGame, PeriodDay))
}

func TestAggregator_ReadHugeLimit(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newTestAggregator(t, &stubCounter{items: ranked()})
	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false))

	items, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, math.MaxInt, 1)
	require.NoError(t, err)
	assert.Equal(t, ranked()[1:], items)

	items, err = agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, math.MaxInt, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAggregator_HeldLockSkipsUnlessFlushed(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{items: ranked()}
	agg, c, keys := newTestAggregator(t, counter)

	lock := keys.Lock(keys.Trending(kind, uint8(model.SubjectTypeAnime), string(PeriodWeek)))
	acquired, err := c.SetNX(ctx, lock, []byte("other-worker"), cache.TTLLock)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodWeek, false))
	assert.Zero(t, counter.calls())

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodWeek, true))
	assert.Equal(t, 1, counter.calls())
	assert.False(t, lockHeld(t, c, keys, model.SubjectTypeAnime, PeriodWeek))

	items, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodWeek, 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestAggregator_FlushDropsLock(t *testing.T) {
	ctx := context.Background()
	agg, c, keys := newTestAggregator(t, &stubCounter{})

	lock := keys.Lock(keys.Trending(kind, uint8(model.SubjectTypeReal), string(PeriodDay)))
	require.NoError(t, c.Set(ctx, lock, []byte("stale"), cache.TTLLock))

	require.NoError(t, agg.Flush(ctx, model.SubjectTypeReal, PeriodDay))
	assert.False(t, lockHeld(t, c, keys, model.SubjectTypeReal, PeriodDay))
}

func TestAggregator_InvalidPeriodKeepsLock(t *testing.T) {
	counter := &stubCounter{items: ranked()}
	agg, c, keys := newTestAggregator(t, counter)

	err := agg.Trigger(context.Background(), model.SubjectTypeAnime, Period("decade"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
	assert.Zero(t, counter.calls())
	assert.True(t, lockHeld(t, c, keys, model.SubjectTypeAnime, Period("decade")))
}

func TestAggregator_StoreFailureKeepsLock(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")
	counter := &stubCounter{err: storeErr}
	m := metrics.NewCollector("test")
	agg, c, keys := newTestAggregator(t, counter, WithMetrics(m))

	err := agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false)
	assert.ErrorIs(t, err, storeErr)
	assert.True(t, lockHeld(t, c, keys, model.SubjectTypeAnime, PeriodMonth))

	items, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false))
	assert.Equal(t, 1, counter.calls(), "held lock acts as a cool-down")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrendingRuns.WithLabelValues("anime", "month", metrics.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrendingRuns.WithLabelValues("anime", "month", metrics.OutcomeBusy)))
}

func TestAggregator_TriggerAll(t *testing.T) {
	ctx := context.Background()
	counter := &stubCounter{items: ranked()}
	m := metrics.NewCollector("test")
	agg, _, _ := newTestAggregator(t, counter, WithMetrics(m))

	require.NoError(t, agg.TriggerAll(ctx, Periods, false))
	assert.Equal(t, len(model.SubjectTypes)*len(Periods), counter.calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrendingRuns.WithLabelValues("book", "year", metrics.OutcomeComputed)))

	err := agg.TriggerAll(ctx, []Period{PeriodDay, "decade"}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
	assert.Equal(t, len(model.SubjectTypes)*(len(Periods)+1), counter.calls())
}

func TestAggregator_ReadSubjects(t *testing.T) {
	ctx := context.Background()
	resolver := stubResolver{subjects: map[uint32]model.SlimSubject{
		10: {ID: 10, Name: "Hidden", NSFW: true},
		20: {ID: 20, Name: "First"},
		30: {ID: 30, Name: "Third"},
	}}
	agg, _, _ := newTestAggregator(t, &stubCounter{items: ranked()}, WithSubjects(resolver))
	require.NoError(t, agg.Trigger(ctx, model.SubjectTypeAnime, PeriodMonth, false))

	subjects, err := agg.ReadSubjects(ctx, model.SubjectTypeAnime, PeriodMonth, 10, 0, visibility.Options{})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, uint32(20), subjects[0].ID)
	assert.Equal(t, uint32(30), subjects[1].ID)

	subjects, err = agg.ReadSubjects(ctx, model.SubjectTypeAnime, PeriodMonth, 2, 0, visibility.Options{AllowNSFW: true})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, uint32(10), subjects[1].ID)
}

func TestAggregator_ReadSubjectsWithoutResolver(t *testing.T) {
	agg, _, _ := newTestAggregator(t, &stubCounter{})
	_, err := agg.ReadSubjects(context.Background(), model.SubjectTypeAnime, PeriodMonth, 10, 0, visibility.Options{})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryInternal))
}

func TestAggregator_OverStore(t *testing.T) {
	ctx := context.Background()
	db := testsupport.OpenDB(t, store.Models()...)
	testsupport.InsertFixture(t, db, "../store/testdata/subjects.json", &[]store.SubjectRow{})
	testsupport.InsertFixture(t, db, "../store/testdata/interests.json", &[]store.InterestRow{})

	agg, _, _ := newTestAggregator(t, store.NewInterests(db))

	require.NoError(t, agg.TriggerAll(ctx, []Period{PeriodMonth}, false))

	anime, err := agg.Read(ctx, model.SubjectTypeAnime, PeriodMonth, MaxItems, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.TrendingItem{{ID: 4, Total: 3}, {ID: 1, Total: 2}}, anime)

	books, err := agg.Read(ctx, model.SubjectTypeBook, PeriodMonth, MaxItems, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.TrendingItem{{ID: 5, Total: 1}}, books)
}
