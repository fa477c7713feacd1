package repositorycache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/store"
)

// mockCache is a map backed cache.Cache that records calls and ttls
type mockCache struct {
	mu      sync.Mutex
	storage map[string][]byte
	ttls    map[string]time.Duration
	calls   []string
	getErr  error
	setErr  error
}

func newMockCache() *mockCache {
	return &mockCache{
		storage: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *mockCache) recordCall(method string) {
	m.calls = append(m.calls, method)
}

func (m *mockCache) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Get")
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.storage[key]
	return v, ok, nil
}

func (m *mockCache) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("MGet")
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.storage[k]
	}
	return out, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Set")
	if m.setErr != nil {
		return m.setErr
	}
	m.storage[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("SetNX")
	if _, ok := m.storage[key]; ok {
		return false, nil
	}
	m.storage[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("Del")
	for _, k := range keys {
		delete(m.storage, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *mockCache) DelIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCall("DelIfValue")
	if v, ok := m.storage[key]; !ok || string(v) != string(value) {
		return false, nil
	}
	delete(m.storage, key)
	delete(m.ttls, key)
	return true, nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.storage[key]
	return ok
}

// mockLookup serves rows from a map and tracks method calls
type mockLookup[R any] struct {
	mu    sync.Mutex
	rows  map[uint32]R
	err   error
	calls []string
}

func (m *mockLookup[R]) GetByID(ctx context.Context, id uint32) (R, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("GetByID:%d", id))

	var zero R
	if m.err != nil {
		return zero, false, m.err
	}
	row, ok := m.rows[id]
	return row, ok, nil
}

func (m *mockLookup[R]) GetByIDs(ctx context.Context, ids []uint32) ([]R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("GetByIDs:%v", ids))

	if m.err != nil {
		return nil, m.err
	}
	var out []R
	for _, id := range ids {
		if row, ok := m.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockLookup[R]) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockSubjects evaluates a SubjectQuery against an in-memory list, in list order
type mockSubjects struct {
	mu       sync.Mutex
	subjects []model.SlimSubject
	queries  []store.SubjectQuery
	counts   int
	pages    int
	err      error
}

func (m *mockSubjects) match(q store.SubjectQuery) []uint32 {
	var allowed map[uint32]bool
	if q.IDs != nil {
		allowed = make(map[uint32]bool, len(q.IDs))
		for _, id := range q.IDs {
			allowed[id] = true
		}
	}

	ids := []uint32{}
	for _, s := range m.subjects {
		if s.Type != q.Type || (q.Exclude.NSFW && s.NSFW) {
			continue
		}
		if allowed != nil && !allowed[s.ID] {
			continue
		}
		ids = append(ids, s.ID)
	}
	if q.Order == store.OrderID {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return ids
}

func (m *mockSubjects) Count(ctx context.Context, q store.SubjectQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	m.queries = append(m.queries, q)
	if m.err != nil {
		return 0, m.err
	}
	return len(m.match(q)), nil
}

func (m *mockSubjects) QueryIDs(ctx context.Context, q store.SubjectQuery, limit, offset int) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages++
	if m.err != nil {
		return nil, m.err
	}
	ids := m.match(q)
	if limit == 0 {
		return ids, nil
	}
	if offset >= len(ids) {
		return []uint32{}, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end], nil
}

type mockTags map[string][]uint32

func (m mockTags) SubjectIDs(ctx context.Context, subjectType model.SubjectType, name string) ([]uint32, error) {
	if ids, ok := m[name]; ok {
		return ids, nil
	}
	return []uint32{}, nil
}

// mockFriends is a set of "owner:viewer" pairs
type mockFriends struct {
	pairs map[string]bool
	err   error
}

func (m mockFriends) IsFriend(ctx context.Context, owner, viewer uint32) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.pairs[fmt.Sprintf("%d:%d", owner, viewer)], nil
}
