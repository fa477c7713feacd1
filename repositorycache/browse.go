package repositorycache

import (
	"context"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/internal/metrics"
	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/trending"
	"github.com/trim21/bangumi-server-private/visibility"
)

// PageSize is the number of subjects in a browse page.
const PageSize = 24

// MaxPage is the last page a listing can be asked for; it keeps page
// offsets within an int32.
const MaxPage = math.MaxInt32 / PageSize

const kindBrowse = "subjects"

// Sort is the ordering of a browse listing.
type Sort string

const (
	SortRank     Sort = "rank"
	SortDate     Sort = "date"
	SortCollects Sort = "collects"
	SortTitle    Sort = "title"
	// SortTrends orders by the monthly trending list.
	SortTrends Sort = "trends"
)

// BrowseFilter selects the subjects of a browse listing. Set-like fields
// are compared as sets when building cache keys.
type BrowseFilter struct {
	Type      model.SubjectType
	AllowNSFW bool
	Platform  uint16
	Series    *bool
	Year      int
	Month     int
	IDs       []uint32 `cachekey:"set"`
	Tags      []string `cachekey:"set"`
}

// Validate checks the filter fields that have a closed range.
func (f BrowseFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.Required, validation.By(knownSubjectType)),
		validation.Field(&f.Year, validation.Min(1900), validation.Max(2100)),
		validation.Field(&f.Month, validation.Min(1), validation.Max(12)),
	)
}

func knownSubjectType(value interface{}) error {
	t, _ := value.(model.SubjectType)
	if !t.Valid() {
		return validation.NewError("validation_subject_type", "must be a known subject type")
	}
	return nil
}

// SubjectQuerier runs filtered subject listings.
type SubjectQuerier interface {
	Count(ctx context.Context, q store.SubjectQuery) (int, error)
	QueryIDs(ctx context.Context, q store.SubjectQuery, limit, offset int) ([]uint32, error)
}

// TagResolver maps a tag name to the subjects carrying it.
type TagResolver interface {
	SubjectIDs(ctx context.Context, subjectType model.SubjectType, name string) ([]uint32, error)
}

// TrendingReader serves computed trending lists.
type TrendingReader interface {
	Read(ctx context.Context, subjectType model.SubjectType, period trending.Period, limit, offset int) ([]model.TrendingItem, error)
}

// SubjectBrowser caches pages of subject ids keyed by filter, sort and page.
type SubjectBrowser struct {
	subjects SubjectQuerier
	tags     TagResolver
	trending TrendingReader
	cache    cache.Cache
	keys     cache.KeySpace
	options
}

// NewSubjectBrowser creates a SubjectBrowser caching into c.
func NewSubjectBrowser(subjects SubjectQuerier, tags TagResolver, tr TrendingReader, c cache.Cache, keys cache.KeySpace, opts ...Option) *SubjectBrowser {
	return &SubjectBrowser{
		subjects: subjects,
		tags:     tags,
		trending: tr,
		cache:    c,
		keys:     keys,
		options:  newOptions(opts),
	}
}

// FetchPage returns one page of subject ids matching filter, pages
// starting at 1. Empty results are not cached.
func (b *SubjectBrowser) FetchPage(ctx context.Context, filter BrowseFilter, sort Sort, page int) (model.Paged[uint32], error) {
	if err := validateBrowse(filter, sort, page); err != nil {
		return model.Paged[uint32]{}, err
	}
	if len(filter.IDs) == 0 {
		filter.IDs = nil
	}
	if len(filter.Tags) == 0 {
		filter.Tags = nil
	}

	key := b.keys.List(kindBrowse, filter, string(sort), page)
	cached, hit, err := cache.GetValue[model.Paged[uint32]](ctx, b.cache, key)
	switch {
	case err != nil:
		b.logger.Warn("cache get failed, reading store", zap.String("key", key), zap.Error(err))
		b.metrics.CacheLookups(kindBrowse, metrics.ResultError, 1)
	case hit:
		b.metrics.CacheLookups(kindBrowse, metrics.ResultHit, 1)
		return cached, nil
	default:
		b.metrics.CacheLookups(kindBrowse, metrics.ResultMiss, 1)
	}

	var constraint []uint32
	if filter.IDs != nil {
		constraint = dedupe(filter.IDs)
	}

	if sort == SortTrends {
		items, err := b.trending.Read(ctx, filter.Type, trending.PeriodMonth, trending.MaxItems, 0)
		if err != nil {
			return model.Paged[uint32]{}, err
		}
		if len(items) == 0 {
			return model.EmptyPage[uint32](), nil
		}
		ranked := make([]uint32, len(items))
		for i, item := range items {
			ranked[i] = item.ID
		}
		constraint = constrain(ranked, constraint)
	}

	for _, tag := range filter.Tags {
		tagged, err := b.tags.SubjectIDs(ctx, filter.Type, tag)
		if err != nil {
			return model.Paged[uint32]{}, err
		}
		if tagged == nil {
			tagged = []uint32{}
		}
		constraint = constrain(constraint, tagged)
		if len(constraint) == 0 {
			break
		}
	}

	if constraint != nil && len(constraint) == 0 {
		return model.EmptyPage[uint32](), nil
	}

	q := store.SubjectQuery{
		Type:     filter.Type,
		Exclude:  visibility.Options{AllowNSFW: filter.AllowNSFW}.Exclusions(),
		Platform: filter.Platform,
		Series:   filter.Series,
		Year:     filter.Year,
		Month:    filter.Month,
		IDs:      constraint,
		Order:    orderOf(sort),
	}

	total, err := b.subjects.Count(ctx, q)
	if err != nil {
		return model.Paged[uint32]{}, err
	}
	if total == 0 {
		return model.EmptyPage[uint32](), nil
	}

	var data []uint32
	if sort == SortTrends {
		matched, err := b.subjects.QueryIDs(ctx, q, 0, 0)
		if err != nil {
			return model.Paged[uint32]{}, err
		}
		// constraint is in rank order
		data = paginate(constrain(constraint, matched), page)
	} else {
		data, err = b.subjects.QueryIDs(ctx, q, PageSize, (page-1)*PageSize)
		if err != nil {
			return model.Paged[uint32]{}, err
		}
	}

	result := model.Paged[uint32]{Data: data, Total: total}
	ttl := cache.TTLListPage
	if page == 1 {
		ttl = cache.TTLListFirstPage
	}
	if err := cache.SetValue(ctx, b.cache, key, result, ttl); err != nil {
		b.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

func validateBrowse(filter BrowseFilter, sort Sort, page int) error {
	err := validation.Errors{
		"filter": filter.Validate(),
		"sort": validation.Validate(string(sort), validation.Required,
			validation.In(string(SortRank), string(SortDate), string(SortCollects), string(SortTitle), string(SortTrends))),
		"page": validation.Validate(page, validation.Required, validation.Min(1), validation.Max(MaxPage)),
	}.Filter()
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid browse request")
	}
	return nil
}

func orderOf(sort Sort) store.Order {
	switch sort {
	case SortRank:
		return store.OrderRank
	case SortDate:
		return store.OrderDate
	case SortCollects:
		return store.OrderCollects
	case SortTitle:
		return store.OrderTitle
	}
	return store.OrderID
}

// constrain narrows ids to the members of by, keeping the order of ids.
// A nil ids is unconstrained and yields by itself.
func constrain(ids, by []uint32) []uint32 {
	if ids == nil {
		return by
	}
	if by == nil {
		return ids
	}
	set := make(map[uint32]struct{}, len(by))
	for _, id := range by {
		set[id] = struct{}{}
	}
	out := []uint32{}
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func paginate(ids []uint32, page int) []uint32 {
	start := (page - 1) * PageSize
	if start >= len(ids) {
		return []uint32{}
	}
	end := start + PageSize
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
