package store

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/visibility"
)

// Order is the ordering of a subject listing. Ties are broken by id.
type Order int

const (
	OrderID Order = iota
	// OrderRank is by rank ascending; only ranked subjects match.
	OrderRank
	OrderDate
	OrderCollects
	OrderTitle
)

// SubjectQuery holds the predicates of a subject listing.
type SubjectQuery struct {
	Type     model.SubjectType
	Exclude  visibility.Exclusions
	Platform uint16
	Series   *bool
	Year     int
	Month    int
	// IDs constrains the listing to a set of subjects. nil means
	// unconstrained, an empty non-nil slice matches nothing.
	IDs   []uint32
	Order Order
}

func (q SubjectQuery) matchesNothing() bool {
	return q.IDs != nil && len(q.IDs) == 0
}

// Subjects runs filtered subject listings.
type Subjects struct {
	db bun.IDB
}

// NewSubjects creates the subject listing queries over db.
func NewSubjects(db bun.IDB) *Subjects {
	return &Subjects{db: db}
}

// Count returns the number of subjects matching q.
func (s *Subjects) Count(ctx context.Context, q SubjectQuery) (int, error) {
	if q.matchesNothing() {
		return 0, nil
	}
	n, err := s.selectQuery(q).Count(ctx)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryExternal, "count subjects")
	}
	return n, nil
}

// QueryIDs returns the ids of one page of subjects matching q, in q.Order.
// A limit of 0 returns every match.
func (s *Subjects) QueryIDs(ctx context.Context, q SubjectQuery, limit, offset int) ([]uint32, error) {
	if q.matchesNothing() {
		return []uint32{}, nil
	}

	sq := s.selectQuery(q).ColumnExpr("s.subject_id")
	switch q.Order {
	case OrderRank:
		sq = sq.OrderExpr("f.field_rank ASC")
	case OrderDate:
		sq = sq.OrderExpr("f.field_date DESC")
	case OrderCollects:
		sq = sq.OrderExpr("s.subject_collect DESC")
	case OrderTitle:
		sq = sq.OrderExpr("s.subject_name ASC")
	}
	sq = sq.OrderExpr("s.subject_id ASC")
	if limit > 0 {
		sq = sq.Limit(limit).Offset(offset)
	}

	ids := []uint32{}
	if err := sq.Scan(ctx, &ids); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "query subject ids")
	}
	return ids, nil
}

func (s *Subjects) selectQuery(q SubjectQuery) *bun.SelectQuery {
	sq := s.db.NewSelect().
		Model((*SubjectRow)(nil)).
		Join("JOIN chii_subject_fields AS f ON f.field_sid = s.subject_id").
		Where("s.subject_type_id = ?", q.Type)

	if q.Exclude.Banned {
		sq = sq.Where("s.subject_ban = 0")
	}
	if q.Exclude.NSFW {
		sq = sq.Where("s.subject_nsfw = ?", false)
	}
	if q.Platform != 0 {
		sq = sq.Where("s.subject_platform = ?", q.Platform)
	}
	if q.Series != nil {
		sq = sq.Where("s.subject_series = ?", *q.Series)
	}
	if q.Year != 0 {
		sq = sq.Where("f.field_year = ?", q.Year)
	}
	if q.Month != 0 {
		sq = sq.Where("f.field_mon = ?", q.Month)
	}
	if q.IDs != nil {
		sq = sq.Where("s.subject_id IN (?)", bun.In(q.IDs))
	}
	if q.Order == OrderRank {
		sq = sq.Where("f.field_rank > 0")
	}
	return sq
}
