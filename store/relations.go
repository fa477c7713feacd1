package store

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/trim21/bangumi-server-private/model"
)

// Tags resolves subject tags.
type Tags struct {
	db bun.IDB
}

func NewTags(db bun.IDB) *Tags {
	return &Tags{db: db}
}

// SubjectIDs returns the subjects of subjectType tagged name: the name is
// resolved to tag index ids, then to the members of those tags. No match
// returns an empty, non-nil slice.
func (t *Tags) SubjectIDs(ctx context.Context, subjectType model.SubjectType, name string) ([]uint32, error) {
	tagIDs := []uint32{}
	err := t.db.NewSelect().
		Model((*TagIndexRow)(nil)).
		ColumnExpr("ti.tag_id").
		Where("ti.tag_name = ?", name).
		Where("ti.tag_cat = ?", TagCategorySubject).
		Where("ti.tag_type = ?", subjectType).
		Scan(ctx, &tagIDs)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("resolve tag %q", name))
	}
	if len(tagIDs) == 0 {
		return []uint32{}, nil
	}

	ids := []uint32{}
	err = t.db.NewSelect().
		Model((*TagListRow)(nil)).
		ColumnExpr("DISTINCT tl.tlt_mid").
		Where("tl.tlt_tid IN (?)", bun.In(tagIDs)).
		Where("tl.tlt_cat = ?", TagCategorySubject).
		OrderExpr("tl.tlt_mid ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("list subjects of tag %q", name))
	}
	return ids, nil
}

// InterestWindow is the timestamp column an interest window is applied to.
type InterestWindow string

const (
	WindowDoing   InterestWindow = "si.interest_doing_dateline"
	WindowUpdated InterestWindow = "si.interest_updated_at"
)

// InterestQuery selects the interests counted for a trending list.
type InterestQuery struct {
	Type   model.SubjectType
	Window InterestWindow
	// Since is a unix timestamp; only interests after it are counted.
	Since int64
	Limit int
}

// Interests aggregates user interest in subjects.
type Interests struct {
	db bun.IDB
}

func NewInterests(db bun.IDB) *Interests {
	return &Interests{db: db}
}

// Counts returns the number of interests per subject within the window,
// most interest first, ties by subject id. Banned and nsfw subjects never
// trend.
func (i *Interests) Counts(ctx context.Context, q InterestQuery) ([]model.TrendingItem, error) {
	items := []model.TrendingItem{}
	err := i.db.NewSelect().
		Model((*InterestRow)(nil)).
		ColumnExpr("si.interest_subject_id AS id").
		ColumnExpr("COUNT(*) AS total").
		Join("JOIN chii_subjects AS s ON s.subject_id = si.interest_subject_id").
		Where("si.interest_subject_type = ?", q.Type).
		Where("s.subject_ban = 0").
		Where("s.subject_nsfw = ?", false).
		Where("? > ?", bun.Ident(string(q.Window)), q.Since).
		GroupExpr("si.interest_subject_id").
		OrderExpr("total DESC, si.interest_subject_id ASC").
		Limit(q.Limit).
		Scan(ctx, &items)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("count interests of %s", q.Type))
	}
	return items, nil
}

// Friends answers friendship questions.
type Friends struct {
	db bun.IDB
}

func NewFriends(db bun.IDB) *Friends {
	return &Friends{db: db}
}

// IsFriend reports whether viewer is on owner's friend list.
func (f *Friends) IsFriend(ctx context.Context, owner, viewer uint32) (bool, error) {
	ok, err := f.db.NewSelect().
		Model((*FriendRow)(nil)).
		Where("fr.frd_uid = ?", owner).
		Where("fr.frd_fid = ?", viewer).
		Exists(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "check friendship")
	}
	return ok, nil
}
