package store

import "github.com/uptrace/bun"

// Entity lookups. Banned rows are excluded in SQL, so a banned entity is
// never loaded into the cache.

func NewSubjectTable(db bun.IDB) *Table[SubjectRow] {
	return NewTable[SubjectRow](db, "s.subject_id", Relation("Fields"), Where("s.subject_ban = 0"))
}

func NewMemberTable(db bun.IDB) *Table[MemberRow] {
	return NewTable[MemberRow](db, "m.uid")
}

func NewCharacterTable(db bun.IDB) *Table[CharacterRow] {
	return NewTable[CharacterRow](db, "c.crt_id", Where("c.crt_ban = ?", false))
}

func NewPersonTable(db bun.IDB) *Table[PersonRow] {
	return NewTable[PersonRow](db, "p.prsn_id", Where("p.prsn_ban = ?", false))
}

func NewGroupTable(db bun.IDB) *Table[GroupRow] {
	return NewTable[GroupRow](db, "g.grp_id")
}

func NewEpisodeTable(db bun.IDB) *Table[EpisodeRow] {
	return NewTable[EpisodeRow](db, "e.ep_id", Where("e.ep_ban = ?", false))
}

func NewSubjectTopicTable(db bun.IDB) *Table[SubjectTopicRow] {
	return NewTable[SubjectTopicRow](db, "t.sbj_tpc_id", Where("t.sbj_tpc_display = ?", TopicDisplayNormal))
}

func NewGroupTopicTable(db bun.IDB) *Table[GroupTopicRow] {
	return NewTable[GroupTopicRow](db, "t.grp_tpc_id", Where("t.grp_tpc_display = ?", TopicDisplayNormal))
}

func NewBlogTable(db bun.IDB) *Table[BlogEntryRow] {
	return NewTable[BlogEntryRow](db, "b.entry_id")
}

func NewIndexTable(db bun.IDB) *Table[IndexRow] {
	return NewTable[IndexRow](db, "i.idx_id", Where("i.idx_ban = ?", false))
}

// Models lists every row type, in an order that can be used to create
// the schema of a scratch database.
func Models() []interface{} {
	return []interface{}{
		(*SubjectRow)(nil),
		(*SubjectFieldRow)(nil),
		(*MemberRow)(nil),
		(*CharacterRow)(nil),
		(*PersonRow)(nil),
		(*GroupRow)(nil),
		(*EpisodeRow)(nil),
		(*SubjectTopicRow)(nil),
		(*GroupTopicRow)(nil),
		(*BlogEntryRow)(nil),
		(*IndexRow)(nil),
		(*TagIndexRow)(nil),
		(*TagListRow)(nil),
		(*InterestRow)(nil),
		(*FriendRow)(nil),
	}
}
