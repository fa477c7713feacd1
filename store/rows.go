package store

import (
	"time"

	"github.com/uptrace/bun"
)

type SubjectRow struct {
	bun.BaseModel `bun:"table:chii_subjects,alias:s"`

	ID       uint32 `bun:"subject_id,pk"`
	TypeID   uint8  `bun:"subject_type_id,notnull"`
	Name     string `bun:"subject_name,notnull"`
	NameCN   string `bun:"subject_name_cn,notnull"`
	Image    string `bun:"subject_image,notnull"`
	Platform uint16 `bun:"subject_platform,notnull"`
	Infobox  string `bun:"field_infobox,notnull"`
	Summary  string `bun:"field_summary,notnull"`
	NSFW     bool   `bun:"subject_nsfw,notnull"`
	Ban      uint8  `bun:"subject_ban,notnull"`
	Series   bool   `bun:"subject_series,notnull"`
	Locked   bool   `bun:"subject_lock,notnull"`
	Wish     uint32 `bun:"subject_wish,notnull"`
	Collect  uint32 `bun:"subject_collect,notnull"`
	Doing    uint32 `bun:"subject_doing,notnull"`
	OnHold   uint32 `bun:"subject_on_hold,notnull"`
	Dropped  uint32 `bun:"subject_dropped,notnull"`

	Fields *SubjectFieldRow `bun:"rel:has-one,join:subject_id=field_sid"`
}

type SubjectFieldRow struct {
	bun.BaseModel `bun:"table:chii_subject_fields,alias:f"`

	SubjectID uint32    `bun:"field_sid,pk"`
	Rank      uint32    `bun:"field_rank,notnull"`
	Rate1     uint32    `bun:"field_rate_1,notnull"`
	Rate2     uint32    `bun:"field_rate_2,notnull"`
	Rate3     uint32    `bun:"field_rate_3,notnull"`
	Rate4     uint32    `bun:"field_rate_4,notnull"`
	Rate5     uint32    `bun:"field_rate_5,notnull"`
	Rate6     uint32    `bun:"field_rate_6,notnull"`
	Rate7     uint32    `bun:"field_rate_7,notnull"`
	Rate8     uint32    `bun:"field_rate_8,notnull"`
	Rate9     uint32    `bun:"field_rate_9,notnull"`
	Rate10    uint32    `bun:"field_rate_10,notnull"`
	Year      int       `bun:"field_year,notnull"`
	Month     int       `bun:"field_mon,notnull"`
	Date      time.Time `bun:"field_date,nullzero"`
	Tags      string    `bun:"field_tags,notnull"`
	Redirect  uint32    `bun:"field_redirect,notnull"`
}

// Rates returns the vote counts for scores 1 to 10.
func (f SubjectFieldRow) Rates() [10]uint32 {
	return [10]uint32{f.Rate1, f.Rate2, f.Rate3, f.Rate4, f.Rate5, f.Rate6, f.Rate7, f.Rate8, f.Rate9, f.Rate10}
}

type MemberRow struct {
	bun.BaseModel `bun:"table:chii_members,alias:m"`

	ID       uint32 `bun:"uid,pk"`
	Username string `bun:"username,notnull"`
	Nickname string `bun:"nickname,notnull"`
	Avatar   string `bun:"avatar,notnull"`
	GroupID  uint8  `bun:"groupid,notnull"`
	Sign     string `bun:"sign,notnull"`
	RegDate  int64  `bun:"regdate,notnull"`
}

type CharacterRow struct {
	bun.BaseModel `bun:"table:chii_characters,alias:c"`

	ID       uint32 `bun:"crt_id,pk"`
	Name     string `bun:"crt_name,notnull"`
	Role     uint8  `bun:"crt_role,notnull"`
	Infobox  string `bun:"crt_infobox,notnull"`
	Summary  string `bun:"crt_summary,notnull"`
	Image    string `bun:"crt_img,notnull"`
	Comment  uint32 `bun:"crt_comment,notnull"`
	Collects uint32 `bun:"crt_collects,notnull"`
	Lock     bool   `bun:"crt_lock,notnull"`
	Redirect uint32 `bun:"crt_redirect,notnull"`
	NSFW     bool   `bun:"crt_nsfw,notnull"`
	Ban      bool   `bun:"crt_ban,notnull"`
}

type PersonRow struct {
	bun.BaseModel `bun:"table:chii_persons,alias:p"`

	ID          uint32 `bun:"prsn_id,pk"`
	Name        string `bun:"prsn_name,notnull"`
	Type        uint8  `bun:"prsn_type,notnull"`
	Infobox     string `bun:"prsn_infobox,notnull"`
	Producer    bool   `bun:"prsn_producer,notnull"`
	Mangaka     bool   `bun:"prsn_mangaka,notnull"`
	Artist      bool   `bun:"prsn_artist,notnull"`
	Seiyu       bool   `bun:"prsn_seiyu,notnull"`
	Writer      bool   `bun:"prsn_writer,notnull"`
	Illustrator bool   `bun:"prsn_illustrator,notnull"`
	Actor       bool   `bun:"prsn_actor,notnull"`
	Summary     string `bun:"prsn_summary,notnull"`
	Image       string `bun:"prsn_img,notnull"`
	Comment     uint32 `bun:"prsn_comment,notnull"`
	Collects    uint32 `bun:"prsn_collects,notnull"`
	Lock        bool   `bun:"prsn_lock,notnull"`
	Redirect    uint32 `bun:"prsn_redirect,notnull"`
	NSFW        bool   `bun:"prsn_nsfw,notnull"`
	Ban         bool   `bun:"prsn_ban,notnull"`
}

type GroupRow struct {
	bun.BaseModel `bun:"table:chii_groups,alias:g"`

	ID          uint32 `bun:"grp_id,pk"`
	Name        string `bun:"grp_name,notnull"`
	Title       string `bun:"grp_title,notnull"`
	Icon        string `bun:"grp_icon,notnull"`
	Description string `bun:"grp_desc,notnull"`
	CreatorID   uint32 `bun:"grp_creator,notnull"`
	Members     uint32 `bun:"grp_members,notnull"`
	NSFW        bool   `bun:"grp_nsfw,notnull"`
	BuildDate   int64  `bun:"grp_builddate,notnull"`
}

type EpisodeRow struct {
	bun.BaseModel `bun:"table:chii_episodes,alias:e"`

	ID          uint32  `bun:"ep_id,pk"`
	SubjectID   uint32  `bun:"ep_subject_id,notnull"`
	Type        uint8   `bun:"ep_type,notnull"`
	Sort        float32 `bun:"ep_sort,notnull"`
	Name        string  `bun:"ep_name,notnull"`
	NameCN      string  `bun:"ep_name_cn,notnull"`
	Duration    string  `bun:"ep_duration,notnull"`
	Airdate     string  `bun:"ep_airdate,notnull"`
	Comment     uint32  `bun:"ep_comment,notnull"`
	Description string  `bun:"ep_desc,notnull"`
	Ban         bool    `bun:"ep_ban,notnull"`
}

// TopicDisplayNormal is the display state of a topic shown to everyone.
const TopicDisplayNormal = 1

type SubjectTopicRow struct {
	bun.BaseModel `bun:"table:chii_subject_topics,alias:t"`

	ID        uint32 `bun:"sbj_tpc_id,pk"`
	SubjectID uint32 `bun:"sbj_tpc_subject_id,notnull"`
	UID       uint32 `bun:"sbj_tpc_uid,notnull"`
	Title     string `bun:"sbj_tpc_title,notnull"`
	Dateline  int64  `bun:"sbj_tpc_dateline,notnull"`
	LastPost  int64  `bun:"sbj_tpc_lastpost,notnull"`
	Replies   uint32 `bun:"sbj_tpc_replies,notnull"`
	State     uint8  `bun:"sbj_tpc_state,notnull"`
	Display   uint8  `bun:"sbj_tpc_display,notnull"`
}

type GroupTopicRow struct {
	bun.BaseModel `bun:"table:chii_group_topics,alias:t"`

	ID       uint32 `bun:"grp_tpc_id,pk"`
	GroupID  uint32 `bun:"grp_tpc_gid,notnull"`
	UID      uint32 `bun:"grp_tpc_uid,notnull"`
	Title    string `bun:"grp_tpc_title,notnull"`
	Dateline int64  `bun:"grp_tpc_dateline,notnull"`
	LastPost int64  `bun:"grp_tpc_lastpost,notnull"`
	Replies  uint32 `bun:"grp_tpc_replies,notnull"`
	State    uint8  `bun:"grp_tpc_state,notnull"`
	Display  uint8  `bun:"grp_tpc_display,notnull"`
}

type BlogEntryRow struct {
	bun.BaseModel `bun:"table:chii_blog_entry,alias:b"`

	ID       uint32 `bun:"entry_id,pk"`
	UID      uint32 `bun:"entry_uid,notnull"`
	Title    string `bun:"entry_title,notnull"`
	Icon     string `bun:"entry_icon,notnull"`
	Content  string `bun:"entry_content,notnull"`
	Tags     string `bun:"entry_tags,notnull"`
	Views    uint32 `bun:"entry_views,notnull"`
	Replies  uint32 `bun:"entry_replies,notnull"`
	Dateline int64  `bun:"entry_dateline,notnull"`
	LastPost int64  `bun:"entry_lastpost,notnull"`
	Public   bool   `bun:"entry_public,notnull"`
}

type IndexRow struct {
	bun.BaseModel `bun:"table:chii_index,alias:i"`

	ID        uint32 `bun:"idx_id,pk"`
	UID       uint32 `bun:"idx_uid,notnull"`
	Title     string `bun:"idx_title,notnull"`
	Desc      string `bun:"idx_desc,notnull"`
	Total     uint32 `bun:"idx_subject_total,notnull"`
	Collects  uint32 `bun:"idx_collects,notnull"`
	Replies   uint32 `bun:"idx_replies,notnull"`
	Dateline  int64  `bun:"idx_dateline,notnull"`
	LastTouch int64  `bun:"idx_lasttouch,notnull"`
	Ban       bool   `bun:"idx_ban,notnull"`
}

// TagCategorySubject is the tag category of subject tags.
const TagCategorySubject = 0

type TagIndexRow struct {
	bun.BaseModel `bun:"table:chii_tag_neue_index,alias:ti"`

	ID      uint32 `bun:"tag_id,pk"`
	Name    string `bun:"tag_name,notnull"`
	Cat     uint8  `bun:"tag_cat,notnull"`
	Type    uint8  `bun:"tag_type,notnull"`
	Results uint32 `bun:"tag_results,notnull"`
}

type TagListRow struct {
	bun.BaseModel `bun:"table:chii_tag_neue_list,alias:tl"`

	TagID     uint32 `bun:"tlt_tid,pk"`
	UID       uint32 `bun:"tlt_uid,notnull"`
	Cat       uint8  `bun:"tlt_cat,notnull"`
	Type      uint8  `bun:"tlt_type,notnull"`
	SubjectID uint32 `bun:"tlt_mid,pk"`
}

type InterestRow struct {
	bun.BaseModel `bun:"table:chii_subject_interests,alias:si"`

	ID            uint32 `bun:"interest_id,pk"`
	UID           uint32 `bun:"interest_uid,notnull"`
	SubjectID     uint32 `bun:"interest_subject_id,notnull"`
	SubjectType   uint8  `bun:"interest_subject_type,notnull"`
	Type          uint8  `bun:"interest_type,notnull"`
	UpdatedAt     int64  `bun:"interest_updated_at,notnull"`
	DoingDateline int64  `bun:"interest_doing_dateline,notnull"`
	Private       bool   `bun:"interest_private,notnull"`
}

type FriendRow struct {
	bun.BaseModel `bun:"table:chii_friends,alias:fr"`

	UID      uint32 `bun:"frd_uid,pk"`
	FriendID uint32 `bun:"frd_fid,pk"`
	Dateline int64  `bun:"frd_dateline,notnull"`
}
