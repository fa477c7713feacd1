package model

// SlimUser is the public profile of a user.
type SlimUser struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Group    uint8  `json:"group"`
	Sign     string `json:"sign"`
	JoinedAt int64  `json:"joined_at"`
}

type SlimCharacter struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Role    uint8  `json:"role"`
	Image   string `json:"image"`
	Comment uint32 `json:"comment"`
	NSFW    bool   `json:"nsfw"`
	Lock    bool   `json:"lock"`
}

func (c SlimCharacter) IsNSFW() bool { return c.NSFW }

type Character struct {
	SlimCharacter
	Summary  string `json:"summary"`
	Infobox  string `json:"infobox"`
	Collects uint32 `json:"collects"`
	Redirect uint32 `json:"redirect"`
}

type SlimPerson struct {
	ID      uint32   `json:"id"`
	Name    string   `json:"name"`
	Type    uint8    `json:"type"`
	Career  []string `json:"career"`
	Image   string   `json:"image"`
	Comment uint32   `json:"comment"`
	NSFW    bool     `json:"nsfw"`
	Lock    bool     `json:"lock"`
}

func (p SlimPerson) IsNSFW() bool { return p.NSFW }

type Person struct {
	SlimPerson
	Summary  string `json:"summary"`
	Infobox  string `json:"infobox"`
	Collects uint32 `json:"collects"`
	Redirect uint32 `json:"redirect"`
}

type Group struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	CreatorID   uint32 `json:"creator_id"`
	Members     uint32 `json:"members"`
	NSFW        bool   `json:"nsfw"`
	CreatedAt   int64  `json:"created_at"`
}

func (g Group) IsNSFW() bool { return g.NSFW }

type Episode struct {
	ID          uint32  `json:"id"`
	SubjectID   uint32  `json:"subject_id"`
	Type        uint8   `json:"type"`
	Sort        float32 `json:"sort"`
	Name        string  `json:"name"`
	NameCN      string  `json:"name_cn"`
	Duration    string  `json:"duration"`
	Airdate     string  `json:"airdate"`
	Comment     uint32  `json:"comment"`
	Description string  `json:"desc"`
}

// Topic is a discussion thread attached to a subject or a group.
type Topic struct {
	ID        uint32 `json:"id"`
	ParentID  uint32 `json:"parent_id"`
	CreatorID uint32 `json:"creator_id"`
	Title     string `json:"title"`
	Replies   uint32 `json:"replies"`
	State     uint8  `json:"state"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// BlogEntry is a user blog post. Non-public entries are only visible to
// their author and the author's friends.
type BlogEntry struct {
	ID        uint32   `json:"id"`
	UID       uint32   `json:"uid"`
	Title     string   `json:"title"`
	Icon      string   `json:"icon"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Views     uint32   `json:"views"`
	Replies   uint32   `json:"replies"`
	Public    bool     `json:"public"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

func (b BlogEntry) OwnerID() uint32 { return b.UID }
func (b BlogEntry) IsPublic() bool  { return b.Public }

// Index is a user curated list of subjects.
type Index struct {
	ID          uint32 `json:"id"`
	UID         uint32 `json:"uid"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	Total       uint32 `json:"total"`
	Collects    uint32 `json:"collects"`
	Replies     uint32 `json:"replies"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// TrendingItem is one entry of a ranked trending list.
type TrendingItem struct {
	ID    uint32 `json:"id"`
	Total int    `json:"total"`
}

// Paged is one page of a listing together with the full match count.
type Paged[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// EmptyPage is the page of a listing with no matches.
func EmptyPage[T any]() Paged[T] {
	return Paged[T]{Data: []T{}, Total: 0}
}
