package repositorycache

import (
	"github.com/uptrace/bun"

	"github.com/trim21/bangumi-server-private/cache"
	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/store"
	"github.com/trim21/bangumi-server-private/visibility"
)

// Cache key namespaces of the entity kinds.
const (
	KindUser          = "user"
	KindSlimSubject   = "subject:slim"
	KindSubject       = "subject"
	KindSlimCharacter = "character:slim"
	KindCharacter     = "character"
	KindSlimPerson    = "person:slim"
	KindPerson        = "person"
	KindGroup         = "group"
	KindEpisode       = "episode"
	KindSubjectTopic  = "topic:subject"
	KindGroupTopic    = "topic:group"
	KindBlog          = "blog"
	KindIndex         = "index"
)

// Fetchers holds the read-through fetcher of every entity kind.
type Fetchers struct {
	Users          *Fetcher[store.MemberRow, model.SlimUser]
	SlimSubjects   *Fetcher[store.SubjectRow, model.SlimSubject]
	Subjects       *Fetcher[store.SubjectRow, model.Subject]
	SlimCharacters *Fetcher[store.CharacterRow, model.SlimCharacter]
	Characters     *Fetcher[store.CharacterRow, model.Character]
	SlimPersons    *Fetcher[store.PersonRow, model.SlimPerson]
	Persons        *Fetcher[store.PersonRow, model.Person]
	Groups         *Fetcher[store.GroupRow, model.Group]
	Episodes       *Fetcher[store.EpisodeRow, model.Episode]
	SubjectTopics  *Fetcher[store.SubjectTopicRow, model.Topic]
	GroupTopics    *Fetcher[store.GroupTopicRow, model.Topic]
	Blogs          *Fetcher[store.BlogEntryRow, model.BlogEntry]
	Indexes        *Fetcher[store.IndexRow, model.Index]
}

// NewFetchers wires a fetcher per entity kind over db.
func NewFetchers(db bun.IDB, c cache.Cache, keys cache.KeySpace, opts ...Option) *Fetchers {
	subjects := store.NewSubjectTable(db)
	characters := store.NewCharacterTable(db)
	persons := store.NewPersonTable(db)

	return &Fetchers{
		Users: NewFetcher(Definition[store.MemberRow, model.SlimUser]{
			Kind:    KindUser,
			TTL:     cache.TTLEntity,
			Lookup:  store.NewMemberTable(db),
			Convert: convertUser,
			ID:      func(u model.SlimUser) uint32 { return u.ID },
		}, c, keys, opts...),
		SlimSubjects: NewFetcher(Definition[store.SubjectRow, model.SlimSubject]{
			Kind:    KindSlimSubject,
			TTL:     cache.TTLEntity,
			Lookup:  subjects,
			Convert: convertSlimSubject,
			ID:      func(s model.SlimSubject) uint32 { return s.ID },
			Visible: visibility.NSFW[model.SlimSubject],
		}, c, keys, opts...),
		Subjects: NewFetcher(Definition[store.SubjectRow, model.Subject]{
			Kind:    KindSubject,
			TTL:     cache.TTLEntity,
			Lookup:  subjects,
			Convert: convertSubject,
			ID:      func(s model.Subject) uint32 { return s.ID },
			Visible: visibility.NSFW[model.Subject],
		}, c, keys, opts...),
		SlimCharacters: NewFetcher(Definition[store.CharacterRow, model.SlimCharacter]{
			Kind:    KindSlimCharacter,
			TTL:     cache.TTLEntity,
			Lookup:  characters,
			Convert: convertSlimCharacter,
			ID:      func(ch model.SlimCharacter) uint32 { return ch.ID },
			Visible: visibility.NSFW[model.SlimCharacter],
		}, c, keys, opts...),
		Characters: NewFetcher(Definition[store.CharacterRow, model.Character]{
			Kind:    KindCharacter,
			TTL:     cache.TTLEntity,
			Lookup:  characters,
			Convert: convertCharacter,
			ID:      func(ch model.Character) uint32 { return ch.ID },
			Visible: visibility.NSFW[model.Character],
		}, c, keys, opts...),
		SlimPersons: NewFetcher(Definition[store.PersonRow, model.SlimPerson]{
			Kind:    KindSlimPerson,
			TTL:     cache.TTLEntity,
			Lookup:  persons,
			Convert: convertSlimPerson,
			ID:      func(p model.SlimPerson) uint32 { return p.ID },
			Visible: visibility.NSFW[model.SlimPerson],
		}, c, keys, opts...),
		Persons: NewFetcher(Definition[store.PersonRow, model.Person]{
			Kind:    KindPerson,
			TTL:     cache.TTLEntity,
			Lookup:  persons,
			Convert: convertPerson,
			ID:      func(p model.Person) uint32 { return p.ID },
			Visible: visibility.NSFW[model.Person],
		}, c, keys, opts...),
		Groups: NewFetcher(Definition[store.GroupRow, model.Group]{
			Kind:    KindGroup,
			TTL:     cache.TTLEntity,
			Lookup:  store.NewGroupTable(db),
			Convert: convertGroup,
			ID:      func(g model.Group) uint32 { return g.ID },
			Visible: visibility.NSFW[model.Group],
		}, c, keys, opts...),
		Episodes: NewFetcher(Definition[store.EpisodeRow, model.Episode]{
			Kind:    KindEpisode,
			TTL:     cache.TTLEntity,
			Lookup:  store.NewEpisodeTable(db),
			Convert: convertEpisode,
			ID:      func(e model.Episode) uint32 { return e.ID },
		}, c, keys, opts...),
		SubjectTopics: NewFetcher(Definition[store.SubjectTopicRow, model.Topic]{
			Kind:    KindSubjectTopic,
			TTL:     cache.TTLTopic,
			Lookup:  store.NewSubjectTopicTable(db),
			Convert: convertSubjectTopic,
			ID:      topicID,
		}, c, keys, opts...),
		GroupTopics: NewFetcher(Definition[store.GroupTopicRow, model.Topic]{
			Kind:    KindGroupTopic,
			TTL:     cache.TTLTopic,
			Lookup:  store.NewGroupTopicTable(db),
			Convert: convertGroupTopic,
			ID:      topicID,
		}, c, keys, opts...),
		Blogs: NewFetcher(Definition[store.BlogEntryRow, model.BlogEntry]{
			Kind:    KindBlog,
			TTL:     cache.TTLEntity,
			Lookup:  store.NewBlogTable(db),
			Convert: convertBlogEntry,
			ID:      func(b model.BlogEntry) uint32 { return b.ID },
			Visible: visibility.Privacy[model.BlogEntry](store.NewFriends(db)),
		}, c, keys, opts...),
		Indexes: NewFetcher(Definition[store.IndexRow, model.Index]{
			Kind:    KindIndex,
			TTL:     cache.TTLEntity,
			Lookup:  store.NewIndexTable(db),
			Convert: convertIndex,
			ID:      func(i model.Index) uint32 { return i.ID },
		}, c, keys, opts...),
	}
}

func topicID(t model.Topic) uint32 { return t.ID }
