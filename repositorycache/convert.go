package repositorycache

import (
	"strings"

	"github.com/trim21/bangumi-server-private/model"
	"github.com/trim21/bangumi-server-private/store"
)

const dateLayout = "2006-01-02"

func convertSlimSubject(row store.SubjectRow) model.SlimSubject {
	s := model.SlimSubject{
		ID:     row.ID,
		Type:   model.SubjectType(row.TypeID),
		Name:   row.Name,
		NameCN: row.NameCN,
		Image:  row.Image,
		NSFW:   row.NSFW,
		Locked: row.Locked,
	}
	if f := row.Fields; f != nil {
		s.Rating = model.NewRating(f.Rank, f.Rates())
		if !f.Date.IsZero() {
			s.Date = f.Date.Format(dateLayout)
		}
	}
	return s
}

func convertSubject(row store.SubjectRow) model.Subject {
	s := model.Subject{
		SlimSubject: convertSlimSubject(row),
		Platform:    row.Platform,
		Summary:     row.Summary,
		Infobox:     row.Infobox,
		Series:      row.Series,
		Tags:        []string{},
		Collection: model.SubjectCollection{
			Wish:    row.Wish,
			Collect: row.Collect,
			Doing:   row.Doing,
			OnHold:  row.OnHold,
			Dropped: row.Dropped,
		},
	}
	if f := row.Fields; f != nil {
		s.Redirect = f.Redirect
		s.Tags = strings.Fields(f.Tags)
	}
	return s
}

func convertUser(row store.MemberRow) model.SlimUser {
	return model.SlimUser{
		ID:       row.ID,
		Username: row.Username,
		Nickname: row.Nickname,
		Avatar:   row.Avatar,
		Group:    row.GroupID,
		Sign:     row.Sign,
		JoinedAt: row.RegDate,
	}
}

func convertSlimCharacter(row store.CharacterRow) model.SlimCharacter {
	return model.SlimCharacter{
		ID:      row.ID,
		Name:    row.Name,
		Role:    row.Role,
		Image:   row.Image,
		Comment: row.Comment,
		NSFW:    row.NSFW,
		Lock:    row.Lock,
	}
}

func convertCharacter(row store.CharacterRow) model.Character {
	return model.Character{
		SlimCharacter: convertSlimCharacter(row),
		Summary:       row.Summary,
		Infobox:       row.Infobox,
		Collects:      row.Collects,
		Redirect:      row.Redirect,
	}
}

func careers(row store.PersonRow) []string {
	out := []string{}
	for _, c := range []struct {
		set  bool
		name string
	}{
		{row.Producer, "producer"},
		{row.Mangaka, "mangaka"},
		{row.Artist, "artist"},
		{row.Seiyu, "seiyu"},
		{row.Writer, "writer"},
		{row.Illustrator, "illustrator"},
		{row.Actor, "actor"},
	} {
		if c.set {
			out = append(out, c.name)
		}
	}
	return out
}

func convertSlimPerson(row store.PersonRow) model.SlimPerson {
	return model.SlimPerson{
		ID:      row.ID,
		Name:    row.Name,
		Type:    row.Type,
		Career:  careers(row),
		Image:   row.Image,
		Comment: row.Comment,
		NSFW:    row.NSFW,
		Lock:    row.Lock,
	}
}

func convertPerson(row store.PersonRow) model.Person {
	return model.Person{
		SlimPerson: convertSlimPerson(row),
		Summary:    row.Summary,
		Infobox:    row.Infobox,
		Collects:   row.Collects,
		Redirect:   row.Redirect,
	}
}

func convertGroup(row store.GroupRow) model.Group {
	return model.Group{
		ID:          row.ID,
		Name:        row.Name,
		Title:       row.Title,
		Icon:        row.Icon,
		Description: row.Description,
		CreatorID:   row.CreatorID,
		Members:     row.Members,
		NSFW:        row.NSFW,
		CreatedAt:   row.BuildDate,
	}
}

func convertEpisode(row store.EpisodeRow) model.Episode {
	return model.Episode{
		ID:          row.ID,
		SubjectID:   row.SubjectID,
		Type:        row.Type,
		Sort:        row.Sort,
		Name:        row.Name,
		NameCN:      row.NameCN,
		Duration:    row.Duration,
		Airdate:     row.Airdate,
		Comment:     row.Comment,
		Description: row.Description,
	}
}

func convertSubjectTopic(row store.SubjectTopicRow) model.Topic {
	return model.Topic{
		ID:        row.ID,
		ParentID:  row.SubjectID,
		CreatorID: row.UID,
		Title:     row.Title,
		Replies:   row.Replies,
		State:     row.State,
		CreatedAt: row.Dateline,
		UpdatedAt: row.LastPost,
	}
}

func convertGroupTopic(row store.GroupTopicRow) model.Topic {
	return model.Topic{
		ID:        row.ID,
		ParentID:  row.GroupID,
		CreatorID: row.UID,
		Title:     row.Title,
		Replies:   row.Replies,
		State:     row.State,
		CreatedAt: row.Dateline,
		UpdatedAt: row.LastPost,
	}
}

func convertBlogEntry(row store.BlogEntryRow) model.BlogEntry {
	return model.BlogEntry{
		ID:        row.ID,
		UID:       row.UID,
		Title:     row.Title,
		Icon:      row.Icon,
		Content:   row.Content,
		Tags:      strings.Fields(row.Tags),
		Views:     row.Views,
		Replies:   row.Replies,
		Public:    row.Public,
		CreatedAt: row.Dateline,
		UpdatedAt: row.LastPost,
	}
}

func convertIndex(row store.IndexRow) model.Index {
	return model.Index{
		ID:          row.ID,
		UID:         row.UID,
		Title:       row.Title,
		Description: row.Desc,
		Total:       row.Total,
		Collects:    row.Collects,
		Replies:     row.Replies,
		CreatedAt:   row.Dateline,
		UpdatedAt:   row.LastTouch,
	}
}
