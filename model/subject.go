// Package model holds the response-shaped records the service caches and
// returns. Records are what the cache stores, never raw store rows.
package model

import (
	"math"
	"strconv"
)

// SubjectType is the category of a subject.
type SubjectType uint8

const (
	SubjectTypeBook  SubjectType = 1
	SubjectTypeAnime SubjectType = 2
	SubjectTypeMusic SubjectType = 3
	SubjectTypeGame  SubjectType = 4
	SubjectTypeReal  SubjectType = 6
)

// SubjectTypes lists every known subject type.
var SubjectTypes = []SubjectType{
	SubjectTypeBook,
	SubjectTypeAnime,
	SubjectTypeMusic,
	SubjectTypeGame,
	SubjectTypeReal,
}

// Valid reports whether t is a known subject type.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectTypeBook, SubjectTypeAnime, SubjectTypeMusic, SubjectTypeGame, SubjectTypeReal:
		return true
	}
	return false
}

func (t SubjectType) String() string {
	switch t {
	case SubjectTypeBook:
		return "book"
	case SubjectTypeAnime:
		return "anime"
	case SubjectTypeMusic:
		return "music"
	case SubjectTypeGame:
		return "game"
	case SubjectTypeReal:
		return "real"
	}
	return strconv.Itoa(int(t))
}

// Rating summarizes the votes of a subject.
type Rating struct {
	Rank  uint32     `json:"rank"`
	Total uint32     `json:"total"`
	Count [10]uint32 `json:"count"`
	Score float64    `json:"score"`
}

// NewRating builds a rating from per-score vote counts, count[0] being the
// votes for score 1. The score is the mean rounded to one decimal.
func NewRating(rank uint32, count [10]uint32) Rating {
	r := Rating{Rank: rank, Count: count}

	var weighted uint64
	for i, c := range count {
		r.Total += c
		weighted += uint64(c) * uint64(i+1)
	}
	if r.Total > 0 {
		r.Score = math.Round(float64(weighted)/float64(r.Total)*10) / 10
	}
	return r
}

// SlimSubject is the projection of a subject used in lists and references.
type SlimSubject struct {
	ID     uint32      `json:"id"`
	Type   SubjectType `json:"type"`
	Name   string      `json:"name"`
	NameCN string      `json:"name_cn"`
	Image  string      `json:"image"`
	Date   string      `json:"date,omitempty"`
	Rating Rating      `json:"rating"`
	NSFW   bool        `json:"nsfw"`
	Locked bool        `json:"locked"`
}

func (s SlimSubject) IsNSFW() bool { return s.NSFW }

// SubjectCollection counts users per collection state.
type SubjectCollection struct {
	Wish    uint32 `json:"wish"`
	Collect uint32 `json:"collect"`
	Doing   uint32 `json:"doing"`
	OnHold  uint32 `json:"on_hold"`
	Dropped uint32 `json:"dropped"`
}

// Subject is the full subject record.
type Subject struct {
	SlimSubject
	Platform   uint16            `json:"platform"`
	Summary    string            `json:"summary"`
	Infobox    string            `json:"infobox"`
	Series     bool              `json:"series"`
	Redirect   uint32            `json:"redirect"`
	Tags       []string          `json:"tags"`
	Collection SubjectCollection `json:"collection"`
}
