package domain

import "time"

// Post is one curated item as supplied by the data source.
//
// ContentHTML is inserted into pages verbatim. The producer of the collection
// must have sanitized it; nothing downstream escapes or filters it.
type Post struct {
	Author      string
	AuthorURL   string
	AvatarURL   string
	ContentHTML string
	URL         string
	Timestamp   time.Time
	Boosts      int64
	Comments    int64
	Hashtag     string
	ImageURL    string
}

type Collection struct {
	Posts       []Post
	LastUpdated time.Time
}

type SortKey string

const (
	SortByBoosts    SortKey = "boosts"
	SortByComments  SortKey = "comments"
	SortByTimestamp SortKey = "timestamp"

	DefaultSortKey = SortByBoosts
)

// ParseSortKey maps raw input to a known key, falling back to DefaultSortKey.
func ParseSortKey(raw string) SortKey {
	switch key := SortKey(raw); key {
	case SortByBoosts, SortByComments, SortByTimestamp:
		return key
	default:
		return DefaultSortKey
	}
}
