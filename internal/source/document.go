package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"feditimes/internal/domain"
)

// Producers write either zoned RFC 3339 timestamps or naive local ones.
const naiveTimestampLayout = "2006-01-02T15:04:05"

type document struct {
	Posts       []documentPost `json:"posts"`
	LastUpdated string         `json:"last_updated"`
}

type documentPost struct {
	Author      string `json:"author"`
	AuthorURL   string `json:"author_url"`
	AvatarURL   string `json:"avatar_url"`
	ContentHTML string `json:"content_html"`
	URL         string `json:"url"`
	Timestamp   string `json:"timestamp"`
	Boosts      int64  `json:"boosts"`
	Comments    int64  `json:"comments"`
	Hashtag     string `json:"hashtag"`
	ImageURL    string `json:"image_url"`
}

// Decode reads a collection document. Naive timestamps are read in loc.
func Decode(r io.Reader, loc *time.Location) (*domain.Collection, error) {
	if loc == nil {
		loc = time.UTC
	}

	dec := json.NewDecoder(r)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode JSON: trailing data")
	}

	collection := &domain.Collection{
		Posts: make([]domain.Post, 0, len(doc.Posts)),
	}

	if lastUpdated := strings.TrimSpace(doc.LastUpdated); lastUpdated != "" {
		t, err := ParseTimestamp(lastUpdated, loc)
		if err != nil {
			return nil, fmt.Errorf("parse last_updated: %w", err)
		}
		collection.LastUpdated = t
	}

	var errs []error
	for i, raw := range doc.Posts {
		post, err := raw.toPost(loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("post %d: %w", i, err))
			continue
		}

		collection.Posts = append(collection.Posts, post)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return collection, nil
}

func (p documentPost) toPost(loc *time.Location) (domain.Post, error) {
	postURL := strings.TrimSpace(p.URL)
	if postURL == "" {
		return domain.Post{}, errors.New("url is missing")
	}

	if p.Boosts < 0 || p.Comments < 0 {
		return domain.Post{}, fmt.Errorf(
			"negative counts (boosts = %d, comments = %d)",
			p.Boosts,
			p.Comments,
		)
	}

	timestamp, err := ParseTimestamp(p.Timestamp, loc)
	if err != nil {
		return domain.Post{}, fmt.Errorf("parse timestamp: %w", err)
	}

	return domain.Post{
		Author:      strings.TrimSpace(p.Author),
		AuthorURL:   strings.TrimSpace(p.AuthorURL),
		AvatarURL:   strings.TrimSpace(p.AvatarURL),
		ContentHTML: p.ContentHTML,
		URL:         postURL,
		Timestamp:   timestamp,
		Boosts:      p.Boosts,
		Comments:    p.Comments,
		Hashtag:     strings.TrimSpace(p.Hashtag),
		ImageURL:    strings.TrimSpace(p.ImageURL),
	}, nil
}

// ParseTimestamp accepts RFC 3339 with optional fractional seconds, or the same
// without a zone, which is then read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(naiveTimestampLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported timestamp %q: %w", raw, err)
	}

	return t, nil
}
