package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"
	"time"

	"feditimes/internal/domain"
)

// Placeholder shown when an avatar fails to load.
const avatarPlaceholder = "data:image/svg+xml;utf8," +
	"<svg xmlns='http://www.w3.org/2000/svg' width='48' height='48' viewBox='0 0 48 48'>" +
	"<circle cx='24' cy='24' r='24' fill='%23F3F4F6'/>" +
	"<circle cx='24' cy='19' r='7' fill='%239CA3AF'/>" +
	"<path d='M10 40c0-8 6-12 14-12s14 4 14 12z' fill='%239CA3AF'/></svg>"

//go:embed templates/*.html
var templatesFS embed.FS

// Excerpter provides a short plain-text description of a post.
type Excerpter interface {
	Excerpt(post domain.Post) string
}

type Renderer struct {
	tmpl      *template.Template
	loc       *time.Location
	now       func() time.Time
	excerpter Excerpter
	log       *slog.Logger
}

type Option func(*Renderer)

// WithClock replaces time.Now as the reference for relative ages.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithExcerpter sets the source of image alt texts and page descriptions.
func WithExcerpter(e Excerpter) Option {
	return func(r *Renderer) {
		r.excerpter = e
	}
}

func NewRenderer(loc *time.Location, log *slog.Logger, opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("page.html").
		Funcs(template.FuncMap{
			// content_html is sanitized by the producer of the collection.
			"trusted": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // Trusted upstream HTML.
		}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}

	r := &Renderer{
		tmpl: tmpl,
		loc:  loc,
		now:  time.Now,
		log:  log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Card is the display fragment of one post with all derived fields.
type Card struct {
	Author      string    `json:"author"`
	AuthorURL   string    `json:"author_url"`
	AvatarURL   string    `json:"avatar_url"`
	Handle      string    `json:"handle"`
	URL         string    `json:"url"`
	Timestamp   time.Time `json:"timestamp"`
	Age         string    `json:"age"`
	ExactDate   string    `json:"exact_date"`
	Hashtag     string    `json:"hashtag,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ImageAlt    string    `json:"image_alt,omitempty"`
	ContentHTML string    `json:"content_html"`
	Boosts      int64     `json:"boosts"`
	Comments    int64     `json:"comments"`
}

type SortOption struct {
	Key      domain.SortKey
	Label    string
	Selected bool
}

// View is everything the page template needs for one state of a Page.
type View struct {
	State       State
	Error       string
	Status      string
	LastUpdated string
	Description string
	SortKey     domain.SortKey
	SortOptions []SortOption
	Cards       []Card
	Offline     bool
	Placeholder string
}

func (r *Renderer) Card(post domain.Post, now time.Time) Card {
	card := Card{
		Author:      post.Author,
		AuthorURL:   post.AuthorURL,
		AvatarURL:   post.AvatarURL,
		Handle:      DisplayHandle(post.AuthorURL, post.Author),
		URL:         post.URL,
		Timestamp:   post.Timestamp,
		Age:         RelativeAge(post.Timestamp, now),
		ExactDate:   ExactDate(post.Timestamp, r.loc),
		Hashtag:     post.Hashtag,
		ImageURL:    post.ImageURL,
		ContentHTML: post.ContentHTML,
		Boosts:      post.Boosts,
		Comments:    post.Comments,
	}

	if post.ImageURL != "" {
		card.ImageAlt = r.Describe(post)
	}

	return card
}

// Cards derives one Card per post, keeping the order of posts.
func (r *Renderer) Cards(posts []domain.Post) []Card {
	now := r.now()

	cards := make([]Card, 0, len(posts))
	for _, post := range posts {
		cards = append(cards, r.Card(post, now))
	}

	return cards
}

// StatusLine returns the loaded-posts text and, if known, the last update text.
func (r *Renderer) StatusLine(postCount int, lastUpdated time.Time) (string, string) {
	status := fmt.Sprintf("%d Posts geladen", postCount)
	if lastUpdated.IsZero() {
		return status, ""
	}

	return status, "Zuletzt aktualisiert: " + ExactDate(lastUpdated, r.loc)
}

func (r *Renderer) WritePage(w io.Writer, view View) error {
	view.Placeholder = avatarPlaceholder

	if err := r.tmpl.ExecuteTemplate(w, "page.html", view); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	return nil
}

// Describe returns the short plain-text description of post used as image
// alt text and, for the first card, as the page description.
func (r *Renderer) Describe(post domain.Post) string {
	return r.excerpt(post)
}

func (r *Renderer) excerpt(post domain.Post) string {
	if r.excerpter == nil {
		return post.Author
	}

	if text := strings.TrimSpace(r.excerpter.Excerpt(post)); text != "" {
		return text
	}

	return post.Author
}

func sortOptions(selected domain.SortKey) []SortOption {
	options := []SortOption{
		{Key: domain.SortByBoosts, Label: "Meiste Boosts"},
		{Key: domain.SortByComments, Label: "Meiste Kommentare"},
		{Key: domain.SortByTimestamp, Label: "Neueste zuerst"},
	}

	for i := range options {
		options[i].Selected = options[i].Key == selected
	}

	return options
}
