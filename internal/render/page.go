package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"feditimes/internal/domain"
)

// ErrStaleLoad is returned by Load when a newer load started before this one
// finished. The stale result is discarded.
var ErrStaleLoad = errors.New("load superseded by a newer load")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateDisplayed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDisplayed:
		return "displayed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Source supplies a whole collection per call.
type Source interface {
	Fetch(ctx context.Context) (*domain.Collection, error)
}

// Page owns the state of one page view: the loaded collection, the selected
// sort key and the load state.
type Page struct {
	mu          sync.Mutex
	source      Source
	renderer    *Renderer
	state       State
	posts       []domain.Post
	lastUpdated time.Time
	sortKey     domain.SortKey
	generation  uint64
	err         error
	offline     bool
	log         *slog.Logger
}

func NewPage(
	source Source,
	renderer *Renderer,
	sortKey domain.SortKey,
	log *slog.Logger,
) *Page {
	return &Page{
		source:   source,
		renderer: renderer,
		state:    StateIdle,
		sortKey:  domain.ParseSortKey(string(sortKey)),
		log:      log,
	}
}

// MarkOffline flags the page as showing a cached copy.
func (p *Page) MarkOffline() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.offline = true
}

// Load fetches the collection and replaces the held posts wholesale. On
// failure the page enters the error state and holds no posts.
func (p *Page) Load(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation
	p.state = StateLoading
	p.err = nil
	p.posts = nil
	p.lastUpdated = time.Time{}
	p.mu.Unlock()

	collection, err := p.source.Fetch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		p.log.DebugContext(ctx, "Discarding stale load",
			"generation", generation,
			"currentGeneration", p.generation)

		return ErrStaleLoad
	}

	if err == nil && collection == nil {
		err = errors.New("source returned no collection")
	}

	if err != nil {
		p.state = StateError
		p.err = err

		p.log.ErrorContext(ctx, "Failed to load posts",
			"error", err,
			"generation", generation)

		return err
	}

	p.posts = slices.Clone(collection.Posts)
	p.lastUpdated = collection.LastUpdated
	p.state = StateDisplayed

	return nil
}

// SelectSort changes the sort key. Display order is always re-derived from
// the loaded collection.
func (p *Page) SelectSort(key domain.SortKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sortKey = domain.ParseSortKey(string(key))
}

func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *Page) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Posts returns a copy of the loaded posts in load order.
func (p *Page) Posts() []domain.Post {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateDisplayed {
		return nil
	}

	return slices.Clone(p.posts)
}

// Cards returns the display fragments in the current sort order.
func (p *Page) Cards() []Card {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateDisplayed {
		return nil
	}

	return p.renderer.Cards(SortPosts(p.posts, p.sortKey))
}

func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := View{
		State:       p.state,
		SortKey:     p.sortKey,
		SortOptions: sortOptions(p.sortKey),
		Offline:     p.offline,
	}

	switch p.state {
	case StateError:
		if p.err != nil {
			view.Error = p.err.Error()
		}
	case StateDisplayed:
		view.Status, view.LastUpdated = p.renderer.StatusLine(len(p.posts), p.lastUpdated)
		sorted := SortPosts(p.posts, p.sortKey)
		view.Cards = p.renderer.Cards(sorted)
		view.Description = view.Status
		if len(sorted) > 0 {
			view.Description = p.renderer.Describe(sorted[0])
		}
	case StateIdle, StateLoading:
	}

	return view
}

func (p *Page) Render(w io.Writer) error {
	return p.renderer.WritePage(w, p.View())
}
