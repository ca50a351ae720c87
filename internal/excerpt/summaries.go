package excerpt

import (
	"container/list"
	"sync"
	"time"
)

const summariesMaxPosts = 1024

// summaries holds at most one summary per post, keyed by canonical post URL.
// Each summary remembers the hash of the text it describes, so a summary of
// an edited post no longer matches and is overwritten by the next store.
type summaries struct {
	mu      sync.Mutex
	byURL   map[string]*list.Element
	recency *list.List // front is most recently used
	limit   int
	ttl     time.Duration
}

type summary struct {
	postURL  string
	textHash string
	text     string
	storedAt time.Time
}

func newSummaries(limit int, ttl time.Duration) *summaries {
	return &summaries{
		byURL:   make(map[string]*list.Element),
		recency: list.New(),
		limit:   max(limit, 1),
		ttl:     ttl,
	}
}

// lookup returns the summary of postURL if it was made for hash and has
// not outlived the TTL.
func (s *summaries) lookup(postURL string, hash string, now time.Time) (string, bool) {
	if postURL == "" || hash == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.byURL[postURL]
	if !ok {
		return "", false
	}

	sum := elem.Value.(*summary) //nolint:forcetypeassert // Only *summary is stored.

	if now.Sub(sum.storedAt) >= s.ttl {
		s.drop(elem)

		return "", false
	}

	if sum.textHash != hash {
		return "", false
	}

	s.recency.MoveToFront(elem)

	return sum.text, true
}

// store replaces whatever is held for postURL.
func (s *summaries) store(postURL string, hash string, text string, now time.Time) {
	if postURL == "" || hash == "" || text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.byURL[postURL]; ok {
		sum := elem.Value.(*summary) //nolint:forcetypeassert // Only *summary is stored.
		sum.textHash = hash
		sum.text = text
		sum.storedAt = now
		s.recency.MoveToFront(elem)

		return
	}

	s.byURL[postURL] = s.recency.PushFront(&summary{
		postURL:  postURL,
		textHash: hash,
		text:     text,
		storedAt: now,
	})

	for s.recency.Len() > s.limit {
		s.drop(s.recency.Back())
	}
}

func (s *summaries) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recency.Len()
}

func (s *summaries) drop(elem *list.Element) {
	sum := s.recency.Remove(elem).(*summary) //nolint:forcetypeassert // Only *summary is stored.
	delete(s.byURL, sum.postURL)
}
