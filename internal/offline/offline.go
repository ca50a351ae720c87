// Package offline keeps the last successfully fetched collection in memory so
// that it can be shown while the source is unreachable.
package offline

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"feditimes/internal/domain"
)

var ErrNoCopy = errors.New("no offline copy available")

type Cache struct {
	mu         sync.RWMutex
	collection *domain.Collection
	fetchedAt  time.Time
}

func NewCache() *Cache {
	return &Cache{}
}

// Store replaces the held copy wholesale.
func (c *Cache) Store(collection *domain.Collection, fetchedAt time.Time) {
	if collection == nil {
		return
	}

	stored := &domain.Collection{
		Posts:       slices.Clone(collection.Posts),
		LastUpdated: collection.LastUpdated,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.collection = stored
	c.fetchedAt = fetchedAt
}

// Fetch returns a copy of the held collection, or ErrNoCopy.
func (c *Cache) Fetch(ctx context.Context) (*domain.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.collection == nil {
		return nil, ErrNoCopy
	}

	return &domain.Collection{
		Posts:       slices.Clone(c.collection.Posts),
		LastUpdated: c.collection.LastUpdated,
	}, nil
}

func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.fetchedAt
}
