package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"feditimes/internal/domain"
	"feditimes/internal/offline"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 2 * time.Minute

type Fetcher interface {
	Fetch(ctx context.Context) (*domain.Collection, error)
}

type Warmer interface {
	Warm(ctx context.Context, posts []domain.Post) int
}

// Scheduler periodically refreshes the offline copy of the collection and
// warms post excerpts for it.
type Scheduler struct {
	ctx     context.Context
	spec    string
	cron    *cron.Cron
	fetcher Fetcher
	cache   *offline.Cache
	warmer  Warmer
	wg      sync.WaitGroup
	log     *slog.Logger
}

func New(
	ctx context.Context,
	spec string,
	loc *time.Location,
	fetcher Fetcher,
	cache *offline.Cache,
	warmer Warmer,
	log *slog.Logger,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		ctx:     ctx,
		spec:    spec,
		cron:    c,
		fetcher: fetcher,
		cache:   cache,
		warmer:  warmer,
		log:     log,
	}
}

// Start registers the refresh job and runs it once right away.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return err
	}

	s.cron.Start()

	s.wg.Go(s.refresh)

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(s.ctx, refreshTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	start := time.Now()

	collection, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to refresh offline copy",
			"error", err,
			"spec", s.spec,
			"previousFetchedAt", s.cache.FetchedAt())
		return
	}

	s.cache.Store(collection, start)

	summarized := 0
	if s.warmer != nil {
		summarized = s.warmer.Warm(ctx, collection.Posts)
	}

	s.log.InfoContext(ctx, "Offline copy is refreshed",
		"postCount", len(collection.Posts),
		"summarized", summarized,
		"durationSeconds", time.Since(start).Seconds())
}
