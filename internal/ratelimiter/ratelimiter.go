package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const queueSize = 1000

var ErrStopped = errors.New("rate limiter is stopped")

type request struct {
	ctx      context.Context
	key      string
	fn       func(context.Context) error
	response chan error
}

// RateLimiter runs queued requests one at a time, so at most one request is
// outstanding. Consecutive requests with the same key are spaced by at least
// interval.
type RateLimiter struct {
	interval time.Duration
	queue    chan request
	lastSent map[string]time.Time
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	log      *slog.Logger
}

func New(interval time.Duration, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		interval: max(interval, 0),
		queue:    make(chan request, queueSize),
		lastSent: make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		log:      log,
	}

	go rl.processQueue()

	return rl
}

// Do enqueues fn under key and blocks until it has run, was rejected or ctx
// ended while it was still waiting.
func (rl *RateLimiter) Do(
	ctx context.Context,
	key string,
	fn func(context.Context) error,
) error {
	req := request{
		ctx:      ctx,
		key:      key,
		fn:       fn,
		response: make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return ErrStopped
	}

	// response is buffered, so a request abandoned here never blocks the worker.
	select {
	case err := <-req.response:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.done:
		select {
		case err := <-req.response:
			return err
		default:
			return ErrStopped
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- ErrStopped
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := req.ctx.Err(); err != nil {
		req.response <- err

		return
	}

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[req.key]
	rl.mu.Unlock()

	if exists {
		delay := getDelay(rl.interval, lastSent)

		if delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting request",
				"key", req.key,
				"delay", delay,
				"queueLen", len(rl.queue))

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.ctx.Done():
				timer.Stop()
				req.response <- req.ctx.Err()

				return
			case <-rl.ctx.Done():
				timer.Stop()
				req.response <- ErrStopped

				return
			}
		}
	}

	err := req.fn(req.ctx)

	rl.mu.Lock()
	rl.lastSent[req.key] = time.Now()
	rl.mu.Unlock()

	req.response <- err
}

func getDelay(interval time.Duration, lastSent time.Time) time.Duration {
	elapsed := time.Since(lastSent)

	return max(interval-elapsed, 0)
}
