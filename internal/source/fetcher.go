package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feditimes/internal/domain"
	"feditimes/internal/ratelimiter"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// ResourcePath is the fixed location of the collection relative to the base URL.
	ResourcePath = "fediposts.json"

	maxDocumentBytes = 10 << 20
	userAgent        = "feditimes/1.0 (+https://github.com/feditimes)"
)

type Fetcher struct {
	resourceURL string
	client      *http.Client
	limiter     *ratelimiter.RateLimiter
	loc         *time.Location
	log         *slog.Logger
}

func NewFetcher(
	baseURL string,
	timeout time.Duration,
	limiter *ratelimiter.RateLimiter,
	loc *time.Location,
	log *slog.Logger,
) (*Fetcher, error) {
	resourceURL, err := ResourceURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("resolve resource URL: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}

	return &Fetcher{
		resourceURL: resourceURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
		loc:     loc,
		log:     log,
	}, nil
}

// ResourceURL resolves ResourcePath against baseURL, treating baseURL as a
// directory.
func ResourceURL(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", errors.New("base URL is empty")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base URL is not absolute (URL = %s)", baseURL)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	return base.ResolveReference(&url.URL{Path: ResourcePath}).String(), nil
}

func (f *Fetcher) ResourceURL() string {
	return f.resourceURL
}

// Fetch loads the whole collection with a single GET. Transport failures and
// non-2xx statuses, as well as malformed documents, are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.Collection, error) {
	var collection *domain.Collection

	fetch := func(ctx context.Context) error {
		var err error
		collection, err = f.fetch(ctx)

		return err
	}

	var err error
	if f.limiter != nil {
		err = f.limiter.Do(ctx, f.resourceURL, fetch)
	} else {
		err = fetch(ctx)
	}
	if err != nil {
		return nil, err
	}

	return collection, nil
}

func (f *Fetcher) fetch(ctx context.Context) (*domain.Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"resourceURL", f.resourceURL,
				"operation", "fetch")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	collection, err := Decode(io.LimitReader(resp.Body, maxDocumentBytes), f.loc)
	if err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	f.log.DebugContext(ctx, "Collection is fetched",
		"resourceURL", f.resourceURL,
		"postCount", len(collection.Posts))

	return collection, nil
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}
