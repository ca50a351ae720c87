package excerpt

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"feditimes/internal/domain"
	"feditimes/internal/summarizer"
)

type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	inputs  []summarizer.Input
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, input summarizer.Input) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.inputs = append(s.inputs, input)

	return s.summary, s.err
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"empty", "  ", ""},
		{"paragraphs", "<p>First</p><p>Second</p>", "First Second"},
		{"line breaks", "<p>One<br>Two<br/>Three</p>", "One Two Three"},
		{"links", `<p>Read <a href="https://x.example">this</a>!</p>`, "Read this!"},
		{"entities", "<p>Fish &amp; Chips &lt;3</p>", "Fish & Chips <3"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := PlainText(test.html); got != test.want {
				t.Fatalf("got %q want %q", got, test.want)
			}
		})
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("  spaced \n  out  ", "Alice"); got != "spaced out" {
		t.Fatalf("unexpected fallback: %q", got)
	}

	if got := Fallback("", " Alice "); got != "Alice" {
		t.Fatalf("expected name for empty text, got %q", got)
	}

	long := strings.Repeat("ä", fallbackMaxChars+10)
	got := Fallback(long, "Alice")

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated excerpt, got %q", got)
	}

	if n := len([]rune(strings.TrimSuffix(got, "..."))); n != fallbackMaxChars {
		t.Fatalf("expected %d runes, got %d", fallbackMaxChars, n)
	}
}

func TestTextHash(t *testing.T) {
	if textHash(" Example post text ") != textHash("Example post text") {
		t.Fatalf("expected surrounding whitespace not to change the hash")
	}

	if textHash("Example post text") == textHash("Example post text (edited)") {
		t.Fatalf("expected edited text to change the hash")
	}

	if h := textHash(" "); h != "" {
		t.Fatalf("expected empty hash for empty text, got %q", h)
	}
}

func TestCanonicalPostURL(t *testing.T) {
	got := canonicalPostURL(" https://instance.example/@alice/1?ref=x#top ")
	if got != "https://instance.example/@alice/1" {
		t.Fatalf("unexpected canonical URL: %q", got)
	}
}

func TestStripLinks(t *testing.T) {
	got := StripLinks("New release https://code.example/v2 is out")
	if got != "New release  is out" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestWarmSendsTextWithoutLinks(t *testing.T) {
	stub := &stubSummarizer{summary: "A release."}
	e := New(stub, slog.Default())

	posts := []domain.Post{
		{URL: "https://instance.example/1", ContentHTML: `<p>New release <a href="https://code.example/v2">https://code.example/v2</a> is out</p>`},
		{URL: "https://instance.example/2", ContentHTML: `<p><a href="https://code.example">https://code.example</a></p>`},
	}

	if added := e.Warm(context.Background(), posts); added != 1 {
		t.Fatalf("expected 1 summary, got %d", added)
	}

	if len(stub.inputs) != 1 {
		t.Fatalf("expected one summarizer call, got %d", len(stub.inputs))
	}

	if got := stub.inputs[0]; got.Text != "New release is out" || got.SourceURL != "https://instance.example/1" {
		t.Fatalf("unexpected summarizer input: %+v", got)
	}
}

func TestExcerptWithoutSummarizerUsesFallback(t *testing.T) {
	e := New(nil, slog.Default())
	post := domain.Post{Author: "Alice", URL: "https://instance.example/1", ContentHTML: "<p>Hello there</p>"}

	if added := e.Warm(context.Background(), []domain.Post{post}); added != 0 {
		t.Fatalf("expected nothing to warm without summarizer, got %d", added)
	}

	if got := e.Excerpt(post); got != "Hello there" {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}

func TestWarmCachesSummaries(t *testing.T) {
	stub := &stubSummarizer{summary: "  A short\ndescription. "}
	e := New(stub, slog.Default())

	posts := []domain.Post{
		{Author: "Alice", URL: "https://instance.example/1", ContentHTML: "<p>Long text one</p>"},
		{Author: "Bob", URL: "https://instance.example/2", ContentHTML: "<p>Long text two</p>"},
		{Author: "Bob", URL: "https://instance.example/2", ContentHTML: "<p>Long text two</p>"},
		{Author: "Carol", URL: "https://instance.example/3"},
	}

	ctx := context.Background()

	if added := e.Warm(ctx, posts); added != 2 {
		t.Fatalf("expected 2 summaries, got %d", added)
	}

	if got := stub.callCount(); got != 2 {
		t.Fatalf("expected summarizer to be called twice, got %d", got)
	}

	if got := e.Excerpt(posts[0]); got != "A short description." {
		t.Fatalf("unexpected cached excerpt: %q", got)
	}

	if got := e.Excerpt(posts[3]); got != "Carol" {
		t.Fatalf("expected author fallback for empty content, got %q", got)
	}

	if added := e.Warm(ctx, posts); added != 0 {
		t.Fatalf("expected cache hits on second warm, got %d new", added)
	}

	if got := stub.callCount(); got != 2 {
		t.Fatalf("expected no new summarizer calls, got %d", got)
	}
}

func TestWarmEditedPostReplacesSummary(t *testing.T) {
	stub := &stubSummarizer{summary: "first"}
	e := New(stub, slog.Default())
	post := domain.Post{URL: "https://instance.example/1", ContentHTML: "<p>Text</p>"}

	e.Warm(context.Background(), []domain.Post{post})

	stub.mu.Lock()
	stub.summary = "second"
	stub.mu.Unlock()

	edited := post
	edited.ContentHTML = "<p>Text (edited)</p>"

	if got := e.Excerpt(edited); got != "Text (edited)" {
		t.Fatalf("expected fallback before the edited post is warmed, got %q", got)
	}

	if added := e.Warm(context.Background(), []domain.Post{edited}); added != 1 {
		t.Fatalf("expected edited post to be summarized again, got %d", added)
	}

	if got := e.Excerpt(edited); got != "second" {
		t.Fatalf("unexpected excerpt for edited post: %q", got)
	}

	if got := e.Excerpt(post); got != "Text" {
		t.Fatalf("expected stale summary to be replaced, got %q", got)
	}

	if n := e.summaries.size(); n != 1 {
		t.Fatalf("expected one summary per post, got %d", n)
	}
}

func TestWarmSummarizerErrorFallsBack(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("rate limited")}
	e := New(stub, slog.Default())
	post := domain.Post{Author: "Alice", URL: "https://instance.example/1", ContentHTML: "<p>Plain words</p>"}

	if added := e.Warm(context.Background(), []domain.Post{post}); added != 0 {
		t.Fatalf("expected no summaries on error, got %d", added)
	}

	if got := e.Excerpt(post); got != "Plain words" {
		t.Fatalf("unexpected excerpt: %q", got)
	}
}
