package excerpt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"feditimes/internal/domain"
	"feditimes/internal/summarizer"

	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

const (
	summariesMaxParallelism = 4
	summaryTTL              = 24 * time.Hour
	fallbackMaxChars        = 200
)

//nolint:gochecknoglobals // Compiled once, never mutated.
var linkRe = xurls.Strict()

// Excerpter describes posts in plain text. Summaries are produced only by Warm;
// Excerpt reads the stored summaries and otherwise truncates the post text.
type Excerpter struct {
	summarizer summarizer.Summarizer
	summaries  *summaries
	now        func() time.Time
	log        *slog.Logger
}

func New(s summarizer.Summarizer, log *slog.Logger) *Excerpter {
	return &Excerpter{
		summarizer: s,
		summaries:  newSummaries(summariesMaxPosts, summaryTTL),
		now:        time.Now,
		log:        log,
	}
}

func (e *Excerpter) Excerpt(post domain.Post) string {
	text := PlainText(post.ContentHTML)

	if summary, ok := e.summaries.lookup(canonicalPostURL(post.URL), textHash(text), e.now()); ok {
		return summary
	}

	return Fallback(text, post.Author)
}

// Warm summarizes every post that has text and no current summary yet. It
// returns the number of summaries stored.
func (e *Excerpter) Warm(ctx context.Context, posts []domain.Post) int {
	if e.summarizer == nil {
		return 0
	}

	type task struct {
		postURL string
		hash    string
		text    string
	}

	now := e.now()
	var tasks []task
	seen := make(map[string]struct{}, len(posts))

	for _, post := range posts {
		postURL := canonicalPostURL(post.URL)
		text := PlainText(post.ContentHTML)
		hash := textHash(text)
		if postURL == "" || hash == "" {
			continue
		}

		if _, ok := seen[postURL]; ok {
			continue
		}
		seen[postURL] = struct{}{}

		if _, ok := e.summaries.lookup(postURL, hash, now); ok {
			continue
		}

		tasks = append(tasks, task{postURL: postURL, hash: hash, text: text})
	}

	if len(tasks) == 0 {
		return 0
	}

	workerCount := min(summariesMaxParallelism, len(tasks))
	taskCh := make(chan task)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)

	for range workerCount {
		wg.Go(func() {
			for t := range taskCh {
				if e.summarize(ctx, t.postURL, t.hash, t.text) {
					mu.Lock()
					added++
					mu.Unlock()
				}
			}
		})
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		taskCh <- t
	}

	close(taskCh)
	wg.Wait()

	return added
}

func (e *Excerpter) summarize(ctx context.Context, postURL string, hash string, text string) bool {
	input := strings.Join(strings.Fields(StripLinks(text)), " ")
	if input == "" {
		return false
	}

	summary, err := e.summarizer.Summarize(ctx, summarizer.Input{
		Text:      input,
		SourceURL: postURL,
	})
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to summarize post",
			"error", err,
			"url", postURL,
			"fallback", true,
			"textLen", len(input))

		return false
	}

	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return false
	}

	e.summaries.store(postURL, hash, summary, e.now())

	return true
}

// StripLinks removes bare URLs, which posts often carry as link text.
func StripLinks(text string) string {
	return linkRe.ReplaceAllString(text, "")
}

// PlainText extracts the visible text of an HTML fragment with block
// boundaries turned into single spaces.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, div, li, blockquote, h1, h2, h3, h4, h5, h6").AfterHtml(" ")

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Fallback truncates text to a short excerpt; empty text yields name.
func Fallback(text string, name string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return strings.TrimSpace(name)
	}

	runes := []rune(normalized)
	if len(runes) <= fallbackMaxChars {
		return normalized
	}

	trimmed := strings.TrimSpace(string(runes[:fallbackMaxChars]))
	if trimmed == "" {
		return normalized
	}

	return trimmed + "..."
}

// textHash identifies the text a summary was made for.
func textHash(text string) string {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(normalized))

	return hex.EncodeToString(hash[:])
}

func canonicalPostURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
