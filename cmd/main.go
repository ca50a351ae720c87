package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"feditimes/internal/config"
	"feditimes/internal/excerpt"
	"feditimes/internal/ratelimiter"
	"feditimes/internal/render"
	"feditimes/internal/source"
	"feditimes/internal/summarizer"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "feditimes",
		Short: "Render curated Fediverse posts as sortable cards",
		Long: `feditimes loads the curated post collection (fediposts.json) from
SOURCE_BASE_URL and renders it as a page of post cards.

Available subcommands:
  serve  - Serve the page, the offline copy and the JSON view over HTTP
  render - Write one page view to a file or stdout`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newRenderCmd())

	return rootCmd
}

// app holds the pieces shared by all subcommands.
type app struct {
	cfg       config.Config
	limiter   *ratelimiter.RateLimiter
	fetcher   *source.Fetcher
	excerpter *excerpt.Excerpter
	renderer  *render.Renderer
	log       *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.Env)
	slog.SetDefault(log)

	loc, err := cfg.Location()
	if err != nil {
		log.WarnContext(ctx, "Unknown timezone so UTC will be used",
			"error", err,
			"timezone", cfg.Timezone)
	}

	limiter := ratelimiter.New(cfg.SourceMinInterval, log)

	fetcher, err := source.NewFetcher(cfg.SourceBaseURL, cfg.SourceTimeout, limiter, loc, log)
	if err != nil {
		limiter.Stop()

		return nil, err
	}
	log.InfoContext(ctx, "Source is initialized",
		"resourceURL", fetcher.ResourceURL(),
		"timeoutSeconds", cfg.SourceTimeout.Seconds(),
		"minIntervalSeconds", cfg.SourceMinInterval.Seconds())

	excerpter := excerpt.New(initOpenAISummarizer(ctx, cfg.OpenAIAPIKey, log), log)

	renderer, err := render.NewRenderer(loc, log, render.WithExcerpter(excerpter))
	if err != nil {
		limiter.Stop()

		return nil, err
	}

	return &app{
		cfg:       cfg,
		limiter:   limiter,
		fetcher:   fetcher,
		excerpter: excerpter,
		renderer:  renderer,
		log:       log,
	}, nil
}

func (a *app) close() {
	a.limiter.Stop()
}

// newLogger logs to stderr so that render can write the page to stdout.
func newLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "local" {
		opts.Level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func initOpenAISummarizer(ctx context.Context, apiKey string, log *slog.Logger) summarizer.Summarizer {
	if apiKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback excerpts will be used",
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{APIKey: apiKey})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer so fallback excerpts will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai")

	return s
}
