package main

import (
	"fmt"
	"io"
	"os"

	"feditimes/internal/domain"
	"feditimes/internal/render"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		sortKey   string
		outPath   string
		summarize bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write one page view to a file or stdout",
		Long: `Load the collection once and write the rendered page.

The page is written even when loading fails; it then shows the error panel
and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, sortKey, outPath, summarize)
		},
	}

	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: boosts, comments or timestamp (default DEFAULT_SORT)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "summarize posts with OpenAI before rendering")

	return cmd
}

func runRender(cmd *cobra.Command, sortKey string, outPath string, summarize bool) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.close()

	if sortKey == "" {
		sortKey = a.cfg.DefaultSort
	}

	page := render.NewPage(a.fetcher, a.renderer, domain.ParseSortKey(sortKey), a.log)
	loadErr := page.Load(ctx)

	if summarize && loadErr == nil {
		posts := page.Posts()
		summarized := a.excerpter.Warm(ctx, posts)
		a.log.InfoContext(ctx, "Excerpts are warmed",
			"postCount", len(posts),
			"summarized", summarized)
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				a.log.ErrorContext(ctx, "Failed to close output file",
					"error", err,
					"path", outPath)
			}
		}()

		out = f
	}

	if err := page.Render(out); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if loadErr != nil {
		return fmt.Errorf("load posts: %w", loadErr)
	}

	a.log.InfoContext(ctx, "Page is rendered",
		"postCount", len(page.Posts()),
		"sort", sortKey,
		"out", outPath)

	return nil
}
