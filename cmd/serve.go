package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feditimes/internal/domain"
	"feditimes/internal/offline"
	"feditimes/internal/scheduler"
	"feditimes/internal/server"
	"feditimes/internal/telemetry"

	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the post page over HTTP",
		Long: `Serve the post page over HTTP.

Routes:
  GET /?sort=<key>          - one page view
  GET /offline?sort=<key>   - page view of the last good copy
  GET /api/posts?sort=<key> - derived cards as JSON
  GET /healthz              - health check

Sort keys are boosts, comments and timestamp.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.close()

	log := a.log
	cfg := a.cfg

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OtelEndpoint, cfg.Env)
	if err != nil {
		log.ErrorContext(ctx, "Failed to init tracer",
			"error", err,
			"endpoint", cfg.OtelEndpoint)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownTracer(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Failed to shut down tracer",
				"error", err)
		}
	}()

	loc, _ := cfg.Location()
	offlineCopy := offline.NewCache()

	sched := scheduler.New(ctx, cfg.OfflineRefreshSpec, loc, a.fetcher, offlineCopy, a.excerpter, log)
	if err = sched.Start(); err != nil {
		log.WarnContext(ctx, "Failed to register offline worker so /offline stays empty",
			"error", err,
			"spec", cfg.OfflineRefreshSpec)
	} else {
		defer sched.Stop()
		log.InfoContext(ctx, "Offline worker is started",
			"spec", cfg.OfflineRefreshSpec,
			"timezone", loc.String())
	}

	srv := server.New(
		a.fetcher,
		offlineCopy,
		a.renderer,
		domain.SortKey(cfg.DefaultSort),
		cfg.CORSAllowedOrigins,
		log,
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		log.InfoContext(ctx, "HTTP server is listening",
			"addr", cfg.ListenAddr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.InfoContext(ctx, "Shutdown signal is received",
			"uptimeSeconds", time.Since(start).Seconds())
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}
