package telemetry

import (
	"context"
	"testing"
)

func TestInitTracerDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shutdown == nil {
		t.Fatalf("expected non-nil shutdown")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestInitTracerWithEndpoint(t *testing.T) {
	ctx := context.Background()

	// The gRPC exporter connects lazily, so no collector is needed here.
	shutdown, err := InitTracer(ctx, "127.0.0.1:4317", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_ = shutdown(ctx)
}
