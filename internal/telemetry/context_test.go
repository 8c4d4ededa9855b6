package telemetry_test

import (
	"context"
	"testing"

	"github.com/vportnov/usermgmt-agent/internal/telemetry"
)

func TestTurnID_RoundTrip(t *testing.T) {
	ctx := telemetry.WithTurnID(context.Background(), "turn-123")
	id, ok := telemetry.TurnIDFromContext(ctx)
	if !ok || id != "turn-123" {
		t.Fatalf("unexpected turn id: %q ok=%v", id, ok)
	}
}

func TestTurnID_MissingOrEmpty(t *testing.T) {
	if _, ok := telemetry.TurnIDFromContext(context.Background()); ok {
		t.Fatal("expected no turn id on fresh context")
	}
	ctx := telemetry.WithTurnID(context.Background(), "")
	if _, ok := telemetry.TurnIDFromContext(ctx); ok {
		t.Fatal("empty turn id must report not present")
	}
}

func TestTurnID_NilContext(t *testing.T) {
	if _, ok := telemetry.TurnIDFromContext(nil); ok {
		t.Fatal("nil context must report not present")
	}
	ctx := telemetry.WithTurnID(nil, "x")
	if id, ok := telemetry.TurnIDFromContext(ctx); !ok || id != "x" {
		t.Fatalf("unexpected: %q ok=%v", id, ok)
	}
}
