package telemetry

import (
	"context"

	"github.com/vportnov/usermgmt-agent/internal/metrics"
)

// EmitInputFeatures records size features of one user input line. Useful for
// calibrating the windowing token heuristic against real traffic.
func EmitInputFeatures(ctx context.Context, input string) {
	if !observeEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(input)
	Emit("input_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"input": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
