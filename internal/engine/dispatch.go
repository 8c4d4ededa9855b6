package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/telemetry"
)

// dispatch executes every tool call of one assistant message concurrently and
// returns the results in the order the calls were requested. Tool failures
// never abort the turn; they become tool-result messages the model can read.
// A cancelled context aborts the whole batch instead.
func (e *Engine) dispatch(ctx context.Context, msg chat.Message) ([]chat.Message, error) {
	results := make([]chat.Message, len(msg.ToolCalls))

	var wg sync.WaitGroup
	for i, call := range msg.ToolCalls {
		wg.Add(1)
		go func(i int, call chat.ToolCall) {
			defer wg.Done()
			results[i] = e.runTool(ctx, call)
		}(i, call)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runTool parses one call's arguments, executes it under the tool timeout, and
// folds any failure into the result content.
func (e *Engine) runTool(ctx context.Context, call chat.ToolCall) chat.Message {
	if e.onToolCall != nil {
		e.onToolCall(call.Name)
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return chat.NewToolMessage(call.ID, fmt.Sprintf("Error executing %s: invalid arguments: %v", call.Name, err))
	}

	if e.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := e.tools.Execute(ctx, call.Name, args)
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("tool_exec", map[string]any{
		"turn_id":     turnID,
		"tool":        call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"args_bytes":  len(call.Arguments),
		"out_bytes":   len(out),
		"error":       err != nil,
	})
	if err != nil {
		return chat.NewToolMessage(call.ID, fmt.Sprintf("Error executing %s: %v", call.Name, err))
	}
	return chat.NewToolMessage(call.ID, out)
}

// parseArguments decodes the accumulated argument JSON; an empty or blank
// payload means a tool that takes no arguments.
func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
