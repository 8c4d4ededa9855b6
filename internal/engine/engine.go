// Package engine drives the completion loop: it streams one model turn,
// accumulates it into an assistant message, executes any requested tools, and
// repeats until the model answers without tool calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/provider"
	"github.com/vportnov/usermgmt-agent/internal/telemetry"
	"github.com/vportnov/usermgmt-agent/internal/windowing"
	"github.com/vportnov/usermgmt-agent/tools"
)

// DefaultMaxIterations bounds the tool-call loop of one Complete call.
const DefaultMaxIterations = 25

const (
	defaultToolTimeout  = 30 * time.Second
	defaultModelTimeout = 2 * time.Minute
)

// ErrMaxIterations is returned when the model keeps requesting tools without
// ever producing a terminal message within the configured budget.
var ErrMaxIterations = errors.New("completion did not terminate within the iteration budget")

// StreamError wraps a model transport failure. Tool failures never produce a
// StreamError; they are absorbed into tool-result messages.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return "model stream: " + e.Err.Error() }
func (e *StreamError) Unwrap() error { return e.Err }

// Engine orchestrates one conversation turn against a model provider and a
// tool provider. Engines are safe for concurrent use across distinct
// histories; a single History must not be completed reentrantly.
type Engine struct {
	provider provider.Provider
	tools    tools.Provider

	maxIterations int
	toolTimeout   time.Duration
	modelTimeout  time.Duration
	tokenBudget   int

	onContent  func(string)
	onToolCall func(name string)

	defsOnce sync.Once
	defs     []tools.Definition
	defsErr  error
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations overrides the loop budget; n <= 0 keeps the default.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithToolTimeout bounds each individual tool invocation.
func WithToolTimeout(d time.Duration) Option {
	return func(e *Engine) { e.toolTimeout = d }
}

// WithModelTimeout bounds each model stream, creation through drain.
func WithModelTimeout(d time.Duration) Option {
	return func(e *Engine) { e.modelTimeout = d }
}

// WithTokenBudget enables history windowing for outbound model calls;
// 0 disables it and the full history is sent.
func WithTokenBudget(budget int) Option {
	return func(e *Engine) { e.tokenBudget = budget }
}

// WithContentFunc registers a callback invoked with each content increment as
// it arrives, for live console echo.
func WithContentFunc(fn func(string)) Option {
	return func(e *Engine) { e.onContent = fn }
}

// WithToolCallFunc registers a callback invoked with each tool name just
// before execution.
func WithToolCallFunc(fn func(name string)) Option {
	return func(e *Engine) { e.onToolCall = fn }
}

// New builds an Engine over the given collaborators.
func New(p provider.Provider, tp tools.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:      p,
		tools:         tp,
		maxIterations: DefaultMaxIterations,
		toolTimeout:   defaultToolTimeout,
		modelTimeout:  defaultModelTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// definitions lists the provider's tools once and caches the result for the
// engine's lifetime.
func (e *Engine) definitions(ctx context.Context) ([]tools.Definition, error) {
	e.defsOnce.Do(func() {
		e.defs, e.defsErr = e.tools.List(ctx)
	})
	return e.defs, e.defsErr
}

// Complete sends the history to the model and loops through tool execution
// until the model returns a message with no tool calls, which is returned
// without being appended; append policy for the final message belongs to the
// caller. Intermediate assistant and tool messages are appended to history as
// a unit per iteration, so a cancelled or failed turn appends nothing.
func (e *Engine) Complete(ctx context.Context, history *chat.History) (chat.Message, error) {
	if history == nil || history.Len() == 0 {
		return chat.Message{}, errors.New("complete: history must not be empty")
	}
	if last, ok := history.Last(); ok && last.Role == chat.RoleAssistant && last.HasToolCalls() {
		return chat.Message{}, errors.New("complete: history ends with unanswered tool calls")
	}

	defs, err := e.definitions(ctx)
	if err != nil {
		return chat.Message{}, fmt.Errorf("list tools: %w", err)
	}

	for iter := 0; iter < e.maxIterations; iter++ {
		turnID, ok := telemetry.TurnIDFromContext(ctx)
		if !ok {
			turnID = fmt.Sprintf("turn-%d", time.Now().UnixNano())
		}
		iterCtx := telemetry.WithTurnID(ctx, fmt.Sprintf("%s.%d", turnID, iter))

		window := history.Messages()
		if e.tokenBudget > 0 {
			var stats windowing.Stats
			window, stats = windowing.PrepareSendWindow(window, e.tokenBudget, windowing.HeuristicCounter{})
			telemetry.Emit("window_prepared", map[string]any{
				"turn_id":            turnID,
				"iteration":          iter,
				"budget":             stats.Budget,
				"total_estimated":    stats.Total,
				"pinned":             stats.Pinned,
				"included_groups":    stats.IncludedGroups,
				"skipped_groups":     stats.SkippedGroups,
				"over_budget_newest": stats.OverBudgetNewest,
			})
			// The newest round must always fit; treat the alternative as a
			// misconfigured budget and fail fast rather than send a window the
			// model cannot act on.
			if stats.OverBudgetNewest {
				return chat.Message{}, fmt.Errorf("windowing: newest group exceeds token budget %d", e.tokenBudget)
			}
		}

		msg, err := e.streamOneTurn(iterCtx, window, defs)
		if err != nil {
			return chat.Message{}, err
		}

		telemetry.Emit("stream_done", map[string]any{
			"turn_id":       turnID,
			"iteration":     iter,
			"content_runes": utf8.RuneCountInString(msg.Content),
			"tool_calls":    len(msg.ToolCalls),
		})

		if !msg.HasToolCalls() {
			return msg, nil
		}

		results, err := e.dispatch(iterCtx, msg)
		if err != nil {
			return chat.Message{}, err
		}
		history.Append(msg)
		history.Append(results...)
	}

	return chat.Message{}, ErrMaxIterations
}

// streamOneTurn opens and fully drains one model stream under the model
// timeout, returning the accumulated assistant message.
func (e *Engine) streamOneTurn(ctx context.Context, window []chat.Message, defs []tools.Definition) (chat.Message, error) {
	if e.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.modelTimeout)
		defer cancel()
	}
	stream, err := e.provider.StreamCompletion(ctx, window, defs)
	if err != nil {
		return chat.Message{}, &StreamError{Err: err}
	}
	msg, err := Accumulate(stream, e.onContent)
	if err != nil {
		return chat.Message{}, &StreamError{Err: err}
	}
	return msg, nil
}
