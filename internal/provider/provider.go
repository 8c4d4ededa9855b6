// Package provider abstracts streaming chat-completion backends behind a
// common fragment stream. The completion engine consumes fragments only; it
// never sees a backend SDK type.
package provider

import (
	"context"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/tools"
)

// ToolCallDelta is one tool-call increment within a fragment. Index is the
// positional index of the tool call within the model turn; ID, Name and
// Arguments each carry only the piece that arrived in this fragment and may be
// empty. Arguments is a raw text fragment, not guaranteed to be valid JSON on
// its own.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Fragment is one unit of incremental model output: a content-text increment
// and/or tool-call increments.
type Fragment struct {
	Content   string
	ToolCalls []ToolCallDelta
}

// Stream is a finite, ordered, single-pass sequence of fragments. Recv returns
// io.EOF after the final fragment. A stream must be drained to completion or
// closed; partial draining followed by reuse is undefined.
type Stream interface {
	Recv() (Fragment, error)
	Close() error
}

// Provider starts one streaming completion over the given history with the
// given tool declarations.
type Provider interface {
	StreamCompletion(ctx context.Context, msgs []chat.Message, defs []tools.Definition) (Stream, error)
}
