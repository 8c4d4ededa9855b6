package engine

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/provider"
)

// toolCallBuilder collects the fragments of one in-flight tool call, keyed by
// its stream position index.
type toolCallBuilder struct {
	id   string
	name strings.Builder
	args strings.Builder
}

// Accumulate drains a fragment stream into a single assistant message.
// Content increments are concatenated in arrival order; tool-call deltas are
// merged by position index, so the result is the same no matter how the
// transport re-segments the stream. The first non-empty ID seen for an index
// wins; name and argument fragments concatenate. onContent, when non-nil, is
// invoked with each content increment as it arrives.
//
// The stream is always closed. io.EOF terminates accumulation normally; any
// other receive error is returned and the partial message discarded.
func Accumulate(stream provider.Stream, onContent func(string)) (chat.Message, error) {
	defer stream.Close()

	var content strings.Builder
	builders := make(map[int]*toolCallBuilder)

	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return chat.Message{}, err
		}

		if frag.Content != "" {
			content.WriteString(frag.Content)
			if onContent != nil {
				onContent(frag.Content)
			}
		}
		for _, d := range frag.ToolCalls {
			b, ok := builders[d.Index]
			if !ok {
				b = &toolCallBuilder{}
				builders[d.Index] = b
			}
			if b.id == "" && d.ID != "" {
				b.id = d.ID
			}
			b.name.WriteString(d.Name)
			b.args.WriteString(d.Arguments)
		}
	}

	msg := chat.Message{Role: chat.RoleAssistant, Content: content.String()}
	if len(builders) == 0 {
		return msg, nil
	}

	indexes := make([]int, 0, len(builders))
	for idx := range builders {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	msg.ToolCalls = make([]chat.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		b := builders[idx]
		msg.ToolCalls = append(msg.ToolCalls, chat.ToolCall{
			ID:        b.id,
			Name:      b.name.String(),
			Arguments: b.args.String(),
		})
	}
	return msg, nil
}
