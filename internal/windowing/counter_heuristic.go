package windowing

import (
	"unicode/utf8"

	"github.com/vportnov/usermgmt-agent/chat"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m chat.Message) int
	CountGroup(g Group, all []chat.Message) int
}

// HeuristicCounter is the default deterministic estimator:
// content runes, plus name and argument runes per tool call, plus a small
// fixed overhead per message and per tool call for wire framing.
type HeuristicCounter struct{}

// Fixed overheads for deterministic counts; changing these requires updating the guard test.
const (
	messageOverhead  = 4
	toolCallOverhead = 4
)

func (HeuristicCounter) CountMessage(m chat.Message) int {
	total := utf8.RuneCountInString(m.Content) + messageOverhead
	for _, tc := range m.ToolCalls {
		total += utf8.RuneCountInString(tc.Name) + utf8.RuneCountInString(tc.Arguments) + toolCallOverhead
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []chat.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
