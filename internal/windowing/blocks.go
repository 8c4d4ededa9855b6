package windowing

import (
	"fmt"
	"os"

	"github.com/vportnov/usermgmt-agent/chat"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupToolRound
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated tool round.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupMessages groups messages into atomic units that keep tool rounds intact.
// Invariants:
//   - A tool round is an assistant message carrying tool calls followed
//     immediately by its tool-result messages, one per call.
//   - The result run must answer exactly the assistant's call ids: none missing,
//     none extra, no non-tool message in between.
//   - Anything else is a singleton.
func GroupMessages(msgs []chat.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == chat.RoleAssistant && m.HasToolCalls() {
			if end, ok := toolRoundEnd(msgs, i); ok {
				groups = append(groups, Group{Kind: GroupToolRound, Start: i, End: end})
				i = end
				continue
			}
			vlogf("exclude round: reason=results_incomplete idx=%d", i)
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// toolRoundEnd validates the result run following the assistant message at
// start and returns the exclusive end index of the round.
func toolRoundEnd(msgs []chat.Message, start int) (int, bool) {
	wanted := make(map[string]struct{}, len(msgs[start].ToolCalls))
	for _, tc := range msgs[start].ToolCalls {
		if tc.ID != "" {
			wanted[tc.ID] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return 0, false
	}

	i := start + 1
	for i < len(msgs) && msgs[i].Role == chat.RoleTool {
		id := msgs[i].ToolCallID
		if _, ok := wanted[id]; !ok {
			// Result for a call this assistant turn never made.
			return 0, false
		}
		delete(wanted, id)
		i++
		if len(wanted) == 0 {
			return i, true
		}
	}
	return 0, false
}

// minimal verbose logging when UMA_VERBOSE_WINDOW_LOGS=1
var verbose = os.Getenv("UMA_VERBOSE_WINDOW_LOGS") == "1"

func vlogf(format string, args ...any) {
	if verbose {
		fmt.Printf("[windowing] "+format+"\n", args...)
	}
}
