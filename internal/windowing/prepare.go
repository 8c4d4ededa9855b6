// Package windowing prepares bounded send windows over a conversation without
// splitting tool rounds.
package windowing

import "github.com/vportnov/usermgmt-agent/chat"

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for included groups only (pinned prefix excluded).
// - Budget: the input token budget used.
// - Pinned: number of leading system messages always included.
// - IncludedGroups: number of groups included.
// - SkippedGroups: total groups minus IncludedGroups.
// - OverBudgetNewest: true when the newest single group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	Pinned           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the messages to send (oldest→newest) within budget,
// using the TokenCounter, without splitting groups.
//
// Rules:
//   - Leading system messages are pinned: always included, never budgeted.
//   - Whole groups are included scanning newest→oldest while total ≤ budget.
//   - If the newest group alone exceeds budget, only the pinned prefix is
//     returned and OverBudgetNewest is set.
//   - budget ≤ 0 behaves the same as an over-budget newest group when any
//     non-pinned groups exist.
func PrepareSendWindow(msgs []chat.Message, budget int, c TokenCounter) ([]chat.Message, Stats) {
	pinned := 0
	for pinned < len(msgs) && msgs[pinned].Role == chat.RoleSystem {
		pinned++
	}
	prefix := msgs[:pinned]
	rest := msgs[pinned:]

	stats := Stats{Budget: budget, Pinned: pinned}
	if len(rest) == 0 {
		return prefix, stats
	}

	groups := GroupMessages(rest)
	stats.SkippedGroups = len(groups)

	if budget <= 0 {
		stats.OverBudgetNewest = true
		return prefix, stats
	}

	total := 0
	included := 0
	startIdx := len(groups) // exclusive sentinel; lowered when a group is included

	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], rest)
		if included == 0 && cost > budget {
			vlogf("reason=over_budget_newest_group budget=%d cost=%d", budget, cost)
			stats.OverBudgetNewest = true
			return prefix, stats
		}
		if total+cost > budget {
			break
		}
		total += cost
		included++
		startIdx = gi
	}

	if included == 0 {
		return prefix, stats
	}

	stats.Total = total
	stats.IncludedGroups = included
	stats.SkippedGroups = len(groups) - included

	window := make([]chat.Message, 0, pinned+len(rest)-groups[startIdx].Start)
	window = append(window, prefix...)
	window = append(window, rest[groups[startIdx].Start:]...)
	return window, stats
}
