package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/mcptools"
	"github.com/vportnov/usermgmt-agent/memory"
	"github.com/vportnov/usermgmt-agent/tools"
)

// loadHistory restores the persisted transcript when one exists; otherwise it
// seeds a fresh conversation with the system prompt plus any guidance prompts
// the MCP server publishes.
func loadHistory(ctx context.Context, tp tools.Provider) (*chat.History, error) {
	persisted, err := memory.LoadTranscript(persistPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load persisted conversation: %v\n", err)
	}
	if len(persisted) > 0 {
		return chat.NewHistory(persisted...), nil
	}

	history := chat.NewHistory(chat.NewSystemMessage(systemPrompt))
	if mcp, ok := tp.(*mcptools.Client); ok {
		prompts, err := mcp.Prompts(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover prompts: %w", err)
		}
		for _, p := range prompts {
			guidance := p.Description
			if guidance == "" {
				guidance = p.Name
			}
			history.Append(chat.NewUserMessage(guidance))
		}
	}
	return history, nil
}

func saveTranscript(history *chat.History) error {
	return memory.SaveTranscript(persistPath, history.Messages())
}
