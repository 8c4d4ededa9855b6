package windowing_test

import "github.com/vportnov/usermgmt-agent/chat"

// Short constructors keep the window fixtures readable.

func sys(text string) chat.Message { return chat.NewSystemMessage(text) }

func user(text string) chat.Message { return chat.NewUserMessage(text) }

func asst(text string) chat.Message { return chat.NewAssistantMessage(text, nil) }

func asstCalls(ids ...string) chat.Message {
	calls := make([]chat.ToolCall, 0, len(ids))
	for _, id := range ids {
		calls = append(calls, chat.ToolCall{ID: id, Name: "f"})
	}
	return chat.NewAssistantMessage("", calls)
}

func result(id, content string) chat.Message { return chat.NewToolMessage(id, content) }
