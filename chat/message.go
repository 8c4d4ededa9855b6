// Package chat defines the conversation message model shared by the
// completion engine, the model providers, and transcript persistence.
//
// Messages are immutable once constructed; the only sanctioned mutation of a
// conversation is appending to a History.
package chat

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model.
// Arguments holds the raw accumulated argument text; it is parsed into a
// structured map at dispatch time, not here.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single conversation turn.
//
// ToolCalls is set only on assistant messages that requested tool execution.
// ToolCallID is set only on tool messages and references the ToolCall it
// answers.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func NewAssistantMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// NewToolMessage builds the result message for one tool call. The content is
// the provider's result string verbatim, or an error description when the call
// failed.
func NewToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
