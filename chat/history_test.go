package chat_test

import (
	"testing"

	"github.com/vportnov/usermgmt-agent/chat"
)

func TestHistory_AppendAndLast(t *testing.T) {
	h := chat.NewHistory(chat.NewSystemMessage("be helpful"))
	if h.Len() != 1 {
		t.Fatalf("unexpected length: %d", h.Len())
	}

	h.Append(chat.NewUserMessage("hi"), chat.NewAssistantMessage("hello", nil))
	if h.Len() != 3 {
		t.Fatalf("unexpected length after append: %d", h.Len())
	}

	last, ok := h.Last()
	if !ok || last.Role != chat.RoleAssistant || last.Content != "hello" {
		t.Fatalf("unexpected last: %+v ok=%v", last, ok)
	}
}

func TestHistory_LastOnEmpty(t *testing.T) {
	h := chat.NewHistory()
	if _, ok := h.Last(); ok {
		t.Fatal("expected no last message on empty history")
	}
}

func TestHistory_MessagesPreserveOrder(t *testing.T) {
	h := chat.NewHistory(
		chat.NewUserMessage("one"),
		chat.NewAssistantMessage("two", nil),
	)
	h.Append(chat.NewUserMessage("three"))

	msgs := h.Messages()
	want := []string{"one", "two", "three"}
	if len(msgs) != len(want) {
		t.Fatalf("unexpected length: %d", len(msgs))
	}
	for i, w := range want {
		if msgs[i].Content != w {
			t.Fatalf("message %d: got %q want %q", i, msgs[i].Content, w)
		}
	}
}
