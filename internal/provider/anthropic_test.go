package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/internal/provider"
	"github.com/vportnov/usermgmt-agent/tools"
)

// anthropicSSE replays scripted (event, data) pairs as one event stream.
type anthropicSSE struct {
	events   [][2]string
	captured *capture
}

func (f *anthropicSSE) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	var sb strings.Builder
	for _, ev := range f.events {
		sb.WriteString("event: " + ev[0] + "\n")
		sb.WriteString("data: " + ev[1] + "\n\n")
	}
	resp := &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewReader([]byte(sb.String()))),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "text/event-stream")
	return resp, nil
}

func newAnthropicWithEvents(cap *capture, events ...[2]string) *provider.Anthropic {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: &anthropicSSE{events: events, captured: cap}}),
		option.WithAPIKey("test-key"),
	)
	return provider.NewAnthropicWithClient(&c, "")
}

func TestAnthropicStream_TranslatesEventsToDeltas(t *testing.T) {
	p := newAnthropicWithEvents(nil,
		[2]string{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-3-7-sonnet-latest","usage":{"input_tokens":1,"output_tokens":1}}}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Checking. "}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		[2]string{"content_block_start", `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"c1","name":"get_user_by_id","input":{}}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"user_id\""}}`},
		[2]string{"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":": 42}"}}`},
		[2]string{"content_block_stop", `{"type":"content_block_stop","index":1}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)
	s, err := p.StreamCompletion(context.Background(), []chat.Message{chat.NewUserMessage("who is 42")}, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	frags := drain(t, s)
	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %d: %+v", len(frags), frags)
	}
	if frags[0].Content != "Checking. " {
		t.Fatalf("unexpected text fragment: %+v", frags[0])
	}
	start := frags[1].ToolCalls[0]
	if start.Index != 1 || start.ID != "c1" || start.Name != "get_user_by_id" {
		t.Fatalf("unexpected tool start delta: %+v", start)
	}
	if frags[2].ToolCalls[0].Arguments != `{"user_id"` || frags[3].ToolCalls[0].Arguments != `: 42}` {
		t.Fatalf("unexpected argument deltas: %+v %+v", frags[2], frags[3])
	}
}

func TestAnthropicRequest_MapsHistoryAndTools(t *testing.T) {
	cap := &capture{}
	p := newAnthropicWithEvents(cap,
		[2]string{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-3-7-sonnet-latest","usage":{"input_tokens":1,"output_tokens":1}}}`},
		[2]string{"message_stop", `{"type":"message_stop"}`},
	)
	msgs := []chat.Message{
		chat.NewSystemMessage("be helpful"),
		chat.NewUserMessage("who is 42"),
		chat.NewAssistantMessage("", []chat.ToolCall{{ID: "c1", Name: "get_user_by_id", Arguments: `{"user_id": 42}`}}),
		chat.NewToolMessage("c1", "User 42: Alice"),
	}
	defs := []tools.Definition{{
		Name:        "get_user_by_id",
		Description: "Fetch one user",
		InputSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"user_id": map[string]any{"type": "integer"}},
			"required":             []any{"user_id"},
			"additionalProperties": false,
		},
	}}
	s, err := p.StreamCompletion(context.Background(), msgs, defs)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	drain(t, s)

	var rb struct {
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string          `json:"type"`
				Text      string          `json:"text,omitempty"`
				ID        string          `json:"id,omitempty"`
				Name      string          `json:"name,omitempty"`
				Input     json.RawMessage `json:"input,omitempty"`
				ToolUseID string          `json:"tool_use_id,omitempty"`
			} `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Type                 string          `json:"type"`
				Required             []string        `json:"required"`
				AdditionalProperties *bool           `json:"additionalProperties"`
				Properties           json.RawMessage `json:"properties"`
			} `json:"input_schema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(cap.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(cap.body))
	}
	if len(rb.System) != 1 || rb.System[0].Text != "be helpful" {
		t.Fatalf("system prompt not mapped: %+v", rb.System)
	}
	if len(rb.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(rb.Messages))
	}
	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) != 1 || asst.Content[0].Type != "tool_use" ||
		asst.Content[0].ID != "c1" || asst.Content[0].Name != "get_user_by_id" {
		t.Fatalf("unexpected assistant turn: %+v", asst)
	}
	result := rb.Messages[2]
	if result.Role != "user" || len(result.Content) != 1 || result.Content[0].Type != "tool_result" ||
		result.Content[0].ToolUseID != "c1" {
		t.Fatalf("unexpected tool result turn: %+v", result)
	}
	if len(rb.Tools) != 1 || rb.Tools[0].Name != "get_user_by_id" {
		t.Fatalf("unexpected tools: %+v", rb.Tools)
	}
	schema := rb.Tools[0].InputSchema
	if schema.Type != "object" || len(schema.Properties) == 0 {
		t.Fatalf("schema core not mapped: %+v", schema)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "user_id" {
		t.Fatalf("required list lost in mapping: %+v", schema)
	}
	if schema.AdditionalProperties == nil || *schema.AdditionalProperties {
		t.Fatalf("additionalProperties lost in mapping: %+v", schema)
	}
}
