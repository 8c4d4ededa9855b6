package provider

import (
	"context"
	"encoding/json"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/tools"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

const anthropicMaxTokens = 1024

// Anthropic streams completions from the Anthropic Messages API. Tool-use
// block starts carry the call id and name; input_json_delta events carry the
// argument text. Both are translated into indexed tool-call deltas, so the
// accumulator treats either backend identically.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropic returns a provider using the API key from the env (the SDK
// reads ANTHROPIC_API_KEY itself).
func NewAnthropic(model string) *Anthropic {
	c := anthropic.NewClient()
	m := DefaultAnthropicModel
	if model != "" {
		m = anthropic.Model(model)
	}
	return &Anthropic{client: &c, model: m}
}

// NewAnthropicWithClient injects a preconfigured SDK client; used by tests
// with a fake transport.
func NewAnthropicWithClient(client *anthropic.Client, model string) *Anthropic {
	m := DefaultAnthropicModel
	if model != "" {
		m = anthropic.Model(model)
	}
	return &Anthropic{client: client, model: m}
}

func (p *Anthropic) StreamCompletion(ctx context.Context, msgs []chat.Message, defs []tools.Definition) (Stream, error) {
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(anthropicMaxTokens),
	}

	for _, m := range msgs {
		switch m.Role {
		case chat.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case chat.RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case chat.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				input := json.RawMessage(tc.Arguments)
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    tc.ID,
					Name:  tc.Name,
					Input: input,
				}})
			}
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		case chat.RoleTool:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		}
	}

	for _, d := range defs {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: toolInputSchema(d.InputSchema),
		}})
	}

	return &anthropicStream{inner: p.client.Messages.NewStreaming(ctx, params)}, nil
}

// toolInputSchema maps a JSON Schema object onto the SDK's typed param.
// Properties and required fill the dedicated fields; every other top-level
// keyword (additionalProperties, $defs, ...) rides along in ExtraFields so the
// schema reaches the wire intact.
func toolInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{
		Properties: schema["properties"],
		Required:   requiredNames(schema["required"]),
	}
	for key, value := range schema {
		switch key {
		case "type", "properties", "required":
		default:
			if out.ExtraFields == nil {
				out.ExtraFields = make(map[string]any)
			}
			out.ExtraFields[key] = value
		}
	}
	return out
}

// requiredNames normalizes the schema's required list, which arrives as
// []string from Go-side schemas and as []any after a JSON roundtrip.
func requiredNames(v any) []string {
	switch names := v.(type) {
	case []string:
		return names
	case []any:
		out := make([]string, 0, len(names))
		for _, n := range names {
			if s, ok := n.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type anthropicStream struct {
	inner *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *anthropicStream) Recv() (Fragment, error) {
	for s.inner.Next() {
		switch ev := s.inner.Current().AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if tu, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				return Fragment{ToolCalls: []ToolCallDelta{{
					Index: int(ev.Index),
					ID:    tu.ID,
					Name:  tu.Name,
				}}}, nil
			}
		case anthropic.ContentBlockDeltaEvent:
			switch d := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				return Fragment{Content: d.Text}, nil
			case anthropic.InputJSONDelta:
				return Fragment{ToolCalls: []ToolCallDelta{{
					Index:     int(ev.Index),
					Arguments: d.PartialJSON,
				}}}, nil
			}
		}
		// message_start, message_delta, ping etc. carry nothing to accumulate.
	}
	if err := s.inner.Err(); err != nil {
		return Fragment{}, err
	}
	return Fragment{}, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.inner.Close()
}
