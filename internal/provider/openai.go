package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vportnov/usermgmt-agent/chat"
	"github.com/vportnov/usermgmt-agent/tools"
)

const DefaultOpenAIModel = "gpt-4o"

// Azure API version used when DIAL_API_ENDPOINT points at an Azure/DIAL deployment.
const azureAPIVersion = "2025-01-01-preview"

// OpenAI streams chat completions from the OpenAI API or an Azure/DIAL
// deployment. Its stream yields tool-call deltas keyed by index, which map
// directly onto ToolCallDelta.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a provider from the environment. When DIAL_API_ENDPOINT is
// set the client targets that Azure-style deployment with DIAL_API_KEY;
// otherwise the standard API is used with OPENAI_API_KEY.
func NewOpenAI(model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	var cfg openai.ClientConfig
	if endpoint := os.Getenv("DIAL_API_ENDPOINT"); endpoint != "" {
		cfg = openai.DefaultAzureConfig(os.Getenv("DIAL_API_KEY"), endpoint)
		cfg.APIVersion = azureAPIVersion
	} else {
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			key = os.Getenv("DIAL_API_KEY")
		}
		cfg = openai.DefaultConfig(key)
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// NewOpenAIWithClient injects a preconfigured SDK client; used by tests with a
// fake transport.
func NewOpenAIWithClient(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: client, model: model}
}

// NewOpenAIClientWithTransport builds an SDK client over the given transport.
func NewOpenAIClientWithTransport(rt http.RoundTripper) *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.HTTPClient = &http.Client{Transport: rt}
	return openai.NewClientWithConfig(cfg)
}

func (p *OpenAI) StreamCompletion(ctx context.Context, msgs []chat.Message, defs []tools.Definition) (Stream, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(msgs),
		Temperature: 0,
	}
	if len(defs) > 0 {
		req.Tools = toOpenAITools(defs)
	}
	s, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	return &openaiStream{inner: s}, nil
}

type openaiStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (Fragment, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Fragment{}, io.EOF
			}
			return Fragment{}, err
		}
		if len(resp.Choices) == 0 {
			// Keep-alive or usage-only chunk; skip.
			continue
		}
		delta := resp.Choices[0].Delta
		frag := Fragment{Content: delta.Content}
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			frag.ToolCalls = append(frag.ToolCalls, ToolCallDelta{
				Index:     idx,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		return frag, nil
	}
}

func (s *openaiStream) Close() error {
	return s.inner.Close()
}

func toOpenAIMessages(msgs []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := openai.ChatCompletionMessage{Content: m.Content}
		switch m.Role {
		case chat.RoleSystem:
			cm.Role = openai.ChatMessageRoleSystem
		case chat.RoleUser:
			cm.Role = openai.ChatMessageRoleUser
		case chat.RoleAssistant:
			cm.Role = openai.ChatMessageRoleAssistant
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		case chat.RoleTool:
			cm.Role = openai.ChatMessageRoleTool
			cm.ToolCallID = m.ToolCallID
		}
		out = append(out, cm)
	}
	return out
}

func toOpenAITools(defs []tools.Definition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema,
			},
		})
	}
	return out
}
