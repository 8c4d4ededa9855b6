// Package mcptools exposes the tools of an MCP server over streamable HTTP as
// a tool provider for the completion engine.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vportnov/usermgmt-agent/tools"
)

const (
	clientName    = "usermgmt-agent"
	clientVersion = "dev"
)

// Client is a lazily connecting MCP client. The first List, Execute, or
// Prompts call performs the connect and initialize handshake; later calls
// reuse the session.
type Client struct {
	endpoint string
	impl     *mcpsdk.Client

	once       sync.Once
	session    *mcpsdk.ClientSession
	connectErr error
}

var _ tools.Provider = (*Client)(nil)

// New builds a client for the MCP server at the given streamable-HTTP
// endpoint, e.g. "http://localhost:8005/mcp". It does not connect.
func New(endpoint string) *Client {
	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil)
	return &Client{endpoint: endpoint, impl: impl}
}

// newTransport builds the session transport for an endpoint. A variable so
// tests can substitute an in-memory transport.
var newTransport = func(endpoint string) mcpsdk.Transport {
	return &mcpsdk.StreamableClientTransport{Endpoint: endpoint}
}

func (c *Client) ensureConnected(ctx context.Context) error {
	c.once.Do(func() {
		endpoint := strings.TrimSpace(c.endpoint)
		if endpoint == "" {
			c.connectErr = fmt.Errorf("mcp: endpoint is empty")
			return
		}
		session, err := c.impl.Connect(ctx, newTransport(endpoint), nil)
		if err != nil {
			c.connectErr = fmt.Errorf("mcp: connect %s: %w", endpoint, err)
			return
		}
		c.session = session
	})
	return c.connectErr
}

// List discovers the server's tools and maps them to engine definitions. The
// MCP input schema is already JSON Schema, so it passes through a JSON
// roundtrip unchanged.
func (c *Client) List(ctx context.Context) ([]tools.Definition, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	var defs []tools.Definition
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcp: list tools: %w", err)
		}
		schema, err := schemaToMap(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("mcp: tool %s schema: %w", tool.Name, err)
		}
		defs = append(defs, tools.Definition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return defs, nil
}

// Execute calls one tool on the server and returns its text output. A result
// flagged IsError becomes an error so the engine folds it into a tool-result
// message.
func (c *Client) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return "", err
	}
	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("mcp: call %s: %w", name, err)
	}
	text := contentText(result.Content)
	if result.IsError {
		return "", fmt.Errorf("mcp: tool %s failed: %s", name, text)
	}
	return text, nil
}

// PromptDescription pairs a server prompt's name with its description.
type PromptDescription struct {
	Name        string
	Description string
}

// Prompts discovers the server's prompts. Prompts are an optional MCP
// feature; a server without them yields an empty slice, not an error.
func (c *Client) Prompts(ctx context.Context) ([]PromptDescription, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return collectPrompts(c.session.Prompts(ctx, nil)), nil
}

// collectPrompts drains the prompt listing. A listing failure is logged and
// the prompts gathered before it are kept; discovery is advisory and must not
// take the session down.
func collectPrompts(seq iter.Seq2[*mcpsdk.Prompt, error]) []PromptDescription {
	var prompts []PromptDescription
	for prompt, err := range seq {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: mcp prompt discovery: %v\n", err)
			break
		}
		prompts = append(prompts, PromptDescription{
			Name:        prompt.Name,
			Description: prompt.Description,
		})
	}
	return prompts
}

// ResourceDescription identifies a server resource by URI with its
// human-readable name and description.
type ResourceDescription struct {
	URI         string
	Name        string
	Description string
}

// Resources discovers the server's resources. Like prompts, resources are an
// optional MCP feature handled with the same advisory semantics.
func (c *Client) Resources(ctx context.Context) ([]ResourceDescription, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	return collectResources(c.session.Resources(ctx, nil)), nil
}

func collectResources(seq iter.Seq2[*mcpsdk.Resource, error]) []ResourceDescription {
	var resources []ResourceDescription
	for resource, err := range seq {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: mcp resource discovery: %v\n", err)
			break
		}
		resources = append(resources, ResourceDescription{
			URI:         resource.URI,
			Name:        resource.Name,
			Description: resource.Description,
		})
	}
	return resources
}

// Close shuts down the session, if one was established.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func schemaToMap(schema any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{"type": "object"}, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// contentText concatenates the text blocks of a tool result; non-text blocks
// are skipped.
func contentText(blocks []mcpsdk.Content) string {
	var sb strings.Builder
	for _, block := range blocks {
		if tc, ok := block.(*mcpsdk.TextContent); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
