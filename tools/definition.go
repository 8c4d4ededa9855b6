package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Definition describes one callable tool as advertised to the model provider.
// InputSchema is a JSON-Schema-shaped object ("type", "properties", "required")
// passed through to the provider unmodified.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Provider exposes a set of callable tools. Implementations: the local
// Registry and the MCP client in internal/mcptools.
//
// Execute returns the tool's result string, or an error for unknown tools and
// provider-side failures. The dispatcher converts such errors into tool-result
// messages; they are never fatal to a completion.
type Provider interface {
	List(ctx context.Context) ([]Definition, error)
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// GenerateSchema derives the input schema object for a tool input struct.
// Field descriptions come from jsonschema_description tags.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(fmt.Sprintf("tools: unmarshal schema: %v", err))
	}
	// Keep only the schema object itself; reflector metadata like $schema is
	// noise for the model providers.
	delete(m, "$schema")
	delete(m, "$id")
	return m
}
