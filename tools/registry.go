package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// LocalTool is one in-process tool: a Definition plus its handler. Handlers
// receive the raw JSON argument object and unmarshal it into their typed input.
type LocalTool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry is a Provider over a fixed set of local tools.
type Registry struct {
	order  []LocalTool
	byName map[string]LocalTool
}

// NewRegistry builds a registry. Duplicate tool names are a programming error.
func NewRegistry(defs ...LocalTool) *Registry {
	r := &Registry{byName: make(map[string]LocalTool, len(defs))}
	for _, d := range defs {
		if _, exists := r.byName[d.Name]; exists {
			panic(fmt.Sprintf("tools: duplicate tool %q", d.Name))
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d)
	}
	return r
}

func (r *Registry) List(ctx context.Context) ([]Definition, error) {
	out := make([]Definition, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, Definition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return out, nil
}

func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	d, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("tool %q not found", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments for %s: %w", name, err)
	}
	return d.Function(ctx, raw)
}
