// Builders for concrete Group and Tool implementations. Most callers never
// implement the interfaces by hand: NewTool wraps a typed handler function
// and NewGroup assembles tools under a namespace.
package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// NewTool wraps a typed handler into a Tool. The argument schema is
// reflected from T. Unmarshal failures surface as "invalid_arguments";
// handler errors that are not already Error values are wrapped as
// "handler_execution_error" so the model always sees a stable code.
func NewTool[T any](name, description string, handler func(ctx context.Context, args T) (interface{}, error)) Tool {
	return &typedTool[T]{
		name:        name,
		description: description,
		schema:      GenerateSchema[T](),
		handler:     handler,
	}
}

type typedTool[T any] struct {
	name        string
	description string
	schema      interface{}
	handler     func(ctx context.Context, args T) (interface{}, error)
}

func (t *typedTool[T]) Name() string             { return t.name }
func (t *typedTool[T]) Description() string      { return t.description }
func (t *typedTool[T]) InputSchema() interface{} { return t.schema }

func (t *typedTool[T]) Handle(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, NewError("invalid_arguments", fmt.Sprintf("arguments for %q did not match the schema: %v", t.name, err))
		}
	}
	out, err := t.handler(ctx, args)
	if err != nil {
		var tkErr Error
		if errors.As(err, &tkErr) {
			return nil, tkErr
		}
		return nil, NewError("handler_execution_error", err.Error())
	}
	return out, nil
}

// NewGroup assembles tools under a named group. Nil tools are skipped with a
// warning; a duplicate tool name overwrites the earlier one.
func NewGroup(name, description string, tools ...Tool) Group {
	toolMap := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		if tool == nil {
			log.Printf("toolkit: nil tool passed to NewGroup(%q), skipping", name)
			continue
		}
		if _, exists := toolMap[tool.Name()]; exists {
			log.Printf("toolkit: duplicate tool name %q in group %q, overwriting", tool.Name(), name)
		}
		toolMap[tool.Name()] = tool
	}
	return &builtGroup{name: name, description: description, tools: toolMap}
}

type builtGroup struct {
	name        string
	description string
	tools       map[string]Tool
}

func (g *builtGroup) Name() string           { return g.name }
func (g *builtGroup) Description() string    { return g.description }
func (g *builtGroup) Tools() map[string]Tool { return g.tools }

func (g *builtGroup) Handle(ctx context.Context, calls []ToolCall, obs Observer) GroupResult {
	result := GroupResult{Name: g.name}
	for _, call := range calls {
		tool, ok := g.tools[call.Name]
		if !ok {
			log.Printf("toolkit: tool %q not found in group %q", call.Name, g.name)
			err := NewError("tool_not_found", fmt.Sprintf("tool %q is not registered in group %q", call.Name, g.name))
			if obs != nil {
				obs.ToolHandled(g.name, call.Name, err, 0)
			}
			result.Add(ToolResult{Name: call.Name, Output: err})
			continue
		}

		start := time.Now()
		out, err := tool.Handle(ctx, call.Args)
		elapsed := time.Since(start)
		if obs != nil {
			obs.ToolHandled(g.name, call.Name, err, elapsed)
		}
		if err != nil {
			log.Printf("toolkit: %s.%s failed: %v", g.name, call.Name, err)
			result.Add(ToolResult{Name: call.Name, Output: err})
			continue
		}
		result.Add(ToolResult{Name: call.Name, Output: out})
	}
	return result
}
