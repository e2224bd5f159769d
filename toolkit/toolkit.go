// Toolkit container and dispatch entry point.
package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Toolkit is the top-level registry of Groups and the dispatch entry point
// for invocation requests. Construct one per session with New, optionally
// attach an Observer, register it with the LLM provider as a single tool,
// and feed every tool_use payload to Dispatch.
type Toolkit struct {
	name     string
	groups   map[string]Group
	observer Observer
}

// New builds a Toolkit with the given name and groups. Nil groups are
// skipped with a warning; a duplicate group name overwrites the earlier
// registration.
func New(name string, groups ...Group) *Toolkit {
	groupMap := make(map[string]Group, len(groups))
	for _, g := range groups {
		if g == nil {
			log.Println("toolkit: nil group passed to New, skipping")
			continue
		}
		if _, exists := groupMap[g.Name()]; exists {
			log.Printf("toolkit: duplicate group name %q, overwriting earlier registration", g.Name())
		}
		groupMap[g.Name()] = g
	}
	return &Toolkit{name: name, groups: groupMap}
}

// WithObserver attaches an Observer that receives one callback per handled
// tool call, and returns the toolkit for chaining. Passing nil detaches.
func (t *Toolkit) WithObserver(obs Observer) *Toolkit {
	t.observer = obs
	return t
}

// Name returns the toolkit's configured name.
func (t *Toolkit) Name() string {
	return t.name
}

// Schema returns the JSON schema of the Invocation request for the given
// provider. Only the Anthropic format is implemented; unknown providers fall
// back to it with a warning.
func (t *Toolkit) Schema(provider string) interface{} {
	if provider != "anthropic" {
		log.Printf("toolkit: unsupported schema provider %q, defaulting to anthropic", provider)
	}
	return InvocationSchema()
}

// Description renders an XML-like overview of every group and tool,
// including each tool's input schema. It is intended to be embedded in the
// model's tool description so the hierarchy is self-explanatory.
func (t *Toolkit) Description() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("In this environment you have access to the following <toolkit name=%q>:\n", t.name))
	sb.WriteString("A <toolkit> is a collection of <groups>; a <group> is a collection of <tools>.\n")
	sb.WriteString("A tool cannot be invoked directly: address its group, then the tool within it.\n")

	for _, name := range t.groupNames() {
		group := t.groups[name]
		sb.WriteString(fmt.Sprintf("<group name=%q description=%q>\n", group.Name(), group.Description()))
		tools := group.Tools()
		toolNames := make([]string, 0, len(tools))
		for tn := range tools {
			toolNames = append(toolNames, tn)
		}
		sort.Strings(toolNames)
		for _, tn := range toolNames {
			tool := tools[tn]
			schemaStr := "schema_error"
			if b, err := json.Marshal(tool.InputSchema()); err == nil {
				schemaStr = string(b)
			} else {
				log.Printf("toolkit: marshal schema for %s.%s: %v", group.Name(), tool.Name(), err)
			}
			sb.WriteString(fmt.Sprintf("<tool name=%q description=%q><input_schema>%s</input_schema></tool>\n", tool.Name(), tool.Description(), schemaStr))
		}
		sb.WriteString("</group>\n")
	}
	sb.WriteString("</toolkit>")
	return sb.String()
}

func (t *Toolkit) groupNames() []string {
	names := make([]string, 0, len(t.groups))
	for name := range t.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses a raw invocation payload and runs every addressed tool.
// Routing failures (unparseable payload, unknown group) are reported inside
// the Result so the model always receives a structurally valid response; the
// returned error additionally flags payloads that could not be processed at
// all.
func (t *Toolkit) Dispatch(ctx context.Context, input json.RawMessage) (Result, error) {
	var inv Invocation
	if err := json.Unmarshal(input, &inv); err != nil {
		log.Printf("toolkit: invalid invocation payload: %v", err)
		errResult := Result{
			Name: t.name,
			Groups: []GroupResult{{
				Name: "_invocation_error",
				Tools: []ToolResult{
					{Name: "_parse", Output: NewError("invalid_invocation_json", err.Error())},
				},
			}},
		}
		return errResult, fmt.Errorf("parse invocation: %w", err)
	}
	return t.dispatch(ctx, inv)
}

func (t *Toolkit) dispatch(ctx context.Context, inv Invocation) (Result, error) {
	result := Result{Name: t.name}

	if len(inv.Groups) == 0 {
		return result, NewError("no_groups", "no tool groups addressed in the invocation")
	}

	for _, call := range inv.Groups {
		group, ok := t.groups[call.Name]
		if !ok {
			log.Printf("toolkit: group %q not registered", call.Name)
			result.Add(GroupResult{
				Name: call.Name,
				Tools: []ToolResult{
					{Name: "_group", Output: NewError("group_not_found", fmt.Sprintf("tool group %q is not registered", call.Name))},
				},
			})
			continue
		}
		result.Add(group.Handle(ctx, call.Tools, t.observer))
	}
	return result, nil
}
