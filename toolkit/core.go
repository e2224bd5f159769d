// Package toolkit is a hierarchical tool-dispatch framework for LLM-driven
// applications. A Toolkit registers named Groups, each Group owns named
// Tools, and a single model invocation may address any number of them at
// once. The framework handles schema generation for tool arguments, routing,
// per-tool error containment, and response aggregation, so individual tools
// only implement their own operation.
//
// This file defines the interfaces every Group and Tool must satisfy.
package toolkit

import (
	"context"
	"encoding/json"
	"time"
)

// Group is a named collection of related Tools. It acts as a namespace in
// invocation requests and runs the tool calls addressed to it. A failing
// tool must never abort its siblings: each failure becomes a structured
// Error inside that tool's result.
type Group interface {
	// Name returns the group's unique name within its Toolkit.
	Name() string

	// Description explains the group's purpose. It is embedded in the
	// toolkit description shown to the model.
	Description() string

	// Tools returns the group's tools keyed by name.
	Tools() map[string]Tool

	// Handle runs the given tool calls in order and returns one result per
	// call. ctx is passed through to every tool handler. obs may be nil;
	// when set it receives one callback per handled call.
	Handle(ctx context.Context, calls []ToolCall, obs Observer) GroupResult
}

// Tool is a single operation the model can invoke: a name, a description,
// a JSON schema for its arguments, and the handler itself.
type Tool interface {
	// Name returns the tool's unique name within its Group.
	Name() string

	// Description explains what the tool does, for the model's benefit.
	Description() string

	// InputSchema returns the JSON schema of the tool's argument struct.
	InputSchema() interface{}

	// Handle unmarshals raw JSON arguments, runs the operation, and returns
	// its result. Errors should be Error values so the model sees a stable
	// code; anything else is wrapped by the framework.
	Handle(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// Observer is notified once per handled tool call. err is nil on success.
// Implementations must be safe for concurrent use if the host dispatches
// invocations concurrently.
type Observer interface {
	ToolHandled(group, tool string, err error, elapsed time.Duration)
}
