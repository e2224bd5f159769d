// Request/response structures, error values, and schema generation for the
// toolkit framework.
package toolkit

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// --- Invocation request structures ---

// Invocation is the top-level shape of one toolkit request. A model (or any
// external client) may address several groups, and several tools per group,
// in a single invocation; they run in request order.
type Invocation struct {
	Name   string      `json:"name" jsonschema:"required,description=The name of the toolkit being invoked."`
	Groups []GroupCall `json:"groups" jsonschema:"required,description=The tool groups to execute within the toolkit."`
}

// GroupCall addresses one registered Group and carries the tool calls to run
// under it.
type GroupCall struct {
	Name  string     `json:"name" jsonschema:"required,description=The name of the tool group to execute."`
	Tools []ToolCall `json:"tools" jsonschema:"required,description=The tools to execute within this group."`
}

// ToolCall is a single tool invocation. Args stays raw JSON so the addressed
// tool can unmarshal it into its own argument struct.
type ToolCall struct {
	Name string          `json:"name" jsonschema:"required,description=The name of the tool to execute."`
	Args json.RawMessage `json:"args" jsonschema:"required,description=The arguments for the tool, as a JSON object."`
}

// --- Result structures ---

// Result mirrors the Invocation hierarchy: one GroupResult per addressed
// group, in request order.
type Result struct {
	Name   string        `json:"name"`
	Groups []GroupResult `json:"groups,omitempty"`
}

// GroupResult carries the results of every tool call addressed to one group,
// in request order.
type GroupResult struct {
	Name  string       `json:"name"`
	Tools []ToolResult `json:"tools,omitempty"`
}

// ToolResult holds the outcome of one tool call. Output is either the
// handler's success payload or an Error; the structure is identical either
// way so the model can consume mixed outcomes uniformly.
type ToolResult struct {
	Name   string      `json:"name"`
	Output interface{} `json:"output,omitempty"`
}

// --- Errors ---

// Error is the framework's structured error: a stable machine-readable code
// plus a human-readable message. Tool handlers return Error values so the
// error kind survives the trip through the model.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an Error with the given code and message.
//
// Framework-reserved codes:
//   - "invalid_arguments": tool arguments did not unmarshal into the schema
//   - "handler_execution_error": a handler failed with an untyped error
//   - "tool_not_found": the addressed tool is not registered in its group
//   - "group_not_found": the addressed group is not registered
//   - "invalid_invocation_json": the invocation payload did not parse
func NewError(code, message string) error {
	return Error{Code: code, Message: message}
}

// --- Result helpers ---

// Add appends a GroupResult.
func (r *Result) Add(gr GroupResult) {
	r.Groups = append(r.Groups, gr)
}

// Add appends a ToolResult.
func (gr *GroupResult) Add(tr ToolResult) {
	gr.Tools = append(gr.Tools, tr)
}

// --- Schema generation ---

// GenerateSchema reflects a JSON schema from the argument struct T. The
// schema honors `jsonschema:"required,description=..."` tags and is kept
// self-contained (no $ref) so it can be handed directly to an LLM provider's
// tool-registration API.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	return reflector.Reflect(&v)
}

// InvocationSchema returns the schema for the top-level Invocation request,
// used when registering the whole toolkit as a single tool.
func InvocationSchema() interface{} {
	return GenerateSchema[Invocation]()
}
