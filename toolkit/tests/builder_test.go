package tests

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wearlab/tryon-agent/toolkit"
)

type greetArgs struct {
	Name string `json:"name" jsonschema:"required,description=Who to greet."`
}

func greetTool() toolkit.Tool {
	return toolkit.NewTool("greet", "Greets by name.",
		func(ctx context.Context, args greetArgs) (interface{}, error) {
			return "hello " + args.Name, nil
		})
}

func failTool(err error) toolkit.Tool {
	return toolkit.NewTool("fail", "Always fails.",
		func(ctx context.Context, args struct{}) (interface{}, error) {
			return nil, err
		})
}

func TestTypedToolHandlesArguments(t *testing.T) {
	tool := greetTool()

	out, err := tool.Handle(context.Background(), json.RawMessage(`{"name":"ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello ada", out)
}

func TestTypedToolRejectsMalformedArguments(t *testing.T) {
	tool := greetTool()

	_, err := tool.Handle(context.Background(), json.RawMessage(`{"name":42}`))
	require.Error(t, err)
	var tkErr toolkit.Error
	require.ErrorAs(t, err, &tkErr)
	assert.Equal(t, "invalid_arguments", tkErr.Code)
}

func TestTypedToolWrapsUntypedErrors(t *testing.T) {
	tool := failTool(errors.New("disk on fire"))

	_, err := tool.Handle(context.Background(), nil)
	var tkErr toolkit.Error
	require.ErrorAs(t, err, &tkErr)
	assert.Equal(t, "handler_execution_error", tkErr.Code)
	assert.Contains(t, tkErr.Message, "disk on fire")
}

func TestTypedToolPreservesStructuredErrors(t *testing.T) {
	tool := failTool(toolkit.NewError("rate_limited", "retry in 3.0 seconds"))

	_, err := tool.Handle(context.Background(), nil)
	var tkErr toolkit.Error
	require.ErrorAs(t, err, &tkErr)
	assert.Equal(t, "rate_limited", tkErr.Code)
}

func TestToolSchemaHonorsTags(t *testing.T) {
	tool := greetTool()

	raw, err := json.Marshal(tool.InputSchema())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name"`)
	assert.Contains(t, string(raw), "Who to greet.")
	assert.Contains(t, string(raw), `"required"`)
}

func TestGroupIsolatesFailures(t *testing.T) {
	group := toolkit.NewGroup("demo", "Demo group.",
		greetTool(),
		failTool(errors.New("boom")),
	)

	result := group.Handle(context.Background(), []toolkit.ToolCall{
		{Name: "fail"},
		{Name: "greet", Args: json.RawMessage(`{"name":"bob"}`)},
		{Name: "missing"},
	}, nil)

	require.Len(t, result.Tools, 3)

	failOut, ok := result.Tools[0].Output.(toolkit.Error)
	require.True(t, ok)
	assert.Equal(t, "handler_execution_error", failOut.Code)

	assert.Equal(t, "hello bob", result.Tools[1].Output)

	missingOut, ok := result.Tools[2].Output.(toolkit.Error)
	require.True(t, ok)
	assert.Equal(t, "tool_not_found", missingOut.Code)
}

type recordingObserver struct {
	calls []string
	errs  []error
}

func (o *recordingObserver) ToolHandled(group, tool string, err error, _ time.Duration) {
	o.calls = append(o.calls, group+"."+tool)
	o.errs = append(o.errs, err)
}

func TestGroupNotifiesObserver(t *testing.T) {
	group := toolkit.NewGroup("demo", "Demo group.",
		greetTool(),
		failTool(errors.New("boom")),
	)
	obs := &recordingObserver{}

	group.Handle(context.Background(), []toolkit.ToolCall{
		{Name: "greet", Args: json.RawMessage(`{"name":"eve"}`)},
		{Name: "fail"},
		{Name: "missing"},
	}, obs)

	require.Equal(t, []string{"demo.greet", "demo.fail", "demo.missing"}, obs.calls)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
	assert.Error(t, obs.errs[2])
}
