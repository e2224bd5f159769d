// Package agent runs the Claude conversation loop around the toolkit. The
// model sees the whole toolkit as a single tool; every tool_use payload is
// routed through Toolkit.Dispatch and fed back as a tool result.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/toolkit"
)

// DefaultMaxTurns bounds the tool-use loop for a single user message.
const DefaultMaxTurns = 8

// Config collects everything an Agent needs.
type Config struct {
	// APIKey is the Anthropic API key. Required.
	APIKey string

	// Model overrides the conversational model. Empty uses the default.
	Model anthropic.Model

	// Toolkit is the registered tool surface. Required.
	Toolkit *toolkit.Toolkit

	// Service handles uploads, which enter through the Agent rather than
	// through a tool. Required.
	Service *fitting.Service

	// MaxTurns bounds the tool-use loop per Send. Zero uses DefaultMaxTurns.
	MaxTurns int
}

// Agent holds one conversation with the model. Not safe for concurrent use;
// run one Agent per session.
type Agent struct {
	client   *anthropic.Client
	params   anthropic.MessageNewParams
	tk       *toolkit.Toolkit
	service  *fitting.Service
	history  []anthropic.MessageParam
	session  string
	maxTurns int
}

// New builds an Agent from cfg.
func New(cfg Config) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("agent: API key is required")
	}
	if cfg.Toolkit == nil {
		return nil, errors.New("agent: toolkit is required")
	}
	if cfg.Service == nil {
		return nil, errors.New("agent: service is required")
	}
	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaude3_7Sonnet20250219
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(model),
		MaxTokens: anthropic.Int(2000),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemPrompt),
		}),
		Tools: anthropic.F([]anthropic.ToolUnionUnionParam{
			toolkitParam(cfg.Toolkit),
		}),
		Temperature: anthropic.Float(0.5),
		ToolChoice: anthropic.F[anthropic.ToolChoiceUnionParam](anthropic.ToolChoiceAutoParam{
			Type: anthropic.F(anthropic.ToolChoiceAutoTypeAuto),
		}),
	}

	return &Agent{
		client:   anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		params:   params,
		tk:       cfg.Toolkit,
		service:  cfg.Service,
		session:  uuid.NewString(),
		maxTurns: maxTurns,
	}, nil
}

// SessionID identifies this conversation in logs.
func (a *Agent) SessionID() string {
	return a.session
}

// Upload runs an image through intake and tells the model about it, so the
// next Send can refer to the new reference image by name.
func (a *Agent) Upload(ctx context.Context, data []byte) (fitting.IntakeResult, error) {
	res, err := a.service.Intake(ctx, data)
	if err != nil {
		return fitting.IntakeResult{}, err
	}
	note := fmt.Sprintf("[system note] The user uploaded a photo. It was saved as %s (%dx%d, ratio check: %s).",
		res.Saved.Filename, res.Ratio.WidthPx, res.Ratio.HeightPx, res.Ratio.Classification)
	a.history = append(a.history, anthropic.NewUserMessage(anthropic.NewTextBlock(note)))
	return res, nil
}

// Send appends the user message, runs the tool-use loop until the model
// answers in text or the turn budget runs out, and returns the final text.
func (a *Agent) Send(ctx context.Context, text string) (string, error) {
	a.history = append(a.history, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	var finalText string
	for turn := 0; turn < a.maxTurns; turn++ {
		a.params.Messages = anthropic.F(a.history)
		response, err := a.client.Messages.New(ctx, a.params)
		if err != nil {
			return "", fmt.Errorf("message turn %d: %w", turn+1, err)
		}
		log.Printf("agent %s: turn %d, in=%d out=%d tokens",
			a.session, turn+1, response.Usage.InputTokens, response.Usage.OutputTokens)
		a.history = append(a.history, response.ToParam())

		toolUsed := false
		var textInTurn string
		for _, block := range response.Content {
			switch b := block.AsUnion().(type) {
			case anthropic.TextBlock:
				textInTurn = b.Text
			case anthropic.ToolUseBlock:
				toolUsed = true
				a.history = append(a.history, a.runTool(ctx, b))
			}
		}

		if !toolUsed {
			finalText = textInTurn
			return finalText, nil
		}
	}
	return "", fmt.Errorf("no final answer within %d turns", a.maxTurns)
}

// runTool dispatches one tool_use block and wraps the outcome as a tool
// result message. Dispatch errors still carry a structured Result, so the
// model always sees what went wrong.
func (a *Agent) runTool(ctx context.Context, block anthropic.ToolUseBlock) anthropic.MessageParam {
	log.Printf("agent %s: tool_use %s", a.session, block.Name)

	result, dispatchErr := a.tk.Dispatch(ctx, block.Input)
	payload, marshalErr := json.Marshal(result)

	var resultBlock anthropic.ToolResultBlockParam
	switch {
	case marshalErr != nil:
		log.Printf("agent %s: marshal tool result: %v", a.session, marshalErr)
		resultBlock = anthropic.NewToolResultBlock(block.ID, fmt.Sprintf("failed to encode tool result: %v", marshalErr), true)
	case dispatchErr != nil:
		log.Printf("agent %s: dispatch: %v", a.session, dispatchErr)
		resultBlock = anthropic.NewToolResultBlock(block.ID, string(payload), true)
	default:
		resultBlock = anthropic.NewToolResultBlock(block.ID, string(payload), false)
	}

	return anthropic.MessageParam{
		Role:    anthropic.F(anthropic.MessageParamRoleUser),
		Content: anthropic.F([]anthropic.ContentBlockParamUnion{resultBlock}),
	}
}

func toolkitParam(tk *toolkit.Toolkit) anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        anthropic.F(tk.Name()),
		Description: anthropic.F(tk.Description()),
		InputSchema: anthropic.F(tk.Schema("anthropic")),
	}
}
