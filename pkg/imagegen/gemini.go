package imagegen

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the image-capable Gemini model used for try-on and
// multiview generation.
const DefaultGeminiModel = "gemini-2.5-flash-image-preview"

// Gemini generates images through the Google Generative AI API. Source
// images are sent as inline PNG parts ahead of the prompt; the first inline
// image part of the response is the result.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini dials the API with the given key. An empty model selects
// DefaultGeminiModel. Close the returned client when done.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key must not be empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
	model := g.client.GenerativeModel(g.model)

	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.ImageData("png", img))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini generate: empty response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return blob.Data, nil
		}
	}
	return nil, errors.New("gemini generate: response contains no image data")
}
