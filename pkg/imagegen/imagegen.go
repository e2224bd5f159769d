// Package imagegen abstracts the hosted image-generation API the try-on
// pipeline calls. The core only depends on the Generator interface; the
// Gemini implementation lives beside it, and tests substitute fakes.
package imagegen

import "context"

// Generator produces one image from a text prompt plus zero or more source
// images. The call is blocking and may take seconds; implementations must
// honor ctx cancellation and deadlines. No retries happen at this layer.
type Generator interface {
	Generate(ctx context.Context, prompt string, images ...[]byte) ([]byte, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, prompt string, images ...[]byte) ([]byte, error)

func (f Func) Generate(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
	return f(ctx, prompt, images...)
}
