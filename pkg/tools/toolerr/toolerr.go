// Package toolerr translates the orchestrator's typed errors into stable
// toolkit error codes. Every tool handler funnels its failures through Wrap
// so no error kind is lost on the way to the model.
package toolerr

import (
	"errors"
	"fmt"

	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/imaging"
	"github.com/wearlab/tryon-agent/toolkit"
)

// Stable error codes surfaced to the agent layer.
const (
	CodeNotFound          = "not_found"
	CodeInvalidImage      = "invalid_image"
	CodeRateLimited       = "rate_limited"
	CodeGenerationFailed  = "generation_failed"
	CodeGenerationTimeout = "generation_timeout"
	CodeNoMultiviewSet    = "no_multiview_set"
)

// Wrap maps err onto a toolkit.Error with the matching code. Errors that
// are already toolkit.Error values pass through unchanged; unknown kinds
// are returned as-is and picked up by the framework's generic wrapping.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var tkErr toolkit.Error
	if errors.As(err, &tkErr) {
		return tkErr
	}

	var notFound *fitting.NotFoundError
	if errors.As(err, &notFound) {
		return toolkit.NewError(CodeNotFound, err.Error())
	}
	var invalid *imaging.InvalidImageError
	if errors.As(err, &invalid) {
		return toolkit.NewError(CodeInvalidImage, err.Error())
	}
	var limited *fitting.RateLimitedError
	if errors.As(err, &limited) {
		return toolkit.NewError(CodeRateLimited,
			fmt.Sprintf("generation is cooling down; retry in %.1f seconds", limited.WaitSeconds()))
	}
	var timeout *fitting.TimeoutError
	if errors.As(err, &timeout) {
		return toolkit.NewError(CodeGenerationTimeout, err.Error())
	}
	var generation *fitting.GenerationError
	if errors.As(err, &generation) {
		return toolkit.NewError(CodeGenerationFailed, err.Error())
	}
	if errors.Is(err, fitting.ErrNoMultiviewSet) {
		return toolkit.NewError(CodeNoMultiviewSet,
			"no multiview set exists yet; run generate_multiview_person first")
	}
	return err
}
