// Package fitting is the try-on orchestrator: it composes the artifact
// store, versioned namer, catalog, rate limiter and image generator into the
// guarded operations the agent's tools expose, and owns the session's
// try-on records.
package fitting

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError reports referenced filenames that could not be resolved to
// an existing artifact, catalog entry, or try-on record.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", strings.Join(e.Names, ", "))
}

// RateLimitedError reports a rejected acquisition of the generation gate.
// Wait is how long until the limiter is ready again; the caller surfaces it
// and decides whether to retry.
type RateLimitedError struct {
	Wait time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: ready in %.1fs", e.Wait.Seconds())
}

// WaitSeconds returns the remaining wait as float seconds.
func (e *RateLimitedError) WaitSeconds() float64 {
	return e.Wait.Seconds()
}

// GenerationError wraps a failure of the external image-generation call.
// By the time it is returned the cooldown slot is already consumed; that is
// deliberate, a failed expensive call still counts against the gate.
type GenerationError struct {
	cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.cause)
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// TimeoutError reports that the generation call exceeded its deadline.
// Distinct from GenerationError so callers can phrase it differently; the
// cooldown is consumed either way.
type TimeoutError struct {
	cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("image generation timed out: %v", e.cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.cause
}

// ErrNoMultiviewSet is returned by BatchTryOn when no multiview set has been
// generated in this session yet.
var ErrNoMultiviewSet = errors.New("no multiview set generated yet")
