package toolerr

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/imaging"
	"github.com/wearlab/tryon-agent/toolkit"
)

func asToolkitError(t *testing.T, err error) toolkit.Error {
	t.Helper()
	var tkErr toolkit.Error
	require.True(t, errors.As(err, &tkErr), "expected toolkit.Error, got %T", err)
	return tkErr
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil))
}

func TestWrapDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", &fitting.NotFoundError{Names: []string{"reference_image_v3.png"}}, CodeNotFound},
		{"invalid image", &imaging.InvalidImageError{Reason: "undecodable"}, CodeInvalidImage},
		{"rate limited", &fitting.RateLimitedError{Wait: 3 * time.Second}, CodeRateLimited},
		{"no multiview", fitting.ErrNoMultiviewSet, CodeNoMultiviewSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tkErr := asToolkitError(t, Wrap(tt.err))
			assert.Equal(t, tt.code, tkErr.Code)
			assert.NotEmpty(t, tkErr.Message)
		})
	}
}

func TestWrapRateLimitedCarriesWait(t *testing.T) {
	tkErr := asToolkitError(t, Wrap(&fitting.RateLimitedError{Wait: 2500 * time.Millisecond}))
	assert.Contains(t, tkErr.Message, "2.5 seconds")
}

func TestWrapPassesThroughToolkitErrors(t *testing.T) {
	orig := toolkit.NewError("invalid_arguments", "bad args")
	assert.Equal(t, orig, Wrap(orig))
}

func TestWrapLeavesUnknownErrorsAlone(t *testing.T) {
	plain := errors.New("disk full")
	assert.Equal(t, plain, Wrap(plain))
}
