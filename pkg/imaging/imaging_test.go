package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes encodes a blank image of the given dimensions.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestValidateExactPortrait(t *testing.T) {
	v := DefaultValidator()

	report, err := v.Validate(pngBytes(t, 1080, 1920))
	require.NoError(t, err)
	assert.Equal(t, ClassExact, report.Classification)
	assert.Equal(t, 1080, report.WidthPx)
	assert.Equal(t, 1920, report.HeightPx)
	assert.Equal(t, "png", report.Format)
	assert.InDelta(t, 0.5625, report.Ratio, 1e-9)
	assert.InDelta(t, 0.5625, report.TargetRatio, 1e-9)
}

func TestValidateAcceptableNearPortrait(t *testing.T) {
	v := DefaultValidator()

	// 1080x1800 -> ratio 0.6, ~6.7% off the 9:16 target.
	report, err := v.Validate(pngBytes(t, 1080, 1800))
	require.NoError(t, err)
	assert.Equal(t, ClassAcceptable, report.Classification)
}

func TestValidateWarnOnSquare(t *testing.T) {
	v := DefaultValidator()

	report, err := v.Validate(pngBytes(t, 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, ClassWarn, report.Classification)
	assert.NotEmpty(t, report.Message)
}

func TestValidateDecodesJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 900, 1600)), nil))

	report, err := DefaultValidator().Validate(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", report.Format)
	assert.Equal(t, ClassExact, report.Classification)
}

func TestValidateRejectsGarbage(t *testing.T) {
	v := DefaultValidator()

	var invalid *InvalidImageError
	_, err := v.Validate([]byte("definitely not an image"))
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid))

	_, err = v.Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid))
}

func TestNewValidatorRejectsBadInputs(t *testing.T) {
	_, err := NewValidator(0, 16, 2, 15)
	assert.Error(t, err)
	_, err = NewValidator(9, -1, 2, 15)
	assert.Error(t, err)
	_, err = NewValidator(9, 16, 15, 2) // exact wider than acceptable
	assert.Error(t, err)
	_, err = NewValidator(9, 16, -1, 15)
	assert.Error(t, err)
}
