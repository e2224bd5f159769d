// Package imaging inspects uploaded image bytes and classifies how close
// their aspect ratio comes to the portrait frame the try-on model was tuned
// for (9:16). The check is advisory: a poor ratio never blocks an upload,
// only undecodable bytes are a hard error.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Classification buckets how far an image's ratio sits from the target.
type Classification string

const (
	// ClassExact: within the exact tolerance of the target ratio.
	ClassExact Classification = "exact"
	// ClassAcceptable: outside exact but within the acceptable tolerance.
	ClassAcceptable Classification = "acceptable"
	// ClassWarn: outside the acceptable tolerance. Still advisory.
	ClassWarn Classification = "warn"
)

// Report is the outcome of one ratio check.
type Report struct {
	WidthPx        int            `json:"widthPx"`
	HeightPx       int            `json:"heightPx"`
	Format         string         `json:"format"`
	Ratio          float64        `json:"ratio"`
	TargetRatio    float64        `json:"targetRatio"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
}

// InvalidImageError reports bytes that could not be decoded as an image.
type InvalidImageError struct {
	Reason string
	cause  error
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image: %s", e.Reason)
}

func (e *InvalidImageError) Unwrap() error {
	return e.cause
}

// Validator holds the target frame and tolerance thresholds. The zero value
// is not usable; construct with NewValidator.
type Validator struct {
	targetW   int
	targetH   int
	exactPct  float64
	acceptPct float64
}

// Default thresholds: exact within 2% of 9:16, acceptable within 15%.
const (
	DefaultExactTolerancePct      = 2.0
	DefaultAcceptableTolerancePct = 15.0
)

// NewValidator builds a Validator for a targetW:targetH frame with the given
// percentage tolerances.
func NewValidator(targetW, targetH int, exactPct, acceptPct float64) (Validator, error) {
	if targetW <= 0 || targetH <= 0 {
		return Validator{}, fmt.Errorf("target frame %dx%d must be positive", targetW, targetH)
	}
	if exactPct < 0 || acceptPct < 0 || exactPct > acceptPct {
		return Validator{}, fmt.Errorf("tolerances %.1f%%/%.1f%% must satisfy 0 <= exact <= acceptable", exactPct, acceptPct)
	}
	return Validator{targetW: targetW, targetH: targetH, exactPct: exactPct, acceptPct: acceptPct}, nil
}

// DefaultValidator targets 9:16 portrait with the default tolerances.
func DefaultValidator() Validator {
	v, err := NewValidator(9, 16, DefaultExactTolerancePct, DefaultAcceptableTolerancePct)
	if err != nil {
		panic(err) // constants above are valid
	}
	return v
}

// TargetRatio returns width/height of the target frame.
func (v Validator) TargetRatio() float64 {
	return float64(v.targetW) / float64(v.targetH)
}

// Validate decodes the image header and classifies the aspect ratio. It
// returns *InvalidImageError when the bytes are not a decodable image;
// every decodable image yields a Report, however far off the ratio is.
func (v Validator) Validate(data []byte) (Report, error) {
	if len(data) == 0 {
		return Report{}, &InvalidImageError{Reason: "empty image data"}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Report{}, &InvalidImageError{Reason: "undecodable image bytes", cause: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Report{}, &InvalidImageError{Reason: fmt.Sprintf("degenerate dimensions %dx%d", cfg.Width, cfg.Height)}
	}

	target := v.TargetRatio()
	ratio := float64(cfg.Width) / float64(cfg.Height)
	deviationPct := (ratio/target - 1) * 100
	if deviationPct < 0 {
		deviationPct = -deviationPct
	}

	report := Report{
		WidthPx:     cfg.Width,
		HeightPx:    cfg.Height,
		Format:      format,
		Ratio:       ratio,
		TargetRatio: target,
	}
	switch {
	case deviationPct <= v.exactPct:
		report.Classification = ClassExact
		report.Message = fmt.Sprintf("%dx%d matches the %d:%d target ratio (%.1f%% off)", cfg.Width, cfg.Height, v.targetW, v.targetH, deviationPct)
	case deviationPct <= v.acceptPct:
		report.Classification = ClassAcceptable
		report.Message = fmt.Sprintf("%dx%d is close to the %d:%d target ratio (%.1f%% off); results may be lightly cropped", cfg.Width, cfg.Height, v.targetW, v.targetH, deviationPct)
	default:
		report.Classification = ClassWarn
		report.Message = fmt.Sprintf("%dx%d is far from the %d:%d target ratio (%.1f%% off); consider a portrait crop for best results", cfg.Width, cfg.Height, v.targetW, v.targetH, deviationPct)
	}
	return report, nil
}
