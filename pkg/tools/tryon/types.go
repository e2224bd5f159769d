package tryon

import (
	"github.com/wearlab/tryon-agent/pkg/fitting"
)

// VirtualTryOnArgs are the arguments of one try-on call.
type VirtualTryOnArgs struct {
	PersonImageFilename    string `json:"person_image_filename" jsonschema:"required,description=Filename of the person image (e.g. 'reference_image_v1.png')."`
	GarmentFilename        string `json:"garment_filename" jsonschema:"required,description=Garment reference: an uploaded artifact filename or a catalog reference like 'catalog/dress.png'."`
	GarmentType            string `json:"garment_type" jsonschema:"description=Garment type: 'short-sleeve' 'long-sleeve' 'sleeveless' 'dress' 'jacket' or 'auto' (default)."`
	AdditionalInstructions string `json:"additional_instructions" jsonschema:"description=Optional extra instructions for the generation."`
}

// ListTryOnResultsArgs takes no parameters.
type ListTryOnResultsArgs struct{}

// CompareTryOnResultsArgs names the results to compare.
type CompareTryOnResultsArgs struct {
	ResultFilenames []string `json:"result_filenames" jsonschema:"required,description=Result filenames to compare (e.g. ['tryon_result_v1.png','tryon_result_v2.png'])."`
}

// CompareResponse lists the factual linkage of each compared result in
// ascending version order. Judging which looks best is the model's job.
type CompareResponse struct {
	Records []fitting.TryOnRecord `json:"records"`
}

// GetComparisonSummaryArgs takes no parameters.
type GetComparisonSummaryArgs struct{}

// ClearTryOnResultsArgs controls the two-phase clear.
type ClearTryOnResultsArgs struct {
	Confirm bool `json:"confirm" jsonschema:"description=Set true to actually delete every try-on result. A call without confirm only returns a warning."`
}

// ClearResponse reports a clear attempt.
type ClearResponse struct {
	Cleared bool   `json:"cleared"`
	Deleted int    `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

// GetRateLimitStatusArgs takes no parameters.
type GetRateLimitStatusArgs struct{}

// RateLimitStatusResponse is the user-facing limiter snapshot.
type RateLimitStatusResponse struct {
	State             string   `json:"state"`
	CooldownSeconds   float64  `json:"cooldownSeconds"`
	SecondsSinceLast  *float64 `json:"secondsSinceLast,omitempty"` // absent before the first call
	SecondsUntilReady float64  `json:"secondsUntilReady"`
	TotalCalls        int64    `json:"totalCalls"`
}

// GenerateMultiviewPersonArgs names the front-view source image.
type GenerateMultiviewPersonArgs struct {
	PersonImageFilename string `json:"person_image_filename" jsonschema:"required,description=Front-view person image to generate side and back views from."`
}

// BatchMultiviewTryOnArgs runs one garment over the latest multiview set.
type BatchMultiviewTryOnArgs struct {
	GarmentFilename string `json:"garment_filename" jsonschema:"required,description=Garment reference: an uploaded artifact filename or a catalog reference like 'catalog/dress.png'."`
	GarmentType     string `json:"garment_type" jsonschema:"description=Garment type: 'short-sleeve' 'long-sleeve' 'sleeveless' 'dress' 'jacket' or 'auto' (default)."`
}
