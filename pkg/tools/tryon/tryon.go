// Package tryon exposes the generation-side tools: single and batch virtual
// try-on, multiview generation, result listing and comparison, and the rate
// limiter's status.
package tryon

import (
	"context"
	"errors"
	"log"

	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/tools/toolerr"
	"github.com/wearlab/tryon-agent/toolkit"
)

// Tools bundles the try-on tools around the orchestrator.
type Tools struct {
	service *fitting.Service
}

// New builds the try-on tools over service.
func New(service *fitting.Service) (*Tools, error) {
	if service == nil {
		return nil, errors.New("tryon: service is required")
	}
	return &Tools{service: service}, nil
}

// Group assembles the tools under the "tryon" namespace.
func (t *Tools) Group() toolkit.Group {
	return toolkit.NewGroup(
		"tryon",
		"Runs virtual try-ons and manages their results. Generation calls are rate limited; a rejected call reports how long to wait.",
		toolkit.NewTool("virtual_tryon",
			"Generates an image of the person wearing the garment. Person must be an uploaded reference image; garment may be uploaded or from the catalog.",
			t.VirtualTryOn),
		toolkit.NewTool("list_tryon_results",
			"Lists every try-on result with its version and the person/garment pair that produced it.",
			t.ListTryOnResults),
		toolkit.NewTool("compare_tryon_results",
			"Returns the person/garment linkage of the named results in version order, for side-by-side comparison.",
			t.CompareTryOnResults),
		toolkit.NewTool("get_comparison_summary",
			"Summarizes all try-on results: total, per-garment grouping, and the latest result.",
			t.GetComparisonSummary),
		toolkit.NewTool("clear_tryon_results",
			"Deletes every try-on result and its records. Requires confirm=true; without it only a warning is returned.",
			t.ClearTryOnResults),
		toolkit.NewTool("get_rate_limit_status",
			"Reports the generation rate limiter: state, cooldown, time until ready, and total calls made.",
			t.GetRateLimitStatus),
		toolkit.NewTool("generate_multiview_person",
			"Generates side (90°) and back (180°) views from a front-view person image. Takes two generation calls and waits out the cooldown between them.",
			t.GenerateMultiviewPerson),
		toolkit.NewTool("batch_multiview_tryon",
			"Tries one garment on every view of the latest multiview set, waiting out the cooldown between views.",
			t.BatchMultiviewTryOn),
	)
}

func parseGarmentType(s string) (fitting.GarmentType, error) {
	gt, err := fitting.ParseGarmentType(s)
	if err != nil {
		return "", toolkit.NewError("invalid_arguments", err.Error())
	}
	return gt, nil
}

// VirtualTryOn runs one guarded try-on.
func (t *Tools) VirtualTryOn(ctx context.Context, args VirtualTryOnArgs) (interface{}, error) {
	log.Printf("tryon: virtual_tryon person=%s garment=%s type=%s", args.PersonImageFilename, args.GarmentFilename, args.GarmentType)
	gt, err := parseGarmentType(args.GarmentType)
	if err != nil {
		return nil, err
	}
	result, err := t.service.VirtualTryOn(ctx, fitting.TryOnParams{
		PersonImage:  args.PersonImageFilename,
		Garment:      args.GarmentFilename,
		GarmentType:  gt,
		Instructions: args.AdditionalInstructions,
	})
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return result, nil
}

// ListTryOnResults lists stored results with their linkage.
func (t *Tools) ListTryOnResults(ctx context.Context, _ ListTryOnResultsArgs) (interface{}, error) {
	log.Println("tryon: list_tryon_results")
	list, err := t.service.ListResults(ctx)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return list, nil
}

// CompareTryOnResults returns the records of the named results.
func (t *Tools) CompareTryOnResults(ctx context.Context, args CompareTryOnResultsArgs) (interface{}, error) {
	log.Printf("tryon: compare_tryon_results %v", args.ResultFilenames)
	if len(args.ResultFilenames) == 0 {
		return nil, toolkit.NewError("invalid_arguments", "result_filenames must not be empty")
	}
	records, err := t.service.Compare(args.ResultFilenames)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return CompareResponse{Records: records}, nil
}

// GetComparisonSummary summarizes the session's results.
func (t *Tools) GetComparisonSummary(ctx context.Context, _ GetComparisonSummaryArgs) (interface{}, error) {
	log.Println("tryon: get_comparison_summary")
	return t.service.Summarize(), nil
}

// ClearTryOnResults deletes results and records once confirmed.
func (t *Tools) ClearTryOnResults(ctx context.Context, args ClearTryOnResultsArgs) (interface{}, error) {
	log.Printf("tryon: clear_tryon_results confirm=%v", args.Confirm)
	if !args.Confirm {
		return ClearResponse{
			Warning: "This deletes every try-on result and its history and cannot be undone. Repeat the call with confirm=true to proceed.",
		}, nil
	}
	deleted, err := t.service.ClearResults(ctx)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return ClearResponse{Cleared: true, Deleted: deleted}, nil
}

// GetRateLimitStatus reports the limiter snapshot.
func (t *Tools) GetRateLimitStatus(ctx context.Context, _ GetRateLimitStatusArgs) (interface{}, error) {
	log.Println("tryon: get_rate_limit_status")
	st := t.service.RateLimitStatus()
	resp := RateLimitStatusResponse{
		State:             string(st.State),
		CooldownSeconds:   st.Cooldown.Seconds(),
		SecondsUntilReady: st.UntilReady.Seconds(),
		TotalCalls:        st.TotalAccepted,
	}
	if st.HasPrior {
		since := st.SinceLast.Seconds()
		resp.SecondsSinceLast = &since
	}
	return resp, nil
}

// GenerateMultiviewPerson builds a front/side/back set from one image.
func (t *Tools) GenerateMultiviewPerson(ctx context.Context, args GenerateMultiviewPersonArgs) (interface{}, error) {
	log.Printf("tryon: generate_multiview_person %s", args.PersonImageFilename)
	set, err := t.service.GenerateMultiview(ctx, args.PersonImageFilename)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return set, nil
}

// BatchMultiviewTryOn tries one garment on every available view.
func (t *Tools) BatchMultiviewTryOn(ctx context.Context, args BatchMultiviewTryOnArgs) (interface{}, error) {
	log.Printf("tryon: batch_multiview_tryon garment=%s", args.GarmentFilename)
	gt, err := parseGarmentType(args.GarmentType)
	if err != nil {
		return nil, err
	}
	batch, err := t.service.BatchTryOn(ctx, args.GarmentFilename, gt)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return batch, nil
}
