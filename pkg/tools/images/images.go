// Package images holds the reference-image management tools: listing
// uploads, the advisory ratio check, and the confirmed clear.
package images

import (
	"context"
	"errors"
	"log"

	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/tools/toolerr"
	"github.com/wearlab/tryon-agent/toolkit"
)

// Tools bundles the image tools around their single dependency.
type Tools struct {
	service *fitting.Service
}

// New builds the image tools over service.
func New(service *fitting.Service) (*Tools, error) {
	if service == nil {
		return nil, errors.New("images: service is required")
	}
	return &Tools{service: service}, nil
}

// Group assembles the tools under the "images" namespace.
func (t *Tools) Group() toolkit.Group {
	return toolkit.NewGroup(
		"images",
		"Manages the person reference images uploaded in this session.",
		toolkit.NewTool("list_reference_images",
			"Lists every uploaded reference image with version, size and readiness for try-on.",
			t.ListReferenceImages),
		toolkit.NewTool("check_image_ratio",
			"Checks how close a stored image's aspect ratio is to the 9:16 portrait target. Advisory only.",
			t.CheckImageRatio),
		toolkit.NewTool("clear_reference_images",
			"Deletes every uploaded reference image. Requires confirm=true; without it only a warning is returned.",
			t.ClearReferenceImages),
	)
}

// ListReferenceImages lists the stored reference images.
func (t *Tools) ListReferenceImages(ctx context.Context, _ ListReferenceImagesArgs) (interface{}, error) {
	log.Println("images: list_reference_images")
	list, err := t.service.ListReferences(ctx)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return list, nil
}

// CheckImageRatio runs the aspect-ratio validator against a stored image.
func (t *Tools) CheckImageRatio(ctx context.Context, args CheckImageRatioArgs) (interface{}, error) {
	log.Printf("images: check_image_ratio %s", args.Filename)
	check, err := t.service.CheckRatio(ctx, args.Filename)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return check, nil
}

// ClearReferenceImages deletes every reference image once confirmed. The
// unconfirmed call is a warning, not an error, so the model can relay the
// confirmation question without treating the tool as failed.
func (t *Tools) ClearReferenceImages(ctx context.Context, args ClearReferenceImagesArgs) (interface{}, error) {
	log.Printf("images: clear_reference_images confirm=%v", args.Confirm)
	if !args.Confirm {
		return ClearResponse{
			Warning: "This deletes every uploaded reference image and cannot be undone. Repeat the call with confirm=true to proceed.",
		}, nil
	}
	deleted, err := t.service.ClearReferences(ctx)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return ClearResponse{Cleared: true, Deleted: deleted}, nil
}
