// Package garments exposes the static catalog: listing the garments and
// selecting one for try-on.
package garments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/wearlab/tryon-agent/pkg/catalog"
	"github.com/wearlab/tryon-agent/pkg/fitting"
	"github.com/wearlab/tryon-agent/pkg/tools/toolerr"
	"github.com/wearlab/tryon-agent/toolkit"
)

// Tools bundles the catalog tools and their dependencies.
type Tools struct {
	catalog *catalog.Catalog
	service *fitting.Service
}

// New builds the garment tools over the catalog and the orchestrator (used
// for the decoded-dimensions part of a selection).
func New(cat *catalog.Catalog, service *fitting.Service) (*Tools, error) {
	if cat == nil {
		return nil, errors.New("garments: catalog is required")
	}
	if service == nil {
		return nil, errors.New("garments: service is required")
	}
	return &Tools{catalog: cat, service: service}, nil
}

// Group assembles the tools under the "garments" namespace.
func (t *Tools) Group() toolkit.Group {
	return toolkit.NewGroup(
		"garments",
		"Browses and selects garments from the static catalog. Garments cannot be uploaded, only selected.",
		toolkit.NewTool("list_catalog_clothes",
			"Lists every garment in the catalog with id, filename, display name and size.",
			t.ListCatalogClothes),
		toolkit.NewTool("select_catalog_cloth",
			"Selects a garment by id or filename and returns its image properties plus the reference to use with virtual_tryon.",
			t.SelectCatalogCloth),
	)
}

// ListCatalogClothes lists the catalog in id order.
func (t *Tools) ListCatalogClothes(ctx context.Context, _ ListCatalogClothesArgs) (interface{}, error) {
	log.Println("garments: list_catalog_clothes")
	entries := t.catalog.List()
	return CatalogListResponse{Entries: entries, Total: len(entries)}, nil
}

// SelectCatalogCloth resolves an identifier to a catalog entry. Unknown
// identifiers fail with not_found and name the available garments so the
// model can correct itself without another list call.
func (t *Tools) SelectCatalogCloth(ctx context.Context, args SelectCatalogClothArgs) (interface{}, error) {
	log.Printf("garments: select_catalog_cloth %q", args.Identifier)
	entry, ok := t.catalog.Get(args.Identifier)
	if !ok {
		available := make([]string, 0, t.catalog.Len())
		for _, e := range t.catalog.List() {
			available = append(available, fmt.Sprintf("%d. %s", e.ID, e.Filename))
		}
		return nil, toolkit.NewError(toolerr.CodeNotFound,
			fmt.Sprintf("garment %q not found; available: %s", args.Identifier, strings.Join(available, ", ")))
	}

	ref := "catalog/" + entry.Filename
	check, err := t.service.CheckRatio(ctx, ref)
	if err != nil {
		return nil, toolerr.Wrap(err)
	}
	return SelectResponse{Entry: entry, Image: check.Report, TryOnGarment: ref}, nil
}
