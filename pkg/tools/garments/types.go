package garments

import (
	"github.com/wearlab/tryon-agent/pkg/catalog"
	"github.com/wearlab/tryon-agent/pkg/imaging"
)

// ListCatalogClothesArgs takes no parameters.
type ListCatalogClothesArgs struct{}

// CatalogListResponse enumerates the selectable garments.
type CatalogListResponse struct {
	Entries []catalog.Entry `json:"entries"`
	Total   int             `json:"total"`
}

// SelectCatalogClothArgs identifies one garment.
type SelectCatalogClothArgs struct {
	Identifier string `json:"identifier" jsonschema:"required,description=Catalog id (e.g. '2') or filename (e.g. 'dress.png' or 'catalog/dress.png') of the garment to select."`
}

// SelectResponse confirms a selection with the decoded image properties and
// the reference to pass to virtual_tryon.
type SelectResponse struct {
	Entry        catalog.Entry  `json:"entry"`
	Image        imaging.Report `json:"image"`
	TryOnGarment string         `json:"tryOnGarment"` // pass this as virtual_tryon's garment_filename
}
