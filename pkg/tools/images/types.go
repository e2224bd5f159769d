package images

// ListReferenceImagesArgs takes no parameters; the struct exists so the
// generated schema is a plain object.
type ListReferenceImagesArgs struct{}

// ClearReferenceImagesArgs controls the two-phase clear: the first call is
// made without confirm and only returns a warning.
type ClearReferenceImagesArgs struct {
	Confirm bool `json:"confirm" jsonschema:"description=Set true to actually delete every uploaded reference image. A call without confirm only returns a warning."`
}

// ClearResponse reports a clear attempt. When the call was not confirmed,
// Cleared is false and Warning explains what a confirmed call would do.
type ClearResponse struct {
	Cleared bool   `json:"cleared"`
	Deleted int    `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

// CheckImageRatioArgs names the stored image to inspect.
type CheckImageRatioArgs struct {
	Filename string `json:"filename" jsonschema:"required,description=Artifact filename (e.g. 'reference_image_v1.png') or catalog reference (e.g. 'catalog/dress.png') to check."`
}
