// Package artifacts manages the versioned image files produced and consumed
// during a try-on session. Every stored file belongs to an artifact class
// (for example "reference_image" or "tryon_result") and carries a version
// suffix, giving filenames of the form {class}_v{N}.{ext}. Version numbers
// are never persisted separately: they are derived by scanning the names
// present in the store, so files removed out-of-band are simply forgotten.
package artifacts

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Version describes one concrete stored artifact.
type Version struct {
	Class     string    `json:"class"`
	Version   int       `json:"version"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filename builds the canonical name for a class/version pair,
// e.g. Filename("tryon_result", 3, "png") -> "tryon_result_v3.png".
func Filename(class string, version int, ext string) string {
	return fmt.Sprintf("%s_v%d.%s", class, version, ext)
}

var versionedName = regexp.MustCompile(`^(.+)_v([0-9]+)\.([A-Za-z0-9]+)$`)

// ParseFilename splits a stored name back into class, version and extension.
// Names that do not follow the {class}_v{N}.{ext} grammar, or whose version
// segment is not a plain positive integer, report ok=false and are ignored
// by version scans rather than treated as errors.
func ParseFilename(name string) (class string, version int, ext string, ok bool) {
	m := versionedName.FindStringSubmatch(name)
	if m == nil {
		return "", 0, "", false
	}
	v, err := strconv.Atoi(m[2])
	if err != nil || v < 1 {
		return "", 0, "", false
	}
	return m[1], v, m[3], true
}
