package artifacts

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by Read when no artifact exists under the
// requested name. Callers distinguish it with errors.Is.
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidName is returned for names that are empty or attempt to escape
// the store's flat namespace (path separators, "." or "..").
var ErrInvalidName = errors.New("invalid artifact name")

// Info summarizes one stored artifact as reported by List.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is the storage collaborator every other component writes through.
// Implementations must make Write atomic: a reader never observes a
// partially written artifact under its final name.
type Store interface {
	// Write persists data under name, replacing any previous content.
	Write(ctx context.Context, name string, data []byte) error

	// Read returns the full content stored under name, or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)

	// List enumerates stored artifacts whose name starts with prefix,
	// sorted by name. An empty prefix lists everything.
	List(ctx context.Context, prefix string) ([]Info, error)

	// Delete removes name and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)

	// Exists reports whether name is present.
	Exists(ctx context.Context, name string) (bool, error)
}

// validName rejects names that would leave a flat store namespace.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return !strings.HasPrefix(name, ".")
}
