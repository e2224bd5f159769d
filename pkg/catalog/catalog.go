// Package catalog serves the static garment catalog: a directory of garment
// images, optionally annotated by a catalog.yaml manifest with display names
// and descriptions. The catalog is loaded once at startup and read-only
// afterwards; garments are addressed by 1-based id, bare filename, or the
// "catalog/<file>" form the try-on tools use.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFilename is the optional per-directory annotation file.
const ManifestFilename = "catalog.yaml"

// Entry is one selectable garment.
type Entry struct {
	ID          int    `json:"id"`
	Filename    string `json:"filename"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// Catalog is the loaded, immutable garment set.
type Catalog struct {
	dir     string
	entries []Entry
	byName  map[string]int // lower-cased filename -> index into entries
}

type manifest struct {
	Entries []manifestEntry `yaml:"entries"`
}

type manifestEntry struct {
	Filename    string `yaml:"filename"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Load scans dir for garment images, sorted by filename, and merges the
// optional catalog.yaml annotations. Manifest entries naming files that are
// not present are ignored; files without an annotation get a display name
// derived from the filename.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return nil, fmt.Errorf("catalog dir must not be empty")
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	annotations, err := loadManifest(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, err
	}

	var names []string
	sizes := make(map[string]int64)
	for _, e := range dirEntries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		names = append(names, e.Name())
		sizes[e.Name()] = fi.Size()
	}
	sort.Strings(names)

	c := &Catalog{dir: dir, byName: make(map[string]int, len(names))}
	for i, name := range names {
		entry := Entry{
			ID:          i + 1,
			Filename:    name,
			DisplayName: displayName(name),
			SizeBytes:   sizes[name],
		}
		if a, ok := annotations[strings.ToLower(name)]; ok {
			if a.DisplayName != "" {
				entry.DisplayName = a.DisplayName
			}
			entry.Description = a.Description
		}
		c.byName[strings.ToLower(name)] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

func loadManifest(path string) (map[string]manifestEntry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse catalog manifest: %w", err)
	}
	out := make(map[string]manifestEntry, len(m.Entries))
	for _, e := range m.Entries {
		if e.Filename == "" {
			continue
		}
		out[strings.ToLower(e.Filename)] = e
	}
	return out, nil
}

// displayName derives a readable name from a filename: extension stripped,
// separators replaced with spaces.
func displayName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

// Len returns the number of garments.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// List returns every entry in id order. The slice is a copy.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get resolves a garment by 1-based id ("3"), bare filename ("dress.png",
// case-insensitive), or the "catalog/dress.png" form. ok is false when
// nothing matches.
func (c *Catalog) Get(identifier string) (Entry, bool) {
	ident := strings.TrimSpace(identifier)
	ident = strings.TrimPrefix(ident, "catalog/")
	if ident == "" {
		return Entry{}, false
	}
	if id, err := strconv.Atoi(ident); err == nil {
		if id >= 1 && id <= len(c.entries) {
			return c.entries[id-1], true
		}
		return Entry{}, false
	}
	if i, ok := c.byName[strings.ToLower(ident)]; ok {
		return c.entries[i], true
	}
	return Entry{}, false
}

// ReadImage returns the raw bytes of an entry's image file.
func (c *Catalog) ReadImage(entry Entry) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, entry.Filename))
	if err != nil {
		return nil, fmt.Errorf("read catalog image %s: %w", entry.Filename, err)
	}
	return data, nil
}
