package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "blue_denim_jacket.png", "jacket-bytes")
	writeFile(t, dir, "red-dress.jpg", "dress-bytes")
	writeFile(t, dir, "striped_tee.png", "tee-bytes")
	writeFile(t, dir, "notes.txt", "not an image")
	writeFile(t, dir, ManifestFilename, `
entries:
  - filename: red-dress.jpg
    display_name: Red Evening Dress
    description: Floor-length evening dress.
  - filename: missing.png
    display_name: Ghost Garment
`)
	c, err := Load(dir)
	require.NoError(t, err)
	return c
}

func TestLoadScansImagesSortedWithManifest(t *testing.T) {
	c := newTestCatalog(t)

	entries := c.List()
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, "blue_denim_jacket.png", entries[0].Filename)
	assert.Equal(t, "blue denim jacket", entries[0].DisplayName)
	assert.Equal(t, int64(len("jacket-bytes")), entries[0].SizeBytes)

	assert.Equal(t, "red-dress.jpg", entries[1].Filename)
	assert.Equal(t, "Red Evening Dress", entries[1].DisplayName)
	assert.Equal(t, "Floor-length evening dress.", entries[1].Description)

	assert.Equal(t, "striped_tee.png", entries[2].Filename)
}

func TestGetByIDFilenameAndPrefix(t *testing.T) {
	c := newTestCatalog(t)

	byID, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "red-dress.jpg", byID.Filename)

	byName, ok := c.Get("STRIPED_TEE.PNG")
	require.True(t, ok)
	assert.Equal(t, 3, byName.ID)

	byPrefix, ok := c.Get("catalog/blue_denim_jacket.png")
	require.True(t, ok)
	assert.Equal(t, 1, byPrefix.ID)
}

func TestGetMisses(t *testing.T) {
	c := newTestCatalog(t)

	for _, ident := range []string{"", "0", "4", "-1", "unknown.png", "catalog/"} {
		_, ok := c.Get(ident)
		assert.False(t, ok, "identifier %q", ident)
	}
}

func TestReadImage(t *testing.T) {
	c := newTestCatalog(t)

	entry, ok := c.Get("1")
	require.True(t, ok)
	data, err := c.ReadImage(entry)
	require.NoError(t, err)
	assert.Equal(t, []byte("jacket-bytes"), data)
}

func TestLoadMissingDirFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadEmptyDirYieldsEmptyCatalog(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.List())
}

func TestLoadRejectsBrokenManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFilename, "entries: [broken")
	_, err := Load(dir)
	assert.Error(t, err)
}
