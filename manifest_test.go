package dazzle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte("root: shop.app\nstrict: true\ninclude:\n  - \"specs/**/*.dazzle\"\n"), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "shop.app", m.Root)
	assert.True(t, m.Strict)
	assert.Equal(t, []string{"specs/**/*.dazzle"}, m.Include)
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("root: shop.app\n"), 0o644))

	m, err := FindManifest(nested)
	require.NoError(t, err)
	assert.Equal(t, "shop.app", m.Root)
}

func TestFindManifestMissing(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifestSourceDefaultsToDirTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("root: shop.core\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.core.dazzle"), []byte("module shop.core\nentity Thing\n    field id: int pk required\n"), 0o644))

	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	src, err := m.Source()
	require.NoError(t, err)

	model, err := Load(context.Background(), src, m.Root)
	require.NoError(t, err)
	assert.Len(t, model.Modules, 1)
}

func TestManifestIncludePatterns(t *testing.T) {
	dir := t.TempDir()
	specs := filepath.Join(dir, "specs")
	require.NoError(t, os.MkdirAll(specs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("include:\n  - \"specs/**/*.dazzle\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(specs, "shop.core.dazzle"), []byte("module shop.core\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.dazzle"), []byte("module stray\n"), 0o644))

	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	src, err := m.Source()
	require.NoError(t, err)

	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1, "stray file outside include is excluded")
}
