package dazzle

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source, name string) string {
	t.Helper()
	r, _, err := src.Find(name)
	require.NoError(t, err)
	defer r.Close()
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(content)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.core.dazzle"), []byte("module shop.core\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))

	src, err := Dir(dir)
	require.NoError(t, err)

	assert.Equal(t, "module shop.core\n", readAll(t, src, "shop.core"))

	_, _, err = src.Find("shop.ghost")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1, "non-spec files excluded")
}

func TestDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.dazzle")
	require.NoError(t, os.WriteFile(path, []byte("module plain\n"), 0o644))

	_, err := Dir(path)
	assert.Error(t, err)
}

func TestDirTreeIndexesRecursively(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.core.dazzle"), []byte("module shop.core\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "shop.billing.dzl"), []byte("module shop.billing\n"), 0o644))

	src, err := DirTree(dir)
	require.NoError(t, err)

	assert.Equal(t, "module shop.billing\n", readAll(t, src, "shop.billing"))
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.True(t, slices.IsSorted(files), "listing order is stable")
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"specs/shop.core.dazzle": &fstest.MapFile{Data: []byte("module shop.core\n")},
		"specs/ignore.txt":       &fstest.MapFile{Data: []byte("no")},
	}
	src := FS("embedded", fsys)

	content := readAll(t, src, "shop.core")
	assert.Equal(t, "module shop.core\n", content)

	files, err := src.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "embedded:")
}

func TestGlobSource(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "shop.core.dazzle"), []byte("module shop.core\n"), 0o644))

	src, err := Glob(filepath.Join(dir, "**", "*.dazzle"))
	require.NoError(t, err)

	assert.Equal(t, "module shop.core\n", readAll(t, src, "shop.core"))
}

func TestMultiSourceFirstMatchWins(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(primary, "shop.core.dazzle"), []byte("module shop.core\n# primary\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fallback, "shop.core.dazzle"), []byte("module shop.core\n# fallback\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fallback, "shop.extra.dazzle"), []byte("module shop.extra\n"), 0o644))

	first, err := Dir(primary)
	require.NoError(t, err)
	second, err := Dir(fallback)
	require.NoError(t, err)
	src := Multi(first, second)

	assert.Contains(t, readAll(t, src, "shop.core"), "primary")
	assert.Contains(t, readAll(t, src, "shop.extra"), "extra")

	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3, "multi lists everything; loading dedupes")
}

func TestWithExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.core.spec"), []byte("module shop.core\n"), 0o644))

	src, err := Dir(dir, WithExtensions(".spec"))
	require.NoError(t, err)
	assert.Equal(t, "module shop.core\n", readAll(t, src, "shop.core"))
}

func TestModuleNameFromPath(t *testing.T) {
	assert.Equal(t, "shop.core", moduleNameFromPath("a/b/shop.core.dazzle"))
	assert.Equal(t, "shop", moduleNameFromPath("shop.dzl"))
}
