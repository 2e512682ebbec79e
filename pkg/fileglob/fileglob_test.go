package fileglob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		"a.txt", "b.txt", "c.png",
		"sub/d.txt", "sub/nested/e.txt",
	}
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
	return dir
}

func TestExpand_LiteralPath(t *testing.T) {
	dir := setupTree(t)
	got, err := Expand([]string{filepath.Join(dir, "a.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, got)
}

func TestExpand_SimpleGlob(t *testing.T) {
	dir := setupTree(t)
	got, err := Expand([]string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, got)
}

func TestExpand_RecursiveGlob(t *testing.T) {
	dir := setupTree(t)
	got, err := Expand([]string{filepath.Join(dir, "**", "*.txt")})
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Contains(t, got, filepath.Join(dir, "sub", "nested", "e.txt"))
}

func TestExpand_DirectoriesExcluded(t *testing.T) {
	dir := setupTree(t)
	got, err := Expand([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	for _, g := range got {
		assert.NotEqual(t, filepath.Join(dir, "sub"), g)
	}
	assert.Len(t, got, 3)
}

func TestExpand_NoMatchIsNotAnError(t *testing.T) {
	dir := setupTree(t)
	got, err := Expand([]string{filepath.Join(dir, "*.zip")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_DeduplicatesPreservingOrder(t *testing.T) {
	dir := setupTree(t)
	b := filepath.Join(dir, "b.txt")
	got, err := Expand([]string{b, filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{b, filepath.Join(dir, "a.txt")}, got)
}

func TestExpand_MissingLiteralDropped(t *testing.T) {
	got, err := Expand([]string{filepath.Join(t.TempDir(), "ghost.txt")})
	require.NoError(t, err)
	assert.Empty(t, got)
}
