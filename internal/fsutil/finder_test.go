package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.hcl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "b.hcl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), nil, 0o644))

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "nested", "b.hcl")}, files)

	single, err := FindFilesByExtension(filepath.Join(root, "a.hcl"), ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.hcl")}, single)

	_, err = FindFilesByExtension(filepath.Join(root, "missing"), ".hcl")
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	path, err := EnsureDir(base, "var")
	require.NoError(t, err)
	assert.True(t, IsDir(path))

	again, err := EnsureDir(base, "var")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	_, err = EnsureDir(filepath.Join(base, "missing"), "var")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, "settings.php", "<?php")
	require.NoError(t, err)
	path, err = WriteFile(dir, "settings.php", "<?php\nreturn [];")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<?php\nreturn [];\n", string(content))

	assert.True(t, Exists(path))
	require.NoError(t, RemoveIfExists(path))
	assert.False(t, Exists(path))
	assert.NoError(t, RemoveIfExists(path))
}
