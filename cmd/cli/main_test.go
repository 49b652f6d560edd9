package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidBlueprint(t *testing.T) {
	// --- Arrange ---
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte("request {\n"), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{filePath})

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load blueprint")
}

func TestRun_ShouldExit(t *testing.T) {
	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BuildsWithoutHandoff(t *testing.T) {
	dir := t.TempDir()
	install := filepath.Join(dir, "install")
	require.NoError(t, os.Mkdir(install, 0o755))
	filePath := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte("page {\n  uid = 1\n}\n"), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-install-dir", install, "-no-handoff", filePath})

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(install, "var", "database.sqlite"))
	assert.FileExists(t, filepath.Join(install, "config", "sites", "main", "config.yaml"))
}
