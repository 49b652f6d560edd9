package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brannow/typo3-dev-springboard/internal/config"
	"github.com/brannow/typo3-dev-springboard/internal/hcl"
	"github.com/brannow/typo3-dev-springboard/internal/springboard"
	"github.com/brannow/typo3-dev-springboard/modules/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	blueprint *config.Blueprint
	err       error
}

func (s stubLoader) Load(_ context.Context, _ ...string) (*config.Blueprint, error) {
	return s.blueprint, s.err
}

const blueprint = `
request {
  uri    = "/contact"
  domain = "example.test"
}

site {
  name = "demo"
  language "EN" {}
}

page {
  uid   = 1
  title = "Home"
}
`

// setupInstall writes the blueprint and a shell entry script into a fresh
// install directory.
func setupInstall(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "springboard.hcl")
	require.NoError(t, os.WriteFile(path, []byte(blueprint), 0o644))

	install := filepath.Join(dir, "install")
	require.NoError(t, os.MkdirAll(filepath.Join(install, "public"), 0o755))
	script := `echo "$HTTP_HOST$REQUEST_URI"` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(install, "public", "index.php"), []byte(script), 0o644))
	return path, install
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{BlueprintPath: "a.hcl", LogFormat: "JSON", LogLevel: "Debug"}},
		{name: "missing blueprint", cfg: Config{LogFormat: "text", LogLevel: "info"}, wantErr: "BlueprintPath"},
		{name: "bad format", cfg: Config{BlueprintPath: "a.hcl", LogFormat: "xml", LogLevel: "info"}, wantErr: "log-format"},
		{name: "bad level", cfg: Config{BlueprintPath: "a.hcl", LogFormat: "text", LogLevel: "loud"}, wantErr: "log-level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "json", cfg.LogFormat)
			assert.Equal(t, "debug", cfg.LogLevel)
		})
	}
}

func TestNewApp_LoaderError(t *testing.T) {
	cfg := &Config{BlueprintPath: "x", LogLevel: "info", LogFormat: "text"}
	_, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, stubLoader{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load blueprint: boom")
}

func TestNewApp_InstallDirOverride(t *testing.T) {
	cfg := &Config{BlueprintPath: "x", InstallDir: "/srv/typo3", LogLevel: "info", LogFormat: "text"}
	a, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, stubLoader{blueprint: &config.Blueprint{InstallDir: "./app"}})
	require.NoError(t, err)
	assert.Equal(t, "/srv/typo3", a.Blueprint().InstallDir)
}

func TestRun(t *testing.T) {
	t.Run("captures the entry script output", func(t *testing.T) {
		path, install := setupInstall(t)
		var out, logs bytes.Buffer
		cfg := &Config{BlueprintPath: path, InstallDir: install, LogLevel: "debug", LogFormat: "text", Interpreter: "sh", Capture: true}

		a, err := NewApp(&out, &logs, cfg, hcl.NewLoader())
		require.NoError(t, err)
		require.NoError(t, a.Run(context.Background()))

		assert.Equal(t, "example.test/contact\n", out.String())
		assert.FileExists(t, filepath.Join(install, "config", "sites", "demo", "config.yaml"))
		assert.FileExists(t, filepath.Join(install, "var", "database.sqlite"))
		assert.Contains(t, logs.String(), "App.Run method finished.")
	})

	t.Run("skips the hand-off", func(t *testing.T) {
		path, install := setupInstall(t)
		var out bytes.Buffer
		cfg := &Config{BlueprintPath: path, InstallDir: install, LogLevel: "info", LogFormat: "json", Interpreter: "sh", NoHandoff: true}

		a, err := NewApp(&out, &bytes.Buffer{}, cfg, hcl.NewLoader())
		require.NoError(t, err)
		require.NoError(t, a.Run(context.Background()))
		assert.Empty(t, out.String())
		assert.FileExists(t, filepath.Join(install, "config", "system", "settings.php"))
	})

	t.Run("reports an invalid blueprint", func(t *testing.T) {
		bp := &config.Blueprint{
			InstallDir: t.TempDir(),
			Site:       &config.Site{Languages: []config.Language{{Name: "no such language!"}}},
		}
		cfg := &Config{BlueprintPath: "x", LogLevel: "info", LogFormat: "text", NoHandoff: true}
		a, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, stubLoader{blueprint: bp})
		require.NoError(t, err)

		err = a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid blueprint")
	})

	t.Run("reports a build failure", func(t *testing.T) {
		bp := &config.Blueprint{InstallDir: filepath.Join(t.TempDir(), "absent")}
		cfg := &Config{BlueprintPath: "x", LogLevel: "info", LogFormat: "text", NoHandoff: true}
		a, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, stubLoader{blueprint: bp})
		require.NoError(t, err)

		err = a.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "build failed")
	})
}

func newTestBuilder(t *testing.T) *springboard.Builder {
	t.Helper()
	b := springboard.New()
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestApply(t *testing.T) {
	slot := 0
	root := 7
	bp := &config.Blueprint{
		InstallDir: t.TempDir(),
		Site: &config.Site{
			RootPageID:              &root,
			DisableFallbackLanguage: true,
			Languages:               []config.Language{{Name: "DE"}, {Name: "EN", Slot: &slot}},
		},
		Tables: []config.Table{{Name: "tx_demo", Columns: []config.Column{{Name: "label", Definition: "TEXT"}}}},
		Rows:   []config.TableRow{{Table: "tx_demo", Values: config.Row{"label": "x"}}},
	}

	b := newTestBuilder(t)
	require.NoError(t, Apply(b, bp))
	require.NoError(t, b.Build(context.Background()))

	s, err := b.Site()
	require.NoError(t, err)
	doc, ok := s.Config().(*site.Document)
	require.True(t, ok)
	assert.Equal(t, 7, doc.RootPageID)
	require.Len(t, doc.Languages, 2)
	assert.Equal(t, "/", doc.Languages[0].Base)
	assert.Equal(t, "/de/", doc.Languages[1].Base)

	db, err := b.Database()
	require.NoError(t, err)
	var label string
	require.NoError(t, db.DB().QueryRow(`SELECT label FROM tx_demo`).Scan(&label))
	assert.Equal(t, "x", label)
}

func TestApply_UnknownTableRow(t *testing.T) {
	bp := &config.Blueprint{Rows: []config.TableRow{{Table: "tx_missing", Values: config.Row{"a": 1}}}}
	require.Error(t, Apply(newTestBuilder(t), bp))
}
