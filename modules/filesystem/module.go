// Package filesystem lays out the generated environment on disk: the
// writable var directory, the public directory holding the entry script and
// the configuration tree with system settings and per-site documents.
package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/internal/fsutil"
	"github.com/brannow/typo3-dev-springboard/internal/phpconfig"
	"github.com/brannow/typo3-dev-springboard/modules/site"
)

// ID is the stable identifier of the filesystem feature.
const ID = "FileSystem"

// EntryScript is the hand-off artifact inside the public directory.
const EntryScript = "index.php"

// Kind binds ID to New.
var Kind = feature.Kind{ID: ID, New: func() feature.Feature { return New() }}

// Module implements the feature.Module interface for this package.
type Module struct{}

// Register binds the filesystem kind.
func (m *Module) Register(r *feature.Registry) {
	r.Bind(Kind)
}

// EnvironmentError is returned when the target environment cannot host the
// generated layout.
type EnvironmentError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e EnvironmentError) Error() string {
	return "environment: " + e.Reason + ": " + e.Path
}

// DefaultSettings returns the system settings every build starts from.
func DefaultSettings() map[string]any {
	return map[string]any{
		"SYS": map[string]any{
			"encryptionKey":       "not-secure-secret",
			"trustedHostsPattern": ".*",
		},
	}
}

// Feature holds the directory layout and system settings.
type Feature struct {
	feature.Lifecycle

	baseDir   string
	varDir    string
	configDir string
	publicDir string
	siteName  string
	settings  map[string]any
}

// New returns the layout rooted at the current directory.
func New() *Feature {
	return &Feature{
		baseDir:   "./",
		varDir:    "var",
		configDir: "config",
		publicDir: "public",
		siteName:  "main",
		settings:  DefaultSettings(),
	}
}

// Identifier implements feature.Feature.
func (f *Feature) Identifier() string { return ID }

// Requires implements feature.Feature.
func (f *Feature) Requires() []string { return []string{site.ID} }

// SetBaseDir sets the install directory. It must exist at execution time.
func (f *Feature) SetBaseDir(dir string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.baseDir = dir
	return nil
}

// SetVarDir sets the writable-state directory relative to the base.
func (f *Feature) SetVarDir(dir string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.varDir = dir
	return nil
}

// SetConfigDir sets the configuration directory relative to the base.
func (f *Feature) SetConfigDir(dir string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.configDir = dir
	return nil
}

// SetPublicDir sets the public directory relative to the base.
func (f *Feature) SetPublicDir(dir string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.publicDir = dir
	return nil
}

// SetSiteName sets the directory name of the site below config/sites.
func (f *Feature) SetSiteName(name string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid site name %q", name)
	}
	f.siteName = name
	return nil
}

// AddSettings deep-merges settings over the current ones.
func (f *Feature) AddSettings(settings map[string]any) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.settings = phpconfig.Merge(f.settings, settings)
	return nil
}

// BaseDir returns the install directory.
func (f *Feature) BaseDir() string { return f.baseDir }

// VarDir returns the joined writable-state directory.
func (f *Feature) VarDir() string { return filepath.Join(f.baseDir, f.varDir) }

// PublicDir returns the joined public directory.
func (f *Feature) PublicDir() string { return filepath.Join(f.baseDir, f.publicDir) }

// ConfigDir returns the joined configuration directory.
func (f *Feature) ConfigDir() string { return filepath.Join(f.baseDir, f.configDir) }

// SiteConfigPath returns the path of the generated site document.
func (f *Feature) SiteConfigPath() string {
	return filepath.Join(f.ConfigDir(), "sites", f.siteName, "config.yaml")
}

// SettingsPath returns the path of the generated system settings file.
func (f *Feature) SettingsPath() string {
	return filepath.Join(f.ConfigDir(), "system", "settings.php")
}

// ScriptPath returns the hand-off artifact path.
func (f *Feature) ScriptPath() string {
	return filepath.Join(f.PublicDir(), EntryScript)
}

// Settings returns the current system settings.
func (f *Feature) Settings() map[string]any { return f.settings }

// Environ returns the variables the downstream application needs to locate
// the install directory. The path is absolute.
func (f *Feature) Environ() []string {
	base, err := filepath.Abs(f.baseDir)
	if err != nil {
		base = f.baseDir
	}
	return []string{"TYPO3_PATH_APP=" + base}
}

// Execute creates the directory layout and writes the configuration files.
func (f *Feature) Execute(ctx context.Context, deps feature.Executed) error {
	if err := f.Transition(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	s, err := feature.Dependency[*site.Feature](deps, site.ID)
	if err != nil {
		return err
	}

	if !fsutil.IsDir(f.baseDir) {
		return EnvironmentError{Path: f.baseDir, Reason: "base directory not found"}
	}

	if _, err := fsutil.EnsureDir(f.baseDir, f.varDir); err != nil {
		return fmt.Errorf("creating var directory: %w", err)
	}
	if _, err := fsutil.EnsureDir(f.baseDir, f.publicDir); err != nil {
		return fmt.Errorf("creating public directory: %w", err)
	}
	configDir, err := fsutil.EnsureDir(f.baseDir, f.configDir)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	systemDir, err := fsutil.EnsureDir(configDir, "system")
	if err != nil {
		return fmt.Errorf("creating system config directory: %w", err)
	}
	if _, err := fsutil.WriteFile(systemDir, "additional.php", "<?php"); err != nil {
		return fmt.Errorf("writing additional.php: %w", err)
	}
	settings, err := phpconfig.Render(f.settings)
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}
	if _, err := fsutil.WriteFile(systemDir, "settings.php", settings); err != nil {
		return fmt.Errorf("writing settings.php: %w", err)
	}

	sitesDir, err := fsutil.EnsureDir(configDir, "sites")
	if err != nil {
		return fmt.Errorf("creating sites directory: %w", err)
	}
	siteDir, err := fsutil.EnsureDir(sitesDir, f.siteName)
	if err != nil {
		return fmt.Errorf("creating site directory: %w", err)
	}
	doc, err := encodeYAML(s.Config())
	if err != nil {
		return fmt.Errorf("encoding site configuration: %w", err)
	}
	path, err := fsutil.WriteFile(siteDir, "config.yaml", doc)
	if err != nil {
		return fmt.Errorf("writing site configuration: %w", err)
	}

	logger.Info("Environment layout written.", "base_dir", f.baseDir, "site_config", path)
	return nil
}

func encodeYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
