// Package springboard composes the environment features into one build:
// configure through the Builder, Build to materialize every feature in
// dependency order, then Finish to hand control to the entry script.
package springboard

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/internal/handoff"
	"github.com/brannow/typo3-dev-springboard/modules/database"
	"github.com/brannow/typo3-dev-springboard/modules/filesystem"
	"github.com/brannow/typo3-dev-springboard/modules/request"
	"github.com/brannow/typo3-dev-springboard/modules/site"
)

// Builder owns the feature registry of one build. It is not safe for
// concurrent use and cannot be reused once built.
type Builder struct {
	features *feature.Registry
	buildID  string
	err      error
	built    bool

	interpreter string
	stdout      io.Writer
	stderr      io.Writer
}

// Option configures a Builder.
type Option func(*Builder)

// WithInterpreter sets the program that runs the entry script. An empty
// string executes the script directly.
func WithInterpreter(interpreter string) Option {
	return func(b *Builder) { b.interpreter = interpreter }
}

// WithOutput sets where the entry script's output goes when not captured.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// WithModules binds additional feature kinds.
func WithModules(modules ...feature.Module) Option {
	return func(b *Builder) { b.features.Register(modules...) }
}

// CoreModules returns the modules every Builder registers.
func CoreModules() []feature.Module {
	return []feature.Module{
		&filesystem.Module{},
		&database.Module{},
		&request.Module{},
		&site.Module{},
	}
}

// New returns a Builder with the core features instantiated.
func New(opts ...Option) *Builder {
	b := &Builder{
		features:    feature.NewRegistry(),
		buildID:     uuid.NewString(),
		interpreter: handoff.DefaultInterpreter,
	}
	b.features.Register(CoreModules()...)
	for _, id := range []string{filesystem.ID, database.ID, request.ID, site.ID} {
		if _, err := b.features.Lookup(id); err != nil {
			panic(fmt.Sprintf("core feature %s: %v", id, err))
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildID identifies this build in log output.
func (b *Builder) BuildID() string { return b.buildID }

// Err returns the first configuration error.
func (b *Builder) Err() error { return b.err }

// Registry exposes the feature registry.
func (b *Builder) Registry() *feature.Registry { return b.features }

func (b *Builder) fail(err error) *Builder {
	if err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Feature returns the feature id, creating it from its bound kind.
func (b *Builder) Feature(id string) (feature.Feature, error) {
	return b.features.Lookup(id)
}

// AddFeature replaces the feature with the same identifier. Configuration on
// the replaced instance is discarded.
func (b *Builder) AddFeature(f feature.Feature) *Builder {
	b.features.Put(f)
	return b
}

// RemoveFeature drops the feature id. Its kind stays bound, so it is
// re-created with defaults if it is looked up or required again.
func (b *Builder) RemoveFeature(id string) *Builder {
	b.features.Remove(id)
	return b
}

// FileSystem returns the filesystem feature.
func (b *Builder) FileSystem() (*filesystem.Feature, error) {
	return feature.Get[*filesystem.Feature](b.features, filesystem.ID)
}

// Database returns the database feature.
func (b *Builder) Database() (*database.Feature, error) {
	return feature.Get[*database.Feature](b.features, database.ID)
}

// Request returns the request feature.
func (b *Builder) Request() (*request.Feature, error) {
	return feature.Get[*request.Feature](b.features, request.ID)
}

// Site returns the site feature.
func (b *Builder) Site() (*site.Feature, error) {
	return feature.Get[*site.Feature](b.features, site.ID)
}

func (b *Builder) withFileSystem(fn func(*filesystem.Feature) error) *Builder {
	if b.err != nil {
		return b
	}
	f, err := b.FileSystem()
	if err != nil {
		return b.fail(err)
	}
	return b.fail(fn(f))
}

func (b *Builder) withDatabase(fn func(*database.Feature) error) *Builder {
	if b.err != nil {
		return b
	}
	f, err := b.Database()
	if err != nil {
		return b.fail(err)
	}
	return b.fail(fn(f))
}

func (b *Builder) withRequest(fn func(*request.Feature) error) *Builder {
	if b.err != nil {
		return b
	}
	f, err := b.Request()
	if err != nil {
		return b.fail(err)
	}
	return b.fail(fn(f))
}

func (b *Builder) withSite(fn func(*site.Feature) error) *Builder {
	if b.err != nil {
		return b
	}
	f, err := b.Site()
	if err != nil {
		return b.fail(err)
	}
	return b.fail(fn(f))
}

// InstallDir sets the base directory of the environment.
func (b *Builder) InstallDir(dir string) *Builder {
	return b.withFileSystem(func(f *filesystem.Feature) error { return f.SetBaseDir(dir) })
}

// AddSettings deep-merges system settings.
func (b *Builder) AddSettings(settings map[string]any) *Builder {
	return b.withFileSystem(func(f *filesystem.Feature) error { return f.AddSettings(settings) })
}

// SetSiteName sets the site directory name.
func (b *Builder) SetSiteName(name string) *Builder {
	return b.withFileSystem(func(f *filesystem.Feature) error { return f.SetSiteName(name) })
}

// WithRequest configures the simulated request. Empty strings keep their
// defaults.
func (b *Builder) WithRequest(uri, domain, method string, https bool) *Builder {
	return b.withRequest(func(f *request.Feature) error {
		if uri != "" {
			if err := f.SetURI(uri); err != nil {
				return err
			}
		}
		if domain != "" {
			if err := f.SetDomain(domain); err != nil {
				return err
			}
		}
		if method != "" {
			if err := f.SetMethod(method); err != nil {
				return err
			}
		}
		return f.SetHTTPS(https)
	})
}

// AddSiteLanguage appends languages.
func (b *Builder) AddSiteLanguage(langs ...site.Language) *Builder {
	return b.withSite(func(f *site.Feature) error { return f.AddLanguage(langs...) })
}

// SetSiteLanguage configures lang at a requested slot; nil appends.
func (b *Builder) SetSiteLanguage(lang site.Language, slot *int) *Builder {
	return b.withSite(func(f *site.Feature) error { return f.SetLanguage(lang, slot) })
}

// SetSiteRootPageID sets the site's root page.
func (b *Builder) SetSiteRootPageID(id int) *Builder {
	return b.withSite(func(f *site.Feature) error { return f.SetRootPageID(id) })
}

// SetSiteConfig installs a verbatim site configuration; nil re-enables
// generation.
func (b *Builder) SetSiteConfig(config map[string]any) *Builder {
	return b.withSite(func(f *site.Feature) error { return f.SetConfig(config) })
}

// DisableFallbackLanguage stops the default languages from being added.
func (b *Builder) DisableFallbackLanguage(disable bool) *Builder {
	return b.withSite(func(f *site.Feature) error { return f.DisableFallbackLanguage(disable) })
}

// SetDatabasePath sets the store file.
func (b *Builder) SetDatabasePath(path string) *Builder {
	return b.withDatabase(func(f *database.Feature) error { return f.SetPath(path) })
}

// AddPageRecord queues a pages row.
func (b *Builder) AddPageRecord(row database.Row) *Builder {
	return b.AddTableRow(database.PagesID, "pages", row)
}

// AddContentRecord queues a tt_content row.
func (b *Builder) AddContentRecord(row database.Row) *Builder {
	return b.AddTableRow(database.TtContentID, "tt_content", row)
}

// AddTypoScriptTemplate queues a sys_template row. A nil root means root.
func (b *Builder) AddTypoScriptTemplate(typoScript string, pageID int, root *int, title string) *Builder {
	return b.withDatabase(func(f *database.Feature) error {
		tpl, err := f.Template()
		if err != nil {
			return err
		}
		return tpl.AddTypoScriptTemplate(typoScript, pageID, root, title)
	})
}

// AddTableRow queues row for table name on the table unit tableID.
func (b *Builder) AddTableRow(tableID, table string, row database.Row) *Builder {
	return b.withDatabase(func(f *database.Feature) error { return f.AddRow(tableID, table, row) })
}

// AddRecord queues row on whichever table unit declares table.
func (b *Builder) AddRecord(table string, row database.Row) *Builder {
	return b.withDatabase(func(f *database.Feature) error {
		t, err := f.TableFor(table)
		if err != nil {
			return err
		}
		return t.AddRow(table, row)
	})
}

// AddTableSchema declares a caller schema on the generic table unit.
func (b *Builder) AddTableSchema(schema database.Schema) *Builder {
	return b.withDatabase(func(f *database.Feature) error {
		g, err := f.Generic()
		if err != nil {
			return err
		}
		return g.AddSchema(schema)
	})
}

// AddTable registers a table unit, replacing one with the same identifier.
func (b *Builder) AddTable(t database.Table) *Builder {
	return b.withDatabase(func(f *database.Feature) error { return f.AddTable(t) })
}

// Build materializes every feature in dependency order. It runs once per
// Builder; configuration errors are returned before anything is written.
func (b *Builder) Build(ctx context.Context) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if b.err != nil {
		return fmt.Errorf("configuration: %w", b.err)
	}
	b.built = true

	ctx, logger := ctxlog.With(ctx, "build_id", b.buildID)
	logger.Info("Build started.")

	if err := b.handOverDatabaseSettings(); err != nil {
		return err
	}

	if err := feature.Run(ctx, b.features); err != nil {
		logger.Error("Build failed.", "error", err)
		return err
	}
	logger.Info("Build finished.", "features", b.features.Identifiers())
	return nil
}

// handOverDatabaseSettings pushes the store connection into the system
// settings before anything executes. A removed filesystem feature is
// re-created from its kind, as resolution would do for the database's
// dependency anyway.
func (b *Builder) handOverDatabaseSettings() error {
	if !b.features.Has(database.ID) {
		return nil
	}
	db, err := b.Database()
	if err != nil {
		return err
	}
	fs, err := b.FileSystem()
	if err != nil {
		return err
	}
	return fs.AddSettings(db.Settings(fs.VarDir()))
}

// Finish runs the entry script of the built environment. With capture set its
// output is returned instead of streamed.
func (b *Builder) Finish(ctx context.Context, capture bool) (string, error) {
	if !b.built {
		return "", ErrNotBuilt
	}
	ctx, _ = ctxlog.With(ctx, "build_id", b.buildID)

	fs, err := b.FileSystem()
	if err != nil {
		return "", err
	}
	req, err := b.Request()
	if err != nil {
		return "", err
	}
	env := append(fs.Environ(), req.Context().Environ()...)

	return handoff.Run(ctx, fs.ScriptPath(), handoff.Options{
		Interpreter: b.interpreter,
		Env:         env,
		Dir:         fs.PublicDir(),
		Capture:     capture,
		Stdout:      b.stdout,
		Stderr:      b.stderr,
	})
}

// Close releases the store handle held by the database feature.
func (b *Builder) Close() error {
	if !b.features.Has(database.ID) {
		return nil
	}
	db, err := b.Database()
	if err != nil {
		return err
	}
	return db.Close()
}
