// Package database provides the embedded store feature and the table
// sub-graph it materializes. Tables are units of their own registry, resolved
// and executed in dependency order once the store is open.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/internal/fsutil"
	"github.com/brannow/typo3-dev-springboard/internal/registry"
	"github.com/brannow/typo3-dev-springboard/modules/filesystem"
)

// ID is the stable identifier of the database feature.
const ID = "Database"

// FileName is the store file created in the var directory when no path is
// configured.
const FileName = "database.sqlite"

const driver = "sqlite"

// Kind binds ID to New.
var Kind = feature.Kind{ID: ID, New: func() feature.Feature { return New() }}

// Module implements the feature.Module interface for this package.
type Module struct{}

// Register binds the database kind.
func (m *Module) Register(r *feature.Registry) {
	r.Bind(Kind)
}

// Option configures a database feature.
type Option func(*Feature)

// WithClock sets the clock used by the timestamp default hooks.
func WithClock(clock func() time.Time) Option {
	return func(f *Feature) { f.clock = clock }
}

// Feature owns the store connection and the table registry.
type Feature struct {
	feature.Lifecycle

	path   string
	clock  func() time.Time
	tables *Tables
	db     *sql.DB
}

// New returns a database feature with the pages, cache, content and template
// tables instantiated and the generic table bound.
func New(opts ...Option) *Feature {
	f := &Feature{clock: time.Now}
	for _, opt := range opts {
		opt(f)
	}

	clock := func() time.Time { return f.clock() }
	f.tables = registry.New[Table](TableRegistryName)
	f.tables.Bind(TableKind{ID: PagesID, New: func() Table { return NewPages(clock) }})
	f.tables.Bind(TableKind{ID: CachesID, New: func() Table { return NewCaches() }})
	f.tables.Bind(TableKind{ID: TtContentID, New: func() Table { return NewTtContent(clock) }})
	f.tables.Bind(TableKind{ID: TemplateID, New: func() Table { return NewTemplate(clock) }})
	f.tables.Bind(TableKind{ID: GenericID, New: func() Table { return NewGeneric() }})
	for _, id := range []string{PagesID, CachesID, TtContentID, TemplateID} {
		if _, err := f.tables.Lookup(id); err != nil {
			panic(fmt.Sprintf("default table %s: %v", id, err))
		}
	}
	return f
}

// Identifier implements feature.Feature.
func (f *Feature) Identifier() string { return ID }

// Requires implements feature.Feature.
func (f *Feature) Requires() []string { return []string{filesystem.ID} }

// SetPath sets the store file. An empty path selects <var>/database.sqlite.
func (f *Feature) SetPath(path string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.path = path
	return nil
}

// Path returns the absolute store file, resolving the default against
// varDir. The entry script runs from the public directory, so a relative
// path in the settings would point elsewhere.
func (f *Feature) Path(varDir string) string {
	path := f.path
	if path == "" {
		path = filepath.Join(varDir, FileName)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Settings returns the connection settings the downstream application reads.
func (f *Feature) Settings(varDir string) map[string]any {
	return map[string]any{
		"DB": map[string]any{
			"Connections": map[string]any{
				"Default": map[string]any{
					"driver": "pdo_" + driver,
					"path":   f.Path(varDir),
				},
			},
		},
	}
}

// Tables returns the table registry.
func (f *Feature) Tables() *Tables { return f.tables }

// Table returns the table unit id, creating it from its bound kind.
func (f *Feature) Table(id string) (Table, error) {
	return f.tables.Lookup(id)
}

// AddTable registers t, replacing any unit with the same identifier.
func (f *Feature) AddTable(t Table) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.tables.Put(t)
	return nil
}

// RemoveTable drops the unit id. Its kind binding is kept.
func (f *Feature) RemoveTable(id string) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.tables.Remove(id)
	return nil
}

// AddRow queues row for table name on the unit tableID.
func (f *Feature) AddRow(tableID, table string, row Row) error {
	t, err := f.Table(tableID)
	if err != nil {
		return err
	}
	return t.AddRow(table, row)
}

// TableFor returns the live unit declaring a schema for the table name.
func (f *Feature) TableFor(table string) (Table, error) {
	var found Table
	f.tables.Each(func(t Table) {
		if found != nil {
			return
		}
		for _, s := range t.Schemas() {
			if s.Name == table {
				found = t
				return
			}
		}
	})
	if found == nil {
		return nil, SchemaError{Table: table, Reason: "no registered table declares it"}
	}
	return found, nil
}

// Template returns the sys_template unit.
func (f *Feature) Template() (*Template, error) {
	return registry.As[*Template](f.tables, TemplateID)
}

// Generic returns the generic table unit.
func (f *Feature) Generic() (*Generic, error) {
	return registry.As[*Generic](f.tables, GenericID)
}

// DB returns the open store handle, or nil before execution.
func (f *Feature) DB() *sql.DB { return f.db }

// Close releases the store handle.
func (f *Feature) Close() error {
	if f.db == nil {
		return nil
	}
	err := f.db.Close()
	f.db = nil
	return err
}

// Execute recreates the store file and materializes every table.
func (f *Feature) Execute(ctx context.Context, deps feature.Executed) error {
	if err := f.Transition(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	fs, err := feature.Dependency[*filesystem.Feature](deps, filesystem.ID)
	if err != nil {
		return err
	}

	path := f.Path(fs.VarDir())
	if err := fsutil.RemoveIfExists(path); err != nil {
		return StorageError{Op: "remove previous store", Err: err}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return StorageError{Op: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return StorageError{Op: "ping", Err: err}
	}
	f.db = db
	logger.Info("Database opened.", "path", path)

	ctx = ctxlog.WithLogger(ctx, logger.With("database", path))
	if err := f.tables.Run(ctx, func(ctx context.Context, t Table, _ map[string]Table) error {
		return t.Execute(ctx, db)
	}); err != nil {
		return err
	}
	logger.Debug("Tables materialized.", "tables", f.tables.Identifiers())
	return nil
}
