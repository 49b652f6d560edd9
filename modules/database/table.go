package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/internal/registry"
)

// TableRegistryName labels table registry errors and log lines.
const TableRegistryName = "table"

// Row is one pending record: column name to value.
type Row map[string]any

// Column is a column name with its SQL definition.
type Column struct {
	Name       string
	Definition string
}

// Schema is an ordered column list for one table name.
type Schema struct {
	Name    string
	Columns []Column
}

// Has reports whether the schema declares column.
func (s Schema) Has(column string) bool {
	for _, c := range s.Columns {
		if c.Name == column {
			return true
		}
	}
	return false
}

// Table is a unit of the database sub-graph. It declares schemas, queues rows
// and materializes both against an open store.
type Table interface {
	registry.Node
	Schemas() []Schema
	AddRow(table string, row Row) error
	Execute(ctx context.Context, db *sql.DB) error
}

type (
	// TableKind binds a table identifier to its default factory.
	TableKind = registry.Kind[Table]
	// Tables is the nested table registry owned by the database feature.
	Tables = registry.Registry[Table]
)

// DefaultsFunc fills default values into a row right before it is inserted.
type DefaultsFunc func(table string, row Row) Row

type pendingRow struct {
	table string
	row   Row
}

// SchemaTable is the Table implementation every built-in table is made of.
type SchemaTable struct {
	feature.Lifecycle

	id       string
	requires []string
	schemas  []Schema
	pending  []pendingRow
	defaults DefaultsFunc
}

// NewSchemaTable creates a table unit with the given identifier and schemas.
func NewSchemaTable(id string, schemas ...Schema) *SchemaTable {
	return &SchemaTable{id: id, schemas: schemas}
}

// Identifier implements registry.Node.
func (t *SchemaTable) Identifier() string { return t.id }

// Requires implements registry.Node.
func (t *SchemaTable) Requires() []string { return t.requires }

// Schemas implements Table.
func (t *SchemaTable) Schemas() []Schema { return t.schemas }

// Pending returns the number of queued rows.
func (t *SchemaTable) Pending() int { return len(t.pending) }

// DependsOn adds table identifiers this table must be created after.
func (t *SchemaTable) DependsOn(ids ...string) *SchemaTable {
	t.requires = append(t.requires, ids...)
	return t
}

// WithDefaults installs the default-value hook.
func (t *SchemaTable) WithDefaults(fn DefaultsFunc) *SchemaTable {
	t.defaults = fn
	return t
}

// Schema returns the schema declared for table.
func (t *SchemaTable) Schema(table string) (Schema, bool) {
	for _, s := range t.schemas {
		if s.Name == table {
			return s, true
		}
	}
	return Schema{}, false
}

// AddRow validates row against the schema of table and queues it.
func (t *SchemaTable) AddRow(table string, row Row) error {
	if err := t.Mutable(); err != nil {
		return err
	}
	schema, ok := t.Schema(table)
	if !ok {
		return SchemaError{Table: table, Reason: "not declared by " + t.id}
	}
	if len(row) == 0 {
		return SchemaError{Table: table, Reason: "empty row"}
	}
	if err := checkColumns(schema, row); err != nil {
		return err
	}

	queued := make(Row, len(row))
	for k, v := range row {
		queued[k] = v
	}
	t.pending = append(t.pending, pendingRow{table: table, row: queued})
	return nil
}

// Execute creates every declared table, then inserts the queued rows in
// queue order.
func (t *SchemaTable) Execute(ctx context.Context, db *sql.DB) error {
	if err := t.Transition(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	for _, s := range t.schemas {
		if _, err := db.ExecContext(ctx, createStatement(s)); err != nil {
			return StorageError{Op: "create table", Table: s.Name, Err: err}
		}
	}

	for _, p := range t.pending {
		row := p.row
		if t.defaults != nil {
			row = t.defaults(p.table, row)
		}
		schema, _ := t.Schema(p.table)
		if err := checkColumns(schema, row); err != nil {
			return err
		}
		query, args := insertStatement(schema, row)
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return StorageError{Op: "insert into", Table: p.table, Err: err}
		}
	}

	logger.Debug("Table executed.", "table", t.id, "schemas", len(t.schemas), "rows", len(t.pending))
	return nil
}

func checkColumns(schema Schema, row Row) error {
	for column := range row {
		if !schema.Has(column) {
			return SchemaError{Table: schema.Name, Column: column, Reason: "unknown column"}
		}
	}
	return nil
}

func createStatement(s Schema) string {
	defs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		defs = append(defs, quoteIdent(c.Name)+" "+c.Definition)
	}
	return "CREATE TABLE IF NOT EXISTS " + quoteIdent(s.Name) + " (" + strings.Join(defs, ", ") + ")"
}

// insertStatement lists the row's columns in schema order.
func insertStatement(s Schema, row Row) (string, []any) {
	columns := make([]string, 0, len(row))
	marks := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	for _, c := range s.Columns {
		v, ok := row[c.Name]
		if !ok {
			continue
		}
		columns = append(columns, quoteIdent(c.Name))
		marks = append(marks, "?")
		args = append(args, bindValue(v))
	}
	return "INSERT INTO " + quoteIdent(s.Name) + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")", args
}

// bindValue maps a row value onto the store's value kinds: NULL, integer
// (booleans become 0 or 1) or text.
func bindValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// timestamps returns a hook filling tstamp and crdate from clock when absent
// or nil.
func timestamps(clock func() time.Time) DefaultsFunc {
	return func(_ string, row Row) Row {
		now := clock().Unix()
		out := make(Row, len(row)+2)
		for k, v := range row {
			out[k] = v
		}
		for _, column := range []string{"tstamp", "crdate"} {
			if out[column] == nil {
				out[column] = now
			}
		}
		return out
	}
}
