package database

import (
	"time"
)

// Built-in table identifiers.
const (
	PagesID     = "pages"
	TtContentID = "tt_content"
	CachesID    = "cache_tables"
	TemplateID  = "sys_template"
	GenericID   = "generic_table"
)

// DefaultTemplateTitle is used for templates added without a title.
const DefaultTemplateTitle = "Main TypoScript"

func col(name, definition string) Column {
	return Column{Name: name, Definition: definition}
}

// versioningColumns are shared by pages and tt_content.
func versioningColumns() []Column {
	return []Column{
		col("t3ver_wsid", "INTEGER DEFAULT 0"),
		col("t3ver_id", "INTEGER DEFAULT 0"),
		col("t3ver_oid", "INTEGER DEFAULT 0"),
		col("t3ver_stage", "INTEGER DEFAULT 0"),
		col("t3ver_state", "INTEGER DEFAULT 0"),
	}
}

// PagesSchema is the page tree table.
func PagesSchema() Schema {
	return Schema{Name: "pages", Columns: append([]Column{
		col("uid", "INTEGER PRIMARY KEY AUTOINCREMENT"),
		col("pid", "INTEGER DEFAULT 0"),
		col("title", "TEXT"),
		col("doktype", "INTEGER DEFAULT 1"),
		col("hidden", "INTEGER DEFAULT 0"),
		col("deleted", "INTEGER DEFAULT 0"),
		col("starttime", "INTEGER DEFAULT 0"),
		col("endtime", "INTEGER DEFAULT 0"),
		col("fe_group", "TEXT DEFAULT ''"),
		col("tstamp", "INTEGER DEFAULT 0"),
		col("crdate", "INTEGER DEFAULT 0"),
		col("cruser_id", "INTEGER DEFAULT 0"),
		col("sorting", "INTEGER DEFAULT 0"),
		col("slug", "TEXT DEFAULT '/'"),
		col("SYS_LASTCHANGED", "INTEGER DEFAULT 0"),
		col("sys_language_uid", "INTEGER DEFAULT 0"),
		col("l10n_parent", "INTEGER DEFAULT 0"),
		col("l18n_cfg", "INTEGER DEFAULT 0"),
		col("mount_pid", "INTEGER DEFAULT 0"),
		col("mount_pid_ol", "INTEGER DEFAULT 0"),
	}, versioningColumns()...)}
}

// TtContentSchema is the content element table.
func TtContentSchema() Schema {
	return Schema{Name: "tt_content", Columns: append([]Column{
		col("uid", "INTEGER PRIMARY KEY AUTOINCREMENT"),
		col("pid", "INTEGER DEFAULT 0"),
		col("header", "TEXT DEFAULT ''"),
		col("bodytext", "TEXT DEFAULT ''"),
		col("CType", "TEXT DEFAULT ''"),
		col("colPos", "INTEGER DEFAULT 0"),
		col("hidden", "INTEGER DEFAULT 0"),
		col("deleted", "INTEGER DEFAULT 0"),
		col("starttime", "INTEGER DEFAULT 0"),
		col("endtime", "INTEGER DEFAULT 0"),
		col("fe_group", "TEXT DEFAULT ''"),
		col("tstamp", "INTEGER DEFAULT 0"),
		col("crdate", "INTEGER DEFAULT 0"),
		col("cruser_id", "INTEGER DEFAULT 0"),
		col("sorting", "INTEGER DEFAULT 0"),
		col("sys_language_uid", "INTEGER DEFAULT 0"),
		col("l10n_parent", "INTEGER DEFAULT 0"),
		col("l18n_cfg", "INTEGER DEFAULT 0"),
	}, versioningColumns()...)}
}

func cacheSchema(name string) Schema {
	return Schema{Name: name, Columns: []Column{
		col("id", "INTEGER PRIMARY KEY AUTOINCREMENT"),
		col("identifier", "TEXT NOT NULL"),
		col("expires", "INTEGER DEFAULT 0"),
		col("content", "TEXT"),
	}}
}

func cacheTagSchema(name string) Schema {
	return Schema{Name: name, Columns: []Column{
		col("id", "INTEGER PRIMARY KEY AUTOINCREMENT"),
		col("identifier", "TEXT NOT NULL"),
		col("tag", "TEXT NOT NULL"),
	}}
}

// CacheSchemas is the cache table family plus the reference index.
func CacheSchemas() []Schema {
	return []Schema{
		cacheSchema("cache_hash"),
		cacheSchema("cache_pages"),
		cacheSchema("cache_rootline"),
		cacheTagSchema("cache_hash_tags"),
		cacheTagSchema("cache_pages_tags"),
		cacheTagSchema("cache_rootline_tags"),
		{Name: "sys_refindex", Columns: []Column{
			col("hash", "TEXT PRIMARY KEY"),
			col("tablename", "TEXT"),
			col("recuid", "INTEGER"),
			col("field", "TEXT"),
			col("flexpointer", "TEXT"),
			col("softref_key", "TEXT"),
			col("softref_id", "TEXT"),
			col("sorting", "INTEGER DEFAULT 0"),
			col("workspace", "INTEGER DEFAULT 0"),
			col("ref_table", "TEXT"),
			col("ref_uid", "INTEGER"),
			col("ref_string", "TEXT"),
		}},
	}
}

// TemplateSchema is the TypoScript template table.
func TemplateSchema() Schema {
	return Schema{Name: "sys_template", Columns: []Column{
		col("uid", "INTEGER PRIMARY KEY AUTOINCREMENT"),
		col("pid", "INTEGER DEFAULT 0"),
		col("title", "TEXT"),
		col("sitetitle", "TEXT"),
		col("hidden", "INTEGER DEFAULT 0"),
		col("deleted", "INTEGER DEFAULT 0"),
		col("starttime", "INTEGER DEFAULT 0"),
		col("endtime", "INTEGER DEFAULT 0"),
		col("sorting", "INTEGER DEFAULT 0"),
		col("crdate", "INTEGER DEFAULT 0"),
		col("cruser_id", "INTEGER DEFAULT 0"),
		col("tstamp", "INTEGER DEFAULT 0"),
		col("root", "INTEGER DEFAULT 0"),
		col("clear", "INTEGER DEFAULT 0"),
		col("config", "TEXT"),
		col("constants", "TEXT"),
		col("nextLevel", "TEXT"),
		col("basedOn", "TEXT"),
		col("includeStaticAfterBasedOn", "INTEGER DEFAULT 0"),
	}}
}

// NewPages returns the pages table unit.
func NewPages(clock func() time.Time) *SchemaTable {
	return NewSchemaTable(PagesID, PagesSchema()).WithDefaults(timestamps(clock))
}

// NewTtContent returns the content element table unit. It is created after
// pages.
func NewTtContent(clock func() time.Time) *SchemaTable {
	return NewSchemaTable(TtContentID, TtContentSchema()).DependsOn(PagesID).WithDefaults(timestamps(clock))
}

// NewCaches returns the cache table family unit.
func NewCaches() *SchemaTable {
	return NewSchemaTable(CachesID, CacheSchemas()...)
}

// Template is the sys_template unit with a TypoScript helper.
type Template struct {
	*SchemaTable
}

// NewTemplate returns the template table unit. It is created after pages.
func NewTemplate(clock func() time.Time) *Template {
	return &Template{SchemaTable: NewSchemaTable(TemplateID, TemplateSchema()).DependsOn(PagesID).WithDefaults(timestamps(clock))}
}

// AddTypoScriptTemplate queues a template record on pageID. root defaults to
// 1 and title to DefaultTemplateTitle; root templates clear constants and
// setup.
func (t *Template) AddTypoScriptTemplate(typoScript string, pageID int, root *int, title string) error {
	isRoot := 1
	if root != nil {
		isRoot = *root
	}
	if title == "" {
		title = DefaultTemplateTitle
	}
	clearFlags := 0
	if isRoot != 0 {
		clearFlags = 3
	}
	return t.AddRow(TemplateSchema().Name, Row{
		"pid":    pageID,
		"title":  title,
		"config": typoScript,
		"root":   isRoot,
		"clear":  clearFlags,
	})
}

// Generic holds caller-declared schemas.
type Generic struct {
	*SchemaTable
}

// NewGeneric returns an empty generic table unit.
func NewGeneric() *Generic {
	return &Generic{SchemaTable: NewSchemaTable(GenericID)}
}

// AddSchema declares or replaces the schema for a table name.
func (g *Generic) AddSchema(schema Schema) error {
	if err := g.Mutable(); err != nil {
		return err
	}
	if schema.Name == "" || len(schema.Columns) == 0 {
		return SchemaError{Table: schema.Name, Reason: "schema needs a name and at least one column"}
	}
	for i := range g.schemas {
		if g.schemas[i].Name == schema.Name {
			g.schemas[i] = schema
			return nil
		}
	}
	g.schemas = append(g.schemas, schema)
	return nil
}

// SetDefaults installs the default-value hook applied before each insert.
func (g *Generic) SetDefaults(fn DefaultsFunc) error {
	if err := g.Mutable(); err != nil {
		return err
	}
	g.defaults = fn
	return nil
}
