package config

import (
	"context"
)

// Loader reads blueprint files from the given paths (files or directories)
// and merges them into one Blueprint.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Blueprint, error)
}

// Row is a record of column name to a scalar value (nil, bool, int64,
// float64 or string).
type Row map[string]any

// Blueprint is the declarative description of one environment.
type Blueprint struct {
	InstallDir string
	// Settings are deep-merged into the system settings.
	Settings  map[string]any
	Request   *Request
	Site      *Site
	Database  *Database
	Pages     []Row
	Contents  []Row
	Tables    []Table
	Rows      []TableRow
	Templates []Template
}

// Request configures the simulated request. Empty fields keep defaults.
type Request struct {
	URI    string
	Domain string
	Method string
	HTTPS  bool
}

// Site configures the site document.
type Site struct {
	Name                    string
	RootPageID              *int
	DisableFallbackLanguage bool
	Languages               []Language
}

// Language is a site language, optionally at a requested slot.
type Language struct {
	Name string
	Slot *int
}

// Database configures the embedded store.
type Database struct {
	Path string
}

// Table is a caller-declared schema.
type Table struct {
	Name    string
	Columns []Column
}

// Column is a column name and its SQL definition.
type Column struct {
	Name       string
	Definition string
}

// TableRow is a row for a table name declared by any table unit.
type TableRow struct {
	Table  string
	Values Row
}

// Template is a TypoScript template record.
type Template struct {
	PageID     int
	Root       *int
	Title      string
	TypoScript string
}

// Merge folds other into b. Scalars set in other win; lists are appended.
func (b *Blueprint) Merge(other *Blueprint) {
	if other == nil {
		return
	}
	if other.InstallDir != "" {
		b.InstallDir = other.InstallDir
	}
	if other.Settings != nil {
		if b.Settings == nil {
			b.Settings = map[string]any{}
		}
		for k, v := range other.Settings {
			b.Settings[k] = v
		}
	}
	if other.Request != nil {
		b.Request = other.Request
	}
	if other.Site != nil {
		b.Site = other.Site
	}
	if other.Database != nil {
		b.Database = other.Database
	}
	b.Pages = append(b.Pages, other.Pages...)
	b.Contents = append(b.Contents, other.Contents...)
	b.Tables = append(b.Tables, other.Tables...)
	b.Rows = append(b.Rows, other.Rows...)
	b.Templates = append(b.Templates, other.Templates...)
}
