package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level construct a blueprint file may contain.
type fileRoot struct {
	InstallDir *string          `hcl:"install_dir,optional"`
	Settings   hcl.Expression   `hcl:"settings,optional"`
	Request    *requestBlock    `hcl:"request,block"`
	Site       *siteBlock       `hcl:"site,block"`
	Database   *databaseBlock   `hcl:"database,block"`
	Pages      []*recordBlock   `hcl:"page,block"`
	Contents   []*recordBlock   `hcl:"content,block"`
	Tables     []*tableBlock    `hcl:"table,block"`
	Rows       []*rowBlock      `hcl:"row,block"`
	Templates  []*templateBlock `hcl:"template,block"`
}

type requestBlock struct {
	URI    *string `hcl:"uri,optional"`
	Domain *string `hcl:"domain,optional"`
	Method *string `hcl:"method,optional"`
	HTTPS  *bool   `hcl:"https,optional"`
}

type siteBlock struct {
	Name                    *string          `hcl:"name,optional"`
	RootPageID              *int             `hcl:"root_page_id,optional"`
	DisableFallbackLanguage *bool            `hcl:"disable_fallback_language,optional"`
	Languages               []*languageBlock `hcl:"language,block"`
}

type languageBlock struct {
	Name string `hcl:"name,label"`
	Slot *int   `hcl:"slot,optional"`
}

type databaseBlock struct {
	Path *string `hcl:"path,optional"`
}

// recordBlock holds free-form column attributes.
type recordBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type rowBlock struct {
	Table string   `hcl:"table,label"`
	Body  hcl.Body `hcl:",remain"`
}

type tableBlock struct {
	Name    string         `hcl:"name,label"`
	Columns []*columnBlock `hcl:"column,block"`
}

type columnBlock struct {
	Name       string `hcl:"name,label"`
	Definition string `hcl:"definition"`
}

type templateBlock struct {
	PageID     int     `hcl:"page_id"`
	Root       *int    `hcl:"root,optional"`
	Title      *string `hcl:"title,optional"`
	TypoScript string  `hcl:"typoscript"`
}
