package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/brannow/typo3-dev-springboard/internal/config"
)

// translate converts the decoded HCL schema of one file into the agnostic
// blueprint.
func translate(root *fileRoot, evalCtx *hcl.EvalContext) (*config.Blueprint, error) {
	b := &config.Blueprint{}

	if root.InstallDir != nil {
		b.InstallDir = *root.InstallDir
	}

	if root.Settings != nil {
		if err := decodeSettings(root.Settings, evalCtx, b); err != nil {
			return nil, err
		}
	}

	if r := root.Request; r != nil {
		b.Request = &config.Request{
			URI:    deref(r.URI, "/"),
			Domain: deref(r.Domain, ""),
			Method: deref(r.Method, ""),
			HTTPS:  deref(r.HTTPS, false),
		}
	}

	if s := root.Site; s != nil {
		site := &config.Site{
			Name:                    deref(s.Name, ""),
			RootPageID:              s.RootPageID,
			DisableFallbackLanguage: deref(s.DisableFallbackLanguage, false),
		}
		for _, lang := range s.Languages {
			site.Languages = append(site.Languages, config.Language{Name: lang.Name, Slot: lang.Slot})
		}
		b.Site = site
	}

	if d := root.Database; d != nil {
		b.Database = &config.Database{Path: deref(d.Path, "")}
	}

	for _, page := range root.Pages {
		row, err := decodeRecord(page.Body, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
		b.Pages = append(b.Pages, row)
	}
	for _, content := range root.Contents {
		row, err := decodeRecord(content.Body, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		b.Contents = append(b.Contents, row)
	}

	for _, t := range root.Tables {
		table := config.Table{Name: t.Name}
		for _, c := range t.Columns {
			table.Columns = append(table.Columns, config.Column{Name: c.Name, Definition: c.Definition})
		}
		b.Tables = append(b.Tables, table)
	}
	for _, r := range root.Rows {
		row, err := decodeRecord(r.Body, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", r.Table, err)
		}
		b.Rows = append(b.Rows, config.TableRow{Table: r.Table, Values: row})
	}

	for _, t := range root.Templates {
		b.Templates = append(b.Templates, config.Template{
			PageID:     t.PageID,
			Root:       t.Root,
			Title:      deref(t.Title, ""),
			TypoScript: t.TypoScript,
		})
	}
	return b, nil
}

// decodeSettings evaluates the settings expression. An absent attribute
// evaluates to null and leaves b.Settings unset.
func decodeSettings(expr hcl.Expression, evalCtx *hcl.EvalContext, b *config.Blueprint) error {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return fmt.Errorf("settings: %w", diags)
	}
	if val.IsNull() {
		return nil
	}
	settings, err := toGo(val)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	m, ok := settings.(map[string]any)
	if !ok {
		return fmt.Errorf("settings must be an object")
	}
	b.Settings = m
	return nil
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
