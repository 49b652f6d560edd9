package app

import (
	"github.com/brannow/typo3-dev-springboard/internal/config"
	"github.com/brannow/typo3-dev-springboard/internal/springboard"
	"github.com/brannow/typo3-dev-springboard/modules/database"
	"github.com/brannow/typo3-dev-springboard/modules/site"
)

// Apply replays blueprint onto b and returns the first configuration error.
func Apply(b *springboard.Builder, bp *config.Blueprint) error {
	if bp.InstallDir != "" {
		b.InstallDir(bp.InstallDir)
	}
	if bp.Settings != nil {
		b.AddSettings(bp.Settings)
	}

	if r := bp.Request; r != nil {
		b.WithRequest(r.URI, r.Domain, r.Method, r.HTTPS)
	}

	if s := bp.Site; s != nil {
		if s.Name != "" {
			b.SetSiteName(s.Name)
		}
		if s.RootPageID != nil {
			b.SetSiteRootPageID(*s.RootPageID)
		}
		b.DisableFallbackLanguage(s.DisableFallbackLanguage)
		for _, l := range s.Languages {
			lang, err := site.ParseLanguage(l.Name)
			if err != nil {
				return err
			}
			b.SetSiteLanguage(lang, l.Slot)
		}
	}

	if d := bp.Database; d != nil && d.Path != "" {
		b.SetDatabasePath(d.Path)
	}

	for _, t := range bp.Tables {
		schema := database.Schema{Name: t.Name}
		for _, c := range t.Columns {
			schema.Columns = append(schema.Columns, database.Column{Name: c.Name, Definition: c.Definition})
		}
		b.AddTableSchema(schema)
	}

	for _, row := range bp.Pages {
		b.AddPageRecord(database.Row(row))
	}
	for _, row := range bp.Contents {
		b.AddContentRecord(database.Row(row))
	}
	for _, r := range bp.Rows {
		b.AddRecord(r.Table, database.Row(r.Values))
	}
	for _, t := range bp.Templates {
		b.AddTypoScriptTemplate(t.TypoScript, t.PageID, t.Root, t.Title)
	}

	return b.Err()
}
