// Package site builds the site configuration document: root page, base URL
// and the ordered language list.
package site

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/modules/request"
)

// ID is the stable identifier of the site feature.
const ID = "Site"

// Kind binds ID to New.
var Kind = feature.Kind{ID: ID, New: func() feature.Feature { return New() }}

// ErrNegativeSlot is returned when a language is requested at a slot below 0.
var ErrNegativeSlot = errors.New("language slot must not be negative")

// Module implements the feature.Module interface for this package.
type Module struct{}

// Register binds the site kind.
func (m *Module) Register(r *feature.Registry) {
	r.Bind(Kind)
}

// Document is the generated site configuration.
type Document struct {
	RootPageID int              `yaml:"rootPageId"`
	Base       string           `yaml:"base"`
	Languages  []LanguageRecord `yaml:"languages,omitempty"`
}

type entry struct {
	lang Language
	slot *int
}

// Slot returns a requested language slot for SetLanguage.
func Slot(n int) *int {
	return &n
}

// Feature accumulates site settings until it is executed.
type Feature struct {
	feature.Lifecycle

	languages       []entry
	rootPageID      int
	verbatim        map[string]any
	disableFallback bool

	resolved any
}

// New returns a site rooted at page 1 with no languages configured.
func New() *Feature {
	return &Feature{rootPageID: 1}
}

// Identifier implements feature.Feature.
func (f *Feature) Identifier() string { return ID }

// Requires implements feature.Feature.
func (f *Feature) Requires() []string { return []string{request.ID} }

// AddLanguage appends languages without a requested slot.
func (f *Feature) AddLanguage(langs ...Language) error {
	for _, l := range langs {
		if err := f.SetLanguage(l, nil); err != nil {
			return err
		}
	}
	return nil
}

// SetLanguage configures a language, optionally at a requested slot. Slot N
// inserts the language before position N of the list built from the
// unslotted languages. Setting a language again replaces it in place.
func (f *Feature) SetLanguage(lang Language, slot *int) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	if slot != nil && *slot < 0 {
		return fmt.Errorf("%s at %d: %w", lang.Name, *slot, ErrNegativeSlot)
	}
	e := entry{lang: lang, slot: slot}
	for i := range f.languages {
		if f.languages[i].lang.Name == lang.Name {
			f.languages[i] = e
			return nil
		}
	}
	f.languages = append(f.languages, e)
	return nil
}

// SetRootPageID sets the site's root page uid.
func (f *Feature) SetRootPageID(id int) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.rootPageID = id
	return nil
}

// SetConfig installs a complete site configuration used verbatim. nil turns
// generation back on.
func (f *Feature) SetConfig(config map[string]any) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.verbatim = config
	return nil
}

// DisableFallbackLanguage stops the default [EN, DE] languages from being
// synthesized when none are configured.
func (f *Feature) DisableFallbackLanguage(disable bool) error {
	if err := f.Mutable(); err != nil {
		return err
	}
	f.disableFallback = disable
	return nil
}

// Config returns the document computed by Execute: either the verbatim map
// or a *Document. It is nil before execution.
func (f *Feature) Config() any {
	return f.resolved
}

// Execute resolves the site document.
func (f *Feature) Execute(ctx context.Context, deps feature.Executed) error {
	if err := f.Transition(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	if f.verbatim != nil {
		f.resolved = f.verbatim
		logger.Debug("Using verbatim site configuration.")
		return nil
	}

	req, err := feature.Dependency[*request.Feature](deps, request.ID)
	if err != nil {
		return err
	}

	doc := &Document{
		RootPageID: f.rootPageID,
		Base:       req.Context().BaseURL(),
	}
	for id, lang := range f.order() {
		doc.Languages = append(doc.Languages, lang.Record(id))
	}
	f.resolved = doc
	logger.Debug("Site configuration resolved.", "root_page_id", doc.RootPageID, "languages", len(doc.Languages))
	return nil
}

// order splices slotted languages, in the order they were configured, into
// the list of unslotted ones. A slot past the end appends.
func (f *Feature) order() []Language {
	entries := f.languages
	if len(entries) == 0 && !f.disableFallback {
		entries = []entry{{lang: DE}, {lang: EN, slot: Slot(0)}}
	}

	var ordered []Language
	for _, e := range entries {
		if e.slot == nil {
			ordered = append(ordered, e.lang)
		}
	}
	for _, e := range entries {
		if e.slot == nil {
			continue
		}
		at := min(*e.slot, len(ordered))
		ordered = slices.Insert(ordered, at, e.lang)
	}
	return ordered
}
