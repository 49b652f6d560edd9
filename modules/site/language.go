package site

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language describes one site language. Records derive from it with the
// language's position as languageId.
type Language struct {
	// Name is the key a language is configured under ("DE", "EN").
	Name          string
	Tag           language.Tag
	Title         string
	Base          string
	TYPO3Language string
	Flag          string
}

// Built-in languages.
var (
	DE = Language{
		Name:          "DE",
		Tag:           language.MustParse("de-DE"),
		Title:         "Deutsch",
		Base:          "/de/",
		TYPO3Language: "de",
		Flag:          "de",
	}
	EN = Language{
		Name:          "EN",
		Tag:           language.AmericanEnglish,
		Title:         "English",
		Base:          "/",
		TYPO3Language: "default",
		Flag:          "us",
	}
)

// NewLanguage derives a language from a BCP 47 tag: the name is the
// upper-cased base language, the base path is /<lang>/ and the title is the
// language's own name for itself.
func NewLanguage(tag language.Tag) Language {
	base, _ := tag.Base()
	region, _ := tag.Region()
	code := base.String()
	return Language{
		Name:          strings.ToUpper(code),
		Tag:           tag,
		Title:         display.Self.Name(language.Make(code)),
		Base:          "/" + code + "/",
		TYPO3Language: code,
		Flag:          strings.ToLower(region.String()),
	}
}

// ParseLanguage resolves a configured language name. DE and EN map to the
// built-ins, anything else is parsed as a BCP 47 tag.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToUpper(name) {
	case DE.Name:
		return DE, nil
	case EN.Name:
		return EN, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return Language{}, fmt.Errorf("unknown site language %q: %w", name, err)
	}
	return NewLanguage(tag), nil
}

// ISO6391 returns the two-letter language code.
func (l Language) ISO6391() string {
	base, _ := l.Tag.Base()
	return base.String()
}

// Locale returns the POSIX locale, e.g. de_DE.UTF-8.
func (l Language) Locale() string {
	region, _ := l.Tag.Region()
	return l.ISO6391() + "_" + region.String() + ".UTF-8"
}

// HrefLang returns the lower-cased language-region pair, e.g. en-us.
func (l Language) HrefLang() string {
	region, _ := l.Tag.Region()
	return l.ISO6391() + "-" + strings.ToLower(region.String())
}

// Direction returns "rtl" for right-to-left scripts and "ltr" otherwise.
func (l Language) Direction() string {
	script, _ := l.Tag.Script()
	switch script.String() {
	case "Arab", "Hebr", "Syrc", "Thaa", "Nkoo", "Adlm":
		return "rtl"
	}
	return "ltr"
}

// LanguageRecord is one entry of a site's language list as written to the
// site configuration document.
type LanguageRecord struct {
	Title           string `yaml:"title"`
	Enabled         bool   `yaml:"enabled"`
	LanguageID      int    `yaml:"languageId"`
	Base            string `yaml:"base"`
	TYPO3Language   string `yaml:"typo3Language"`
	Locale          string `yaml:"locale"`
	ISO6391         string `yaml:"iso-639-1"`
	NavigationTitle string `yaml:"navigationTitle"`
	HrefLang        string `yaml:"hreflang"`
	Direction       string `yaml:"direction"`
	Flag            string `yaml:"flag"`
}

// Record renders the language as the record with the given languageId.
func (l Language) Record(id int) LanguageRecord {
	return LanguageRecord{
		Title:           l.Title,
		Enabled:         true,
		LanguageID:      id,
		Base:            l.Base,
		TYPO3Language:   l.TYPO3Language,
		Locale:          l.Locale(),
		ISO6391:         l.ISO6391(),
		NavigationTitle: l.Title,
		HrefLang:        l.HrefLang(),
		Direction:       l.Direction(),
		Flag:            l.Flag,
	}
}
