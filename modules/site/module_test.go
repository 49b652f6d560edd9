package site

import (
	"bytes"
	"context"
	"testing"

	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/modules/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func executedRequest(t *testing.T, domain string, https bool) feature.Executed {
	t.Helper()
	req := request.New()
	require.NoError(t, req.SetDomain(domain))
	require.NoError(t, req.SetHTTPS(https))
	require.NoError(t, req.Execute(context.Background(), nil))
	return feature.Executed{request.ID: req}
}

func languageNames(t *testing.T, f *Feature) []string {
	t.Helper()
	doc, ok := f.Config().(*Document)
	require.True(t, ok)
	var names []string
	for i, rec := range doc.Languages {
		assert.Equal(t, i, rec.LanguageID)
		names = append(names, rec.ISO6391)
	}
	return names
}

func TestExecute(t *testing.T) {
	fr, err := ParseLanguage("fr-FR")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		configure func(t *testing.T, f *Feature)
		want      []string
	}{
		{
			name:      "fallback puts EN first",
			configure: func(t *testing.T, f *Feature) {},
			want:      []string{"en", "de"},
		},
		{
			name: "fallback disabled",
			configure: func(t *testing.T, f *Feature) {
				require.NoError(t, f.DisableFallbackLanguage(true))
			},
			want: nil,
		},
		{
			name: "slot zero precedes appended languages",
			configure: func(t *testing.T, f *Feature) {
				require.NoError(t, f.SetLanguage(fr, Slot(0)))
				require.NoError(t, f.AddLanguage(DE, EN))
			},
			want: []string{"fr", "de", "en"},
		},
		{
			name: "slot past the end appends",
			configure: func(t *testing.T, f *Feature) {
				require.NoError(t, f.SetLanguage(EN, Slot(5)))
				require.NoError(t, f.AddLanguage(DE))
			},
			want: []string{"de", "en"},
		},
		{
			name: "slots splice in configuration order",
			configure: func(t *testing.T, f *Feature) {
				require.NoError(t, f.AddLanguage(DE))
				require.NoError(t, f.SetLanguage(EN, Slot(0)))
				require.NoError(t, f.SetLanguage(fr, Slot(1)))
			},
			want: []string{"en", "fr", "de"},
		},
		{
			name: "setting a language again replaces it in place",
			configure: func(t *testing.T, f *Feature) {
				require.NoError(t, f.AddLanguage(DE, EN))
				require.NoError(t, f.SetLanguage(DE, Slot(1)))
			},
			want: []string{"en", "de"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := New()
			tc.configure(t, f)
			require.NoError(t, f.Execute(context.Background(), executedRequest(t, "example.test", true)))
			assert.Equal(t, tc.want, languageNames(t, f))
		})
	}
}

func TestExecuteDocument(t *testing.T) {
	f := New()
	require.NoError(t, f.SetRootPageID(7))
	require.NoError(t, f.Execute(context.Background(), executedRequest(t, "example.test", false)))

	doc := f.Config().(*Document)
	assert.Equal(t, 7, doc.RootPageID)
	assert.Equal(t, "http://example.test/", doc.Base)
	assert.Equal(t, LanguageRecord{
		Title:           "English",
		Enabled:         true,
		LanguageID:      0,
		Base:            "/",
		TYPO3Language:   "default",
		Locale:          "en_US.UTF-8",
		ISO6391:         "en",
		NavigationTitle: "English",
		HrefLang:        "en-us",
		Direction:       "ltr",
		Flag:            "us",
	}, doc.Languages[0])
	assert.Equal(t, "de_DE.UTF-8", doc.Languages[1].Locale)
	assert.Equal(t, "/de/", doc.Languages[1].Base)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	require.NoError(t, enc.Encode(doc))
	assert.Contains(t, buf.String(), "rootPageId: 7\nbase: http://example.test/\nlanguages:\n  - title: English\n")
	assert.Contains(t, buf.String(), "iso-639-1: de\n")
}

func TestExecuteVerbatim(t *testing.T) {
	config := map[string]any{"rootPageId": 3, "base": "/"}
	f := New()
	require.NoError(t, f.SetConfig(config))
	require.NoError(t, f.AddLanguage(DE))

	require.NoError(t, f.Execute(context.Background(), nil))
	assert.Equal(t, config, f.Config())
}

func TestExecuteWithoutRequest(t *testing.T) {
	err := New().Execute(context.Background(), feature.Executed{})
	assert.Error(t, err)
}

func TestMutationGuard(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.SetLanguage(DE, Slot(-1)), ErrNegativeSlot)

	require.NoError(t, f.Execute(context.Background(), executedRequest(t, "localhost", false)))
	assert.ErrorIs(t, f.AddLanguage(DE), feature.ErrAlreadyExecuted)
	assert.ErrorIs(t, f.SetRootPageID(2), feature.ErrAlreadyExecuted)
	assert.ErrorIs(t, f.SetConfig(nil), feature.ErrAlreadyExecuted)
}

func TestParseLanguage(t *testing.T) {
	de, err := ParseLanguage("de")
	require.NoError(t, err)
	assert.Equal(t, DE, de)

	fr, err := ParseLanguage("fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "FR", fr.Name)
	assert.Equal(t, "/fr/", fr.Base)
	assert.Equal(t, "fr_FR.UTF-8", fr.Locale())
	assert.Equal(t, "fr-fr", fr.HrefLang())
	assert.Equal(t, "fr", fr.Flag)

	assert.Equal(t, "rtl", NewLanguage(language.Arabic).Direction())

	_, err = ParseLanguage("not a language")
	assert.Error(t, err)
}
