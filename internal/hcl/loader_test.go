package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brannow/typo3-dev-springboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const fullBlueprint = `
install_dir = "./app"

settings = {
  SYS = {
    encryptionKey = "from-blueprint"
  }
}

request {
  uri    = "/de/"
  domain = "example.test"
  method = "post"
  https  = true
}

site {
  name                      = "demo"
  root_page_id              = 3
  disable_fallback_language = true
  language "EN" {
    slot = 0
  }
  language "DE" {}
}

database {
  path = "./app/var/db.sqlite"
}

page {
  uid    = 1
  title  = "Home"
  hidden = false
  author = env.SPRINGBOARD_TEST_AUTHOR
}

content {
  pid    = 1
  header = "Hello"
  CType  = "text"
  ratio  = 1.5
  note   = null
}

table "tx_demo" {
  column "uid" {
    definition = "INTEGER PRIMARY KEY AUTOINCREMENT"
  }
  column "label" {
    definition = "TEXT"
  }
}

row "tx_demo" {
  label = "first"
}

template {
  page_id    = 1
  typoscript = "page = PAGE"
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("SPRINGBOARD_TEST_AUTHOR", "jdoe")
	path := writeFile(t, t.TempDir(), "springboard.hcl", fullBlueprint)

	b, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "./app", b.InstallDir)
	assert.Equal(t, map[string]any{"SYS": map[string]any{"encryptionKey": "from-blueprint"}}, b.Settings)
	assert.Equal(t, &config.Request{URI: "/de/", Domain: "example.test", Method: "post", HTTPS: true}, b.Request)

	require.NotNil(t, b.Site)
	assert.Equal(t, "demo", b.Site.Name)
	require.NotNil(t, b.Site.RootPageID)
	assert.Equal(t, 3, *b.Site.RootPageID)
	assert.True(t, b.Site.DisableFallbackLanguage)
	require.Len(t, b.Site.Languages, 2)
	assert.Equal(t, "EN", b.Site.Languages[0].Name)
	require.NotNil(t, b.Site.Languages[0].Slot)
	assert.Equal(t, 0, *b.Site.Languages[0].Slot)
	assert.Nil(t, b.Site.Languages[1].Slot)

	assert.Equal(t, &config.Database{Path: "./app/var/db.sqlite"}, b.Database)

	assert.Equal(t, []config.Row{{"uid": int64(1), "title": "Home", "hidden": false, "author": "jdoe"}}, b.Pages)
	assert.Equal(t, []config.Row{{"pid": int64(1), "header": "Hello", "CType": "text", "ratio": 1.5, "note": nil}}, b.Contents)

	assert.Equal(t, []config.Table{{Name: "tx_demo", Columns: []config.Column{
		{Name: "uid", Definition: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Name: "label", Definition: "TEXT"},
	}}}, b.Tables)
	assert.Equal(t, []config.TableRow{{Table: "tx_demo", Values: config.Row{"label": "first"}}}, b.Rows)
	assert.Equal(t, []config.Template{{PageID: 1, TypoScript: "page = PAGE"}}, b.Templates)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", "install_dir = \"./first\"\npage {\n  uid = 1\n}\n")
	writeFile(t, dir, "nested/b.hcl", "install_dir = \"./second\"\npage {\n  uid = 2\n}\n")
	writeFile(t, dir, "ignored.txt", "not hcl")

	b, err := NewLoader().Load(context.Background(), dir, filepath.Join(dir, "a.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "./second", b.InstallDir)
	assert.Equal(t, []config.Row{{"uid": int64(1)}, {"uid": int64(2)}}, b.Pages)
	assert.Nil(t, b.Request)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "request {"},
		{name: "unknown block", content: "unknown {}\n"},
		{name: "nested block in record", content: "page {\n  inner {}\n}\n"},
		{name: "template without typoscript", content: "template {\n  page_id = 1\n}\n"},
		{name: "settings not an object", content: "settings = \"x\"\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.hcl", tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			assert.Error(t, err)
		})
	}

	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Error(t, err)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), t.TempDir())
		assert.Error(t, err)
	})
}

func TestToGo(t *testing.T) {
	path := writeFile(t, t.TempDir(), "big.hcl", "page {\n  big = 12345678901234567890\n}\n")
	b, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, b.Pages, 1)
	assert.IsType(t, float64(0), b.Pages[0]["big"])

	list, err := toGo(cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a"), cty.True}))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a", true}, list)

	obj, err := toGo(cty.ObjectVal(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NullVal(cty.String)}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "b": nil}, obj)
}

func TestLoadRejectsNonScalarRowValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "list in page", content: "page {\n  tags = [1, 2]\n}\n"},
		{name: "object in content", content: "content {\n  meta = { a = 1 }\n}\n"},
		{name: "object in row", content: "row \"tx_demo\" {\n  data = { a = 1 }\n}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "rows.hcl", tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be a string, number, bool or null")
		})
	}
}
