package ts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromFileContextCatalog(t *testing.T) {
	c, err := NewFromFile(filepath.Join("testdata", "harbour-barcode-hu.ts"))
	require.NoError(t, err)

	assert.Equal(t, "2.1", c.Version)
	assert.Equal(t, "hu_HU", c.Language)
	require.NotEmpty(t, c.Contexts)
	assert.Equal(t, "AboutPage", c.Contexts[0].Name)

	m := c.Contexts[0].Messages[0]
	assert.Equal(t, "About CodeReader", m.Source)
	assert.Equal(t, "A CodeReader-ről", m.Translation.Text)
	assert.Equal(t, trans.Finished, m.Translation.Status)

	table, err := trans.NewTable(c)
	require.NoError(t, err)
	assert.Equal(t, "Vágólapra", table.Translate("HistoryPage", "Copy to clipboard", "", -1))
	// unfinished
	assert.Equal(t, "Max history size (saved values: %1)", table.Translate("SettingsPage", "Max history size (saved values: %1)", "", -1))
}

func TestNewFromFileIdCatalog(t *testing.T) {
	c, err := NewFromFile(filepath.Join("testdata", "harbour-barcode-it.ts"))
	require.NoError(t, err)

	require.Len(t, c.Contexts, 1)
	assert.Equal(t, "", c.Contexts[0].Name)

	var numerus *trans.Message
	c.Each(func(_ *trans.Context, m *trans.Message) {
		if m.ID == "settings-history-slider_value" {
			numerus = m
		}
	})
	require.NotNil(t, numerus)
	assert.True(t, numerus.Numerus)
	assert.Equal(t, "History slider value", numerus.ExtraComment)
	assert.Equal(t, trans.Unfinished, numerus.Translation.Status)
	assert.Equal(t, []string{"%1 elemento", "%1 elementi"}, numerus.Translation.Forms)

	first := c.Contexts[0].Messages[0]
	assert.Equal(t, "about-title", first.ID)
	assert.Equal(t, "About page title, label and menu item", first.ExtraComment)
}

func TestEncodeMatchesLupdateOutput(t *testing.T) {
	for _, name := range []string{"harbour-barcode-hu.ts", "harbour-barcode-it.ts"} {
		t.Run(name, func(t *testing.T) {
			orig, err := os.ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)

			c, err := Decode(bytes.NewReader(orig))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, c))
			assert.Equal(t, string(orig), buf.String())
		})
	}
}

func TestEncodeOptionalElements(t *testing.T) {
	c := &trans.Catalog{
		Language:       "de",
		SourceLanguage: "en",
		Contexts: []*trans.Context{{
			Name: "HistoryPage",
			Messages: []*trans.Message{
				{
					Source:            "Delete <all>",
					OldSource:         "Delete everything",
					Comment:           "menu",
					TranslatorComment: "keep short",
					Locations:         []trans.Location{{File: "../qml/HistoryPage.qml", Line: "42"}},
					Translation:       trans.Translation{Status: trans.Vanished, Text: "Alle \"löschen\""},
				},
				{Source: "%n item(s)", Numerus: true, Translation: trans.Translation{Status: trans.Unfinished}},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c))
	out := buf.String()

	assert.Contains(t, out, `<TS version="2.1" language="de" sourcelanguage="en">`)
	assert.Contains(t, out, `<location filename="../qml/HistoryPage.qml" line="42"/>`)
	assert.Contains(t, out, `<source>Delete &lt;all&gt;</source>`)
	assert.Contains(t, out, `<oldsource>Delete everything</oldsource>`)
	assert.Contains(t, out, `<translatorcomment>keep short</translatorcomment>`)
	assert.Contains(t, out, `<translation type="vanished">Alle &quot;löschen&quot;</translation>`)
	assert.Contains(t, out, "<message numerus=\"yes\">")
	assert.Contains(t, out, "<numerusform></numerusform>")

	back, err := Decode(strings.NewReader(out))
	require.NoError(t, err)
	m := back.Contexts[0].Messages[0]
	assert.Equal(t, "Delete <all>", m.Source)
	assert.Equal(t, "menu", m.Comment)
	assert.Equal(t, []trans.Location{{File: "../qml/HistoryPage.qml", Line: "42"}}, m.Locations)
	assert.Equal(t, trans.Vanished, m.Translation.Status)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader(`<TS version="2.1"></TS>`))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`<TS language="it"><context>`))
	assert.Error(t, err)
}

func TestNewFromFileLanguageMismatch(t *testing.T) {
	orig, err := os.ReadFile(filepath.Join("testdata", "harbour-barcode-it.ts"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "harbour-barcode-de.ts")
	require.NoError(t, os.WriteFile(path, orig, 0644))

	_, err = NewFromFile(path)
	assert.Error(t, err)

	// no language in the name, nothing to compare against
	path = filepath.Join(dir, "harbour-barcode.ts")
	require.NoError(t, os.WriteFile(path, orig, 0644))
	_, err = NewFromFile(path)
	assert.NoError(t, err)
}

func TestLangFromFilename(t *testing.T) {
	tests := []struct {
		file, prefix, lang string
		ok                 bool
	}{
		{"harbour-barcode-hu.ts", "harbour-barcode", "hu", true},
		{"harbour-barcode-it.ts", "harbour-barcode", "it", true},
		{"app_pt_BR.ts", "app", "pt_BR", true},
		{"harbour-barcode-zh_CN.ts", "harbour-barcode", "zh_CN", true},
		{"harbour-barcode.ts", "", "", false},
		{"it.ts", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			prefix, lang, err := LangFromFilename(tt.file)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.lang, lang)
		})
	}
}

func TestSameLanguage(t *testing.T) {
	assert.True(t, SameLanguage("hu_HU", "hu"))
	assert.True(t, SameLanguage("pt_BR", "pt-br"))
	assert.False(t, SameLanguage("pt_BR", "pt_PT"))
	assert.False(t, SameLanguage("it", "de"))
}

func TestExport(t *testing.T) {
	c, err := NewFromFile(filepath.Join("testdata", "harbour-barcode-it.ts"))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := Export(c, dir, "harbour-barcode")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "harbour-barcode-it.ts"), path)

	back, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
