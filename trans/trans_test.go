package trans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		Version:  "2.1",
		Language: "it",
		Contexts: []*Context{
			{
				Name: "",
				Messages: []*Message{
					{ID: "about-title", Source: "About CodeReader", Translation: Translation{Text: "Informazioni su CodeReader"}},
					{ID: "about-contributors-text", Source: "%1 and others.", Translation: Translation{Status: Unfinished, Text: "%1 e altri."}},
					{ID: "scan-status-busy", Source: "Scan in progress ...", Translation: Translation{Status: Unfinished}},
					{ID: "settings-history-slider_value", Source: "%n item(s)", Numerus: true, Translation: Translation{
						Forms: []string{"%n elemento", "%n elementi"},
					}},
					{ID: "settings-marker-slider_value", Source: "%n second(s)", Numerus: true, Translation: Translation{
						Status: Unfinished,
						Forms:  []string{"%n secondo", "%n secondi"},
					}},
				},
			},
			{
				Name: "HistoryPage",
				Messages: []*Message{
					{Source: "Delete", Translation: Translation{Text: "Elimina"}},
					{Source: "Delete", Comment: "menu", Translation: Translation{Text: "Cancella"}},
					{Source: "History", Translation: Translation{Status: Obsolete, Text: "Cronologia"}},
				},
			},
		},
	}
}

func TestTableTranslateID(t *testing.T) {
	table, err := NewTable(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "Informazioni su CodeReader", table.TranslateID("about-title", -1))
	// unfinished falls back to source
	assert.Equal(t, "%1 and others.", table.TranslateID("about-contributors-text", -1))
	assert.Equal(t, "Scan in progress ...", table.TranslateID("scan-status-busy", -1))
	assert.Equal(t, "missing-id", table.TranslateID("missing-id", -1))
}

func TestTableNumerus(t *testing.T) {
	table, err := NewTable(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "1 elemento", table.TranslateID("settings-history-slider_value", 1))
	assert.Equal(t, "5 elementi", table.TranslateID("settings-history-slider_value", 5))
	assert.Equal(t, "0 elementi", table.TranslateID("settings-history-slider_value", 0))
	assert.Equal(t, "%n elemento", table.TranslateID("settings-history-slider_value", -1))
	assert.Equal(t, "3 second(s)", table.TranslateID("settings-marker-slider_value", 3))
}

func TestTableTranslateContext(t *testing.T) {
	table, err := NewTable(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "Elimina", table.Translate("HistoryPage", "Delete", "", -1))
	assert.Equal(t, "Cancella", table.Translate("HistoryPage", "Delete", "menu", -1))
	assert.Equal(t, "History", table.Translate("HistoryPage", "History", "", -1))
	assert.Equal(t, "Delete", table.Translate("SettingsPage", "Delete", "", -1))
	// id based messages are reachable by source text too
	assert.Equal(t, "Informazioni su CodeReader", table.Translate("", "About CodeReader", "", -1))

	_, ok := table.Lookup("HistoryPage", "History", "", -1)
	assert.False(t, ok)
}

func TestTableDuplicateKey(t *testing.T) {
	c := testCatalog()
	c.Contexts[1].Messages = append(c.Contexts[1].Messages, &Message{Source: "Delete", Translation: Translation{Text: "x"}})

	table, err := NewTable(c)
	require.NoError(t, err)
	assert.Equal(t, []Key{{Context: "HistoryPage", Source: "Delete"}}, table.Duplicates())
	assert.Equal(t, "Elimina", table.Translate("HistoryPage", "Delete", "", -1))
}

func TestTableBadLanguage(t *testing.T) {
	_, err := NewTable(&Catalog{Language: "??"})
	assert.Error(t, err)
}

func TestTranslatorChain(t *testing.T) {
	it, err := NewTable(testCatalog())
	require.NoError(t, err)

	base := &Catalog{Language: "it", Contexts: []*Context{{Messages: []*Message{
		{ID: "scan-status-busy", Source: "Scan in progress ...", Translation: Translation{Text: "Scansione in corso ..."}},
	}}}}
	fallback, err := NewTable(base)
	require.NoError(t, err)

	tr := NewTranslator(FallbackSource, it, nil, fallback)
	assert.Equal(t, "it", tr.Language())
	assert.Equal(t, "Scansione in corso ...", tr.TranslateID("scan-status-busy", -1))
	assert.Equal(t, "Informazioni su CodeReader", tr.TranslateID("about-title", -1))
	assert.Equal(t, "%1 and others.", tr.TranslateID("about-contributors-text", -1))

	blank := NewTranslator(FallbackBlank, it)
	assert.Equal(t, "", blank.TranslateID("about-contributors-text", -1))
	assert.Equal(t, "", blank.Translate("HistoryPage", "History", "", -1))

	empty := NewTranslator(FallbackSource)
	assert.Equal(t, "", empty.Language())
	assert.Equal(t, "Delete", empty.Translate("HistoryPage", "Delete", "", -1))
	assert.Equal(t, "about-title", empty.TranslateID("about-title", -1))
}

func TestStats(t *testing.T) {
	s := testCatalog().Stats()
	assert.Equal(t, Stats{Finished: 4, Unfinished: 2, Untranslated: 1, Obsolete: 1}, s)
	assert.Equal(t, 7, s.Total())
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "/about-title", Key{ID: "about-title"}.String())
	assert.Equal(t, "HistoryPage/Delete (menu)", Key{Context: "HistoryPage", Source: "Delete", Comment: "menu"}.String())
}

func TestTag(t *testing.T) {
	tag, err := Tag("hu_HU")
	require.NoError(t, err)
	assert.Equal(t, "hu-HU", tag.String())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, Unfinished, ParseStatus("unfinished"))
	assert.Equal(t, Vanished, ParseStatus("vanished"))
	assert.Equal(t, Finished, ParseStatus(""))
	assert.Equal(t, "obsolete", Obsolete.String())
}
