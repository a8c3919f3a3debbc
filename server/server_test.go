package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1Zgp/sailfish-barcode/bundle"
	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/1Zgp/sailfish-barcode/lint"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdata = filepath.Join("..", "ts", "testdata")

type fixture struct {
	conf   config.Config
	server *Server
	ts     *httptest.Server
}

func newFixture(t *testing.T, withDB bool) *fixture {
	t.Helper()

	b, err := bundle.Load(context.Background(), testdata, bundle.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	conf := config.Default()
	conf.DB.File = filepath.Join(dir, "translations.db")
	conf.Catalogs.ImportPath = testdata
	conf.Catalogs.ExportPath = filepath.Join(dir, "out")

	var db *sqlx.DB
	if withDB {
		db, err = sqlx.Connect(conf.DB.Driver, conf.DB.ConnectionString())
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		ds, err := datastore.New(db, conf.DB.Driver)
		require.NoError(t, err)
		_, err = ds.MigrateUp()
		require.NoError(t, err)
		_, err = ds.ImportDir(testdata, nil)
		require.NoError(t, err)
	}

	s := New(conf, db, b)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &fixture{conf: conf, server: s, ts: srv}
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, f.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func (f *fixture) lookup(t *testing.T, path string, header ...string) Lookup {
	t.Helper()

	status, body := f.do(t, "GET", path, "", header...)
	require.Equal(t, http.StatusOK, status, string(body))

	var l Lookup
	require.NoError(t, json.Unmarshal(body, &l))
	return l
}

func TestTranslate(t *testing.T) {
	f := newFixture(t, false)

	l := f.lookup(t, "/translate?lang=it&id=about-title")
	assert.Equal(t, Lookup{Language: "it", Text: "Informazioni su CodeReader", Found: true}, l)

	// unfinished: the source text is shown
	l = f.lookup(t, "/translate?id=settings-history-slider_value&n=3&arg=3", "Accept-Language", "it-IT,en;q=0.7")
	assert.Equal(t, Lookup{Language: "it", Text: "3 item(s)", Found: false}, l)

	l = f.lookup(t, "/translate?lang=hu&context=HistoryPage&source=Copy%20to%20clipboard")
	assert.Equal(t, Lookup{Language: "hu_HU", Text: "Vágólapra", Found: true}, l)

	l = f.lookup(t, "/translate?lang=de&context=HistoryPage&source=Copy%20to%20clipboard")
	assert.Equal(t, Lookup{Language: "", Text: "Copy to clipboard", Found: false}, l)

	l = f.lookup(t, "/translate?lang=de&id=no-such-id")
	assert.Equal(t, "no-such-id", l.Text)

	status, _ := f.do(t, "GET", "/translate?lang=hu", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, "GET", "/translate?lang=hu&id=x&n=many", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCatalogs(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, "GET", "/catalogs", "")
	require.Equal(t, http.StatusOK, status)
	var cs []CatalogSummary
	require.NoError(t, json.Unmarshal(body, &cs))
	require.Len(t, cs, 2)
	assert.Equal(t, "hu_HU", cs[0].Language)
	assert.Equal(t, "it", cs[1].Language)
	assert.Equal(t, 56, cs[1].Stats.Unfinished+cs[1].Stats.Untranslated)

	status, body = f.do(t, "GET", "/catalogs/hu_HU/lint", "")
	require.Equal(t, http.StatusOK, status)
	var report lint.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "hu_HU", report.Language)
	assert.NotEmpty(t, report.Issues)

	status, _ = f.do(t, "GET", "/catalogs/de/lint", "")
	assert.Equal(t, http.StatusNotFound, status)

	// editing is not available without a database
	status, _ = f.do(t, "GET", "/languages", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, false)

	f.lookup(t, "/translate?lang=it&id=about-title")
	f.lookup(t, "/translate?lang=it&id=scan-status-busy")

	status, body := f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	out := string(body)
	assert.Contains(t, out, `catalog_lookups_total{language="it",result="found"} 1`)
	assert.Contains(t, out, `catalog_lookups_total{language="it",result="fallback"} 1`)
	assert.Contains(t, out, "catalog_languages_loaded 2")
}

func TestLanguages(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, "GET", "/languages", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"code":"hu_HU"`)

	status, _ = f.do(t, "POST", "/languages/de", `{"name":"German"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(t, "POST", "/languages/ja", `{}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, "POST", "/languages/ja", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, "POST", "/languages/x!", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestContexts(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, "GET", "/contexts", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"HistoryPage"`)

	status, body = f.do(t, "GET", "/contexts/HistoryPage", "")
	require.Equal(t, http.StatusOK, status)
	var c Context
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, "HistoryPage", c.Name)
	assert.NotEmpty(t, c.Messages)

	status, body = f.do(t, "GET", "/contexts/-", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, "", c.Name)
	assert.Len(t, c.Messages, 79)

	status, body = f.do(t, "GET", "/contexts/NoSuchPage", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "does not exist")
}

func TestEditTranslation(t *testing.T) {
	f := newFixture(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.server.RunExporter(ctx)

	path := "/contexts/HistoryPage/messages/Copy%20to%20clipboard/translations/it"

	status, _ := f.do(t, "PUT", path, `{"content":"Copia qui"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := f.do(t, "POST", path, `{"content":"Copia qui"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	exported := filepath.Join(f.conf.Catalogs.ExportPath, "harbour-barcode-it.ts")
	assert.Eventually(t, func() bool {
		b, err := os.ReadFile(exported)
		return err == nil && strings.Contains(string(b), "<translation>Copia qui</translation>")
	}, 5*time.Second, 20*time.Millisecond)

	status, _ = f.do(t, "PUT", path, `{"content":"Copia negli appunti","status":"unfinished"}`)
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(t, "GET", "/contexts/HistoryPage", "")
	require.Equal(t, http.StatusOK, status)
	var c Context
	require.NoError(t, json.Unmarshal(body, &c))
	var found bool
	for _, m := range c.Messages {
		if m.Source == "Copy to clipboard" {
			found = true
			assert.Equal(t, Translation{Status: "unfinished", Content: "Copia negli appunti"}, m.Translations["it"])
			assert.Equal(t, "finished", m.Translations["hu_HU"].Status)
		}
	}
	assert.True(t, found)

	status, _ = f.do(t, "POST", path, `{`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, "DELETE", path, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, "DELETE", "/contexts/HistoryPage/messages/Copy%20to%20clipboard", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = f.do(t, "DELETE", "/contexts/HistoryPage/messages/Copy%20to%20clipboard", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestExportCatalog(t *testing.T) {
	f := newFixture(t, true)

	status, body := f.do(t, "POST", "/catalogs/it/export?format=xliff", "")
	require.Equal(t, http.StatusOK, status, string(body))

	var res struct {
		Result string `json:"result"`
		File   string `json:"file"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, filepath.Join(f.conf.Catalogs.ExportPath, "harbour-barcode-it.xlf"), res.File)
	assert.FileExists(t, res.File)

	status, _ = f.do(t, "POST", "/catalogs/xx/export", "")
	assert.Equal(t, http.StatusNotFound, status)
}
