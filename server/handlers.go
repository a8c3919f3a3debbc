package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/1Zgp/sailfish-barcode/lint"
	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/gorilla/mux"
)

// Looks up a translation. The language comes from the 'lang' parameter, or the Accept-Language
// header. Messages are found by 'id', or by 'context', 'source' and 'comment'. 'n' selects the
// numerus form and each 'arg' fills the next %1, %2, ... marker.
func (s *Server) translateHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	accept := q.Get("lang")
	if accept == "" {
		accept = r.Header.Get("Accept-Language")
	}
	tr := s.bundle.TranslatorFor(accept)

	n := -1
	if v := q.Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil {
			checkHttpWithStatus(fmt.Errorf("invalid n '%v'", v), w, http.StatusBadRequest)
			return
		}
	}

	var res Lookup
	res.Language = tr.Language()
	if id := q.Get("id"); id != "" {
		res.Text, res.Found = tr.LookupID(id, n)
		if !res.Found {
			res.Text = tr.TranslateID(id, n)
		}
	} else {
		source := q.Get("source")
		if source == "" {
			checkHttpWithStatus(errors.New("either id or source is required"), w, http.StatusBadRequest)
			return
		}
		ctx, comment := q.Get("context"), q.Get("comment")
		res.Text, res.Found = tr.Lookup(ctx, source, comment, n)
		if !res.Found {
			res.Text = tr.Translate(ctx, source, comment, n)
		}
	}
	if args, ok := q["arg"]; ok {
		res.Text = trans.Arg(res.Text, args...)
	}

	s.metrics.looked(res.Language, res.Found)
	writeJson(w, res)
}

// Gets the loaded catalogs with their translation progress
func (s *Server) getCatalogsHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]CatalogSummary, 0)
	for _, code := range s.bundle.Languages() {
		c, ok := s.bundle.Catalog(code)
		if !ok {
			continue
		}
		out = append(out, CatalogSummary{Language: c.Language, Stats: c.Stats()})
	}
	writeJson(w, out)
}

// Checks a loaded catalog
func (s *Server) lintCatalogHandler(w http.ResponseWriter, r *http.Request) {
	lang := mux.Vars(r)["lang"]

	c, ok := s.bundle.Catalog(lang)
	if !ok {
		checkHttpWithStatus(fmt.Errorf("no catalog for language '%v'", lang), w, http.StatusNotFound)
		return
	}

	writeJson(w, lint.Run(c))
}

// Export a catalog from the database to file
func (s *Server) exportCatalogHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	lang := mux.Vars(r)["lang"]
	catalogs := s.conf.Catalogs
	if format := r.URL.Query().Get("format"); format != "" {
		catalogs.ExportFormat = format
	}

	path, err := ds.ExportCatalog(lang, catalogs)
	if checkHttp(err, w) {
		return
	}

	writeJson(w, struct {
		Result string `json:"result"`
		File   string `json:"file"`
	}{"ok", path})
}

// Gets list of available languages
func getLanguagesHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	ls, err := ds.GetLanguageList()
	if checkHttp(err, w) {
		return
	}

	writeJson(w, ls)
}

// Creates a new language
func createLanguageHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	code := mux.Vars(r)["lang"]

	var content struct {
		Name string `json:"name"`
	}

	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(&content)
	if err != nil {
		checkHttpWithStatus(fmt.Errorf("could not decode request (%v)", err), w, http.StatusBadRequest)
		return
	}

	if _, err = trans.Tag(code); err != nil {
		checkHttpWithStatus(err, w, http.StatusBadRequest)
		return
	}

	_, err = ds.CreateLanguage(code, content.Name)
	switch {
	case err == datastore.ErrAlreadyExists:
		_ = checkHttpWithStatus(err, w, http.StatusConflict)
		return

	case checkHttp(err, w):
		return
	}

	writeOk(w)
}

// Gets list of context names
func getContextsHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	names, err := ds.GetContextList()
	if checkHttp(err, w) {
		return
	}

	var output struct {
		Contexts []string `json:"contexts"`
	}
	output.Contexts = names
	if output.Contexts == nil {
		output.Contexts = make([]string, 0)
	}

	writeJson(w, output)
}

func contextName(v string) string {
	if v == emptyContext {
		return ""
	}
	return v
}

// Get a context and all its messages & translations
func getContextHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	name := contextName(mux.Vars(r)["name"])

	c, err := ds.GetFullContext(name)
	if checkHttp(err, w) {
		return
	}

	writeJson(w, NewContext(c))
}

// Update a translation (or create it if we have a POST request)
// On success, the affected catalog will be re-exported to file.
func (s *Server) createOrUpdateTranslationHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	vars := mux.Vars(r)
	ctx := contextName(vars["context"])
	msg := vars["message"]
	lang := vars["lang"]
	comment := r.URL.Query().Get("comment")

	var content Translation
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(&content)
	if err != nil {
		checkHttpWithStatus(fmt.Errorf("could not decode request (%v)", err), w, http.StatusBadRequest)
		return
	}

	allowCreate := r.Method == http.MethodPost

	err = ds.CreateOrUpdateTranslation(ctx, msg, comment, lang, content.datastore(), allowCreate)
	if checkHttp(err, w) {
		return
	}

	writeOk(w)

	s.queueExport(lang)
}

// Deletes a single message and all its translations.
// On success, every served catalog will be re-exported to file.
func (s *Server) deleteMessageHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	vars := mux.Vars(r)

	err := ds.DeleteMessage(contextName(vars["context"]), vars["message"], r.URL.Query().Get("comment"))
	if checkHttp(err, w) {
		return
	}

	writeOk(w)

	for _, lang := range s.bundle.Languages() {
		s.queueExport(lang)
	}
}

// Delete a single translation.
// On success, the affected catalog will be re-exported to file.
func (s *Server) deleteTranslationHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	vars := mux.Vars(r)
	lang := vars["lang"]

	err := ds.DeleteTranslation(contextName(vars["context"]), vars["message"], r.URL.Query().Get("comment"), lang)
	if checkHttp(err, w) {
		return
	}

	writeOk(w)

	s.queueExport(lang)
}
