/*
Package server provides the HTTP JSON API.

Lookups (/translate, /catalogs) are answered from the catalogs loaded into a bundle. The editing
routes work on the datastore; every successful edit queues the affected languages for export, so
the catalog files stay in step with the database.
*/
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/1Zgp/sailfish-barcode/bundle"
	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// emptyContext addresses the unnamed context of id based catalogs in URLs.
const emptyContext = "-"

type Server struct {
	conf    config.Config
	db      *sqlx.DB
	bundle  *bundle.Bundle
	metrics *Metrics
	export  chan string
	router  *mux.Router
}

// New builds a server answering lookups from b. Editing routes are only registered when db is
// not nil.
func New(conf config.Config, db *sqlx.DB, b *bundle.Bundle) *Server {
	s := &Server{
		conf:    conf,
		db:      db,
		bundle:  b,
		metrics: newMetrics(b),
		export:  make(chan string, 100),
	}
	b.OnReload = s.metrics.reloaded
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/translate", s.translateHandler).Methods("GET")
	r.HandleFunc("/catalogs", s.getCatalogsHandler).Methods("GET")
	r.HandleFunc("/catalogs/{lang}/lint", s.lintCatalogHandler).Methods("GET")
	r.Handle("/metrics", s.metrics.handler()).Methods("GET")

	if s.db != nil {
		driver := s.conf.DB.Driver
		r.HandleFunc("/catalogs/{lang}/export", s.handleWithDatastore(driver, s.exportCatalogHandler)).Methods("POST")
		r.HandleFunc("/languages", s.handleWithDatastore(driver, getLanguagesHandler)).Methods("GET")
		r.HandleFunc("/languages/{lang}", s.handleWithDatastore(driver, createLanguageHandler)).Methods("POST")
		r.HandleFunc("/contexts", s.handleWithDatastore(driver, getContextsHandler)).Methods("GET")
		r.HandleFunc("/contexts/{name}", s.handleWithDatastore(driver, getContextHandler)).Methods("GET")
		r.HandleFunc("/contexts/{context}/messages/{message}", s.handleWithDatastore(driver, s.deleteMessageHandler)).Methods("DELETE")
		r.HandleFunc("/contexts/{context}/messages/{message}/translations/{lang}", s.handleWithDatastore(driver, s.deleteTranslationHandler)).Methods("DELETE")
		r.HandleFunc("/contexts/{context}/messages/{message}/translations/{lang}", s.handleWithDatastore(driver, s.createOrUpdateTranslationHandler)).Methods("POST", "PUT")
	}

	s.router = r
}

// Handler is the router wrapped in the access log and JSON headers.
func (s *Server) Handler() http.Handler {
	return handlers.CombinedLoggingHandler(log.Logger, setJsonHeaders(s.router))
}

func checkHttpWithStatus(e error, w http.ResponseWriter, status int) (hadError bool) {
	if e != nil {
		w.WriteHeader(status)

		errMsg := e.Error()
		// Don't expose the 'sql: no rows in result set' message to the user
		if status == http.StatusNotFound && e == sql.ErrNoRows {
			errMsg = "not found"
		}

		jsonErr := struct {
			Error string `json:"error"`
		}{
			Error: errMsg,
		}
		enc := json.NewEncoder(w)
		enc.Encode(jsonErr)

		return true
	}
	return false
}

func checkHttp(e error, w http.ResponseWriter) (hadError bool) {
	status := http.StatusInternalServerError
	if errors.Is(e, sql.ErrNoRows) {
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError && e != nil {
		log.Error().Err(e).Msg("request failed")
	}
	return checkHttpWithStatus(e, w, status)
}

func writeJson(w http.ResponseWriter, v interface{}) {
	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(v), w)
}

func writeOk(w http.ResponseWriter) {
	w.Write([]byte("{\"result\":\"ok\"}\n"))
}

// Instantiates a datastore for a request using the server's DB connection
func (s *Server) handleWithDatastore(driver string, f func(http.ResponseWriter, *http.Request, *datastore.DataStore)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := datastore.New(s.db, driver)

		if checkHttpWithStatus(err, w, http.StatusServiceUnavailable) {
			return
		}
		f(w, r, ds)
	}
}

func setJsonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

// queueExport asks the export loop to write the catalog of a language to file.
func (s *Server) queueExport(lang string) {
	select {
	case s.export <- lang:
	default:
		log.Warn().Str("language", lang).Msg("export queue full, skipping export")
	}
}

// RunExporter writes queued catalogs to the export path until ctx is done.
func (s *Server) RunExporter(ctx context.Context) {
	ds, err := datastore.New(s.db, s.conf.DB.Driver)
	if err != nil {
		log.Error().Err(err).Msg("catalog exporter not started")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case lang := <-s.export:
			path, err := ds.ExportCatalog(lang, s.conf.Catalogs)
			s.metrics.exported(err)
			if err != nil {
				log.Error().Err(err).Str("language", lang).Msg("exporting catalog")
				continue
			}
			log.Info().Str("language", lang).Str("file", path).Msg("exported catalog")
		}
	}
}

// Serve loads the catalogs, connects to the database and serves the API until ctx is done.
func Serve(ctx context.Context, c config.Config) error {
	b, err := bundle.Load(ctx, c.Catalogs.ImportPath, bundle.Options{
		Fallback:         c.Catalogs.FallbackPolicy(),
		FallbackLanguage: c.Catalogs.FallbackLanguage,
	})
	if err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}

	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	s := New(c, db, b)

	if c.Catalogs.Watch {
		if err := b.Watch(ctx); err != nil {
			return err
		}
	}
	go s.RunExporter(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", c.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Int("port", c.Server.Port).Strs("languages", b.Languages()).Msg("listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
