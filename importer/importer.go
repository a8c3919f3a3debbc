// Package importer loads the catalog files of a directory into the datastore.
package importer

import (
	"time"

	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/rs/zerolog/log"
)

// Result summarises an import run.
type Result struct {
	Files   []string
	Elapsed time.Duration
	Stats   datastore.Stats
}

// Import imports every catalog file in the configured import path.
func Import(c config.Config) (Result, error) {
	ds, err := datastore.Connect(c.DB)
	if err != nil {
		return Result{}, err
	}
	defer ds.DB().Close()

	return ImportDir(ds, c.Catalogs.ImportPath)
}

// ImportDir imports every catalog file in dir into ds, logging each file as it is done.
func ImportDir(ds *datastore.DataStore, dir string) (Result, error) {
	start := time.Now()

	results := make(chan string, 100)
	done := make(chan struct{})

	var res Result
	go func() {
		defer close(done)
		for imported := range results {
			log.Info().Str("file", imported).Msg("imported catalog")
			res.Files = append(res.Files, imported)
		}
	}()

	count, err := ds.ImportDir(dir, results)
	close(results)
	<-done

	res.Elapsed = time.Since(start)
	res.Stats = ds.Stats
	if err != nil {
		return res, err
	}

	log.Info().Int("count", count).Dur("elapsed", res.Elapsed).Msg("import finished")
	log.Debug().Msg(ds.Stats.String())

	return res, nil
}
