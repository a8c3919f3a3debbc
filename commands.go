package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/1Zgp/sailfish-barcode/bundle"
	"github.com/1Zgp/sailfish-barcode/datastore"
	"github.com/1Zgp/sailfish-barcode/importer"
	"github.com/1Zgp/sailfish-barcode/lint"
	"github.com/1Zgp/sailfish-barcode/server"
	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/1Zgp/sailfish-barcode/ts"
	"github.com/1Zgp/sailfish-barcode/xliff"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errLintFailed is returned when a linted catalog has errors; the report was already printed.
var errLintFailed = errors.New("catalogs have errors")

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the TS and XLIFF files of the import path into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := importer.Import(conf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %v files in %v\n", len(res.Files), res.Elapsed)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		format    string
		languages []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalogs of the database to the export path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogs := conf.Catalogs
			if format != "" {
				catalogs.ExportFormat = format
			}

			ds, err := datastore.Connect(conf.DB)
			if err != nil {
				return err
			}
			defer ds.DB().Close()

			if len(languages) == 0 {
				ls, err := ds.GetLanguageList()
				if err != nil {
					return err
				}
				for _, l := range ls {
					languages = append(languages, l.Code)
				}
			}

			for _, code := range languages {
				path, err := ds.ExportCatalog(code, catalogs)
				if err != nil {
					return fmt.Errorf("exporting '%v': %w", code, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Exported", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format, ts or xliff (default from config)")
	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "language codes to export (default all)")
	return cmd
}

// initDbCmd initializes the database with all necessary tables.
func initDbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := datastore.Connect(conf.DB)
			if err != nil {
				return err
			}
			defer ds.DB().Close()

			dbVersion, err := ds.MigrateUp()
			if err != nil {
				return fmt.Errorf("could not complete database migration, last applied version was %v: %w", dbVersion, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Successfully migrated the database to version", dbVersion)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := server.Serve(ctx, conf)
			if ctx.Err() != nil {
				log.Info().Msg("server stopped")
			}
			return err
		},
	}
}

// loadCatalog reads a TS or XLIFF file, chosen by extension.
func loadCatalog(file string) (*trans.Catalog, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ts.Extension:
		return ts.NewFromFile(file)
	case xliff.Extension:
		return xliff.NewFromFile(file)
	}
	return nil, fmt.Errorf("%v: unsupported file type", file)
}

func catalogFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range []string{ts.Extension, xliff.Extension} {
		m, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)
	return files, nil
}

func lintCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:         "lint [files...]",
		Short:       "Check catalog files, by default those of the import path",
		Annotations: map[string]string{configOptional: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				var err error
				if files, err = catalogFiles(conf.Catalogs.ImportPath); err != nil {
					return err
				}
			}

			min := lint.Warning
			if all {
				min = lint.Info
			}
			failed, err := lintFiles(cmd.OutOrStdout(), files, min)
			if err != nil {
				return err
			}
			if failed {
				return errLintFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "also print informational issues")
	return cmd
}

// lintFiles prints the issues at or above min for each file and reports whether any had errors.
func lintFiles(w io.Writer, files []string, min lint.Severity) (failed bool, err error) {
	for _, file := range files {
		c, err := loadCatalog(file)
		if err != nil {
			return failed, err
		}

		r := lint.Run(c)
		s := r.Stats
		fmt.Fprintf(w, "%v (%v): %v finished, %v unfinished, %v untranslated, %v obsolete\n",
			file, r.Language, s.Finished, s.Unfinished, s.Untranslated, s.Obsolete)
		for _, i := range r.Filter(min) {
			fmt.Fprintln(w, "  "+i.String())
		}
		failed = failed || r.HasErrors()
	}
	return failed, nil
}

func lookupCmd() *cobra.Command {
	var (
		lang, ctx, source, comment, id string
		n                              int
		args                           []string
	)

	cmd := &cobra.Command{
		Use:         "lookup",
		Short:       "Translate a message using the catalogs of the import path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{configOptional: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id == "" && source == "" {
				return errors.New("either --id or --source is required")
			}

			b, err := bundle.Load(context.Background(), conf.Catalogs.ImportPath, bundle.Options{
				Fallback:         conf.Catalogs.FallbackPolicy(),
				FallbackLanguage: conf.Catalogs.FallbackLanguage,
			})
			if err != nil {
				return err
			}

			if lang == "" {
				lang = os.Getenv("LANG")
				if i := strings.IndexByte(lang, '.'); i >= 0 {
					lang = lang[:i]
				}
			}
			tr := b.TranslatorFor(lang)

			var text string
			if id != "" {
				text = tr.TranslateID(id, n)
			} else {
				text = tr.Translate(ctx, source, comment, n)
			}
			if len(args) > 0 {
				text = trans.Arg(text, args...)
			}

			log.Debug().Str("language", tr.Language()).Msg("translated")
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&lang, "lang", "l", "", "language code or Accept-Language list (default $LANG)")
	f.StringVar(&ctx, "context", "", "message context")
	f.StringVarP(&source, "source", "s", "", "source text")
	f.StringVar(&comment, "comment", "", "disambiguation comment")
	f.StringVar(&id, "id", "", "message id")
	f.IntVarP(&n, "count", "n", -1, "count selecting the numerus form")
	f.StringArrayVar(&args, "arg", nil, "value for the next %1, %2, ... marker")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the program version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{configOptional: ""},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
