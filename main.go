/*
A tool for managing the translation catalogs of the barcode app: it keeps the translations in a
database, imports and exports them as Qt TS or XLIFF files and serves lookups over HTTP.

Various program settings are controlled by a TOML config file. By default, the program will look
for a file called 'translation-api.toml' in the working directory.

Available commands are:

  - import: Imports the TS and XLIFF files in the catalogs 'import_path' into the database.
  - export: Writes the catalogs of the database to the catalogs 'export_path'.
  - init-db: Creates or upgrades the database schema.
  - serve: Starts an HTTP server providing a JSON API for looking up and editing translations.
  - lint: Checks catalog files for problems.
  - lookup: Translates a single message from the catalog files.
  - version: Prints the program version.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	conf       config.Config

	// Set at build time with -ldflags "-X main.version=..."
	version = "dev"
)

// Commands annotated this way run on defaults when the config file can't be loaded.
const configOptional = "config-optional"

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "translation-api",
		Short:         "Manage, serve and check the barcode app's translation catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			conf, err = config.Load(configPath)
			if err != nil {
				if _, ok := cmd.Annotations[configOptional]; !ok {
					return err
				}
				conf = config.Default()
			}
			setupLogging(conf.Log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.FromSlash("./translation-api.toml"), "`path` and file name of the config file")

	root.AddCommand(
		importCmd(),
		exportCmd(),
		initDbCmd(),
		serveCmd(),
		lintCmd(),
		lookupCmd(),
		versionCmd(),
	)
	return root
}

func setupLogging(c config.LogConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func main() {
	checkFatal(rootCmd().Execute())
}
