/*
Package config implements TOML config file handling for the catalog service.

Normally it will be used by simply passing a config file name to the Load function to obtain a
Config struct.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	DbDriverSqlite3    = "sqlite3"
	DbDriverPostgresql = "postgres"

	FormatTS    = "ts"
	FormatXliff = "xliff"
)

// Config represents the parsed configuration.
type Config struct {
	DB       DbConfig      `toml:"database"`
	Server   ServerConfig  `toml:"server"`
	Catalogs CatalogConfig `toml:"catalogs"`
	Log      LogConfig     `toml:"log"`
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	if c.DB.Driver != DbDriverSqlite3 && c.DB.Driver != DbDriverPostgresql {
		drivers := []string{DbDriverPostgresql, DbDriverSqlite3}
		return fmt.Errorf("config: invalid database.driver value. (Must be one of: '%v')", strings.Join(drivers, ", "))
	}
	if c.DB.Driver == DbDriverSqlite3 && len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if c.DB.Driver == DbDriverPostgresql {
		if len(c.DB.Host) == 0 {
			return errors.New("config: missing database.host value")
		}
		if len(c.DB.Name) == 0 {
			return errors.New("config: missing database.name value")
		}
		if len(c.DB.User) == 0 {
			return errors.New("config: missing database.user value")
		}
		if c.DB.Port < 0 {
			return errors.New("config: invalid database.port value")
		}
	}
	if c.Server.Port < 0 {
		return errors.New("config: server.port is invalid")
	}
	if len(c.Catalogs.ImportPath) == 0 {
		return errors.New("config: missing catalogs.import_path value")
	}
	if len(c.Catalogs.ExportPath) == 0 {
		return errors.New("config: missing catalogs.export_path value")
	}
	if _, err := os.Stat(filepath.FromSlash(c.Catalogs.ImportPath)); os.IsNotExist(err) {
		return errors.New("config: catalogs.import_path does not exist")
	}
	if c.Catalogs.ExportFormat != FormatTS && c.Catalogs.ExportFormat != FormatXliff {
		return fmt.Errorf("config: invalid catalogs.export_format value '%v'", c.Catalogs.ExportFormat)
	}
	if _, err := trans.ParseFallback(c.Catalogs.Fallback); err != nil {
		return fmt.Errorf("config: catalogs.fallback: %w", err)
	}
	if c.Catalogs.FallbackLanguage != "" {
		if _, err := trans.Tag(c.Catalogs.FallbackLanguage); err != nil {
			return fmt.Errorf("config: invalid catalogs.fallback_language value '%v'", c.Catalogs.FallbackLanguage)
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: invalid log.level value '%v'", c.Log.Level)
	}
	return nil
}

// DbConfig contains Database connection configuration.
type DbConfig struct {
	// 'sqlite3' or 'postgres'
	Driver string
	// When driver is sqlite3, this is the path to the database file
	File     string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port that the server should run on.
	Port int
}

// CatalogConfig contains catalog import/export and lookup configuration.
type CatalogConfig struct {
	// Path to import TS files from. The server also answers lookups from here.
	ImportPath string `toml:"import_path"`
	// Path to export catalog files to
	ExportPath string `toml:"export_path"`
	// Exported files are named <file_prefix>-<language>.ts
	FilePrefix   string `toml:"file_prefix"`
	ExportFormat string `toml:"export_format"`
	// Language code of the source texts
	SourceLanguage string `toml:"source_language"`
	// Consulted when the requested language has no usable translation
	FallbackLanguage string `toml:"fallback_language"`
	// 'source' or 'blank'
	Fallback string `toml:"fallback"`
	// Reload catalogs from import_path when they change
	Watch bool `toml:"watch"`
}

// FallbackPolicy returns the parsed fallback policy.
func (c CatalogConfig) FallbackPolicy() trans.Fallback {
	f, _ := trans.ParseFallback(c.Fallback)
	return f
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// One of zerolog's level names: debug, info, warn, error
	Level string
}

// Gets a connection string for this config.
func (d *DbConfig) ConnectionString() string {
	cStr := ""
	switch d.Driver {
	case DbDriverPostgresql:
		cStr = fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
	case DbDriverSqlite3:
		cStr = d.File + "?_busy_timeout=5000"
	}
	return cStr
}

// Default returns a Config holding the default values.
func Default() Config {
	return Config{
		DB: DbConfig{
			Driver: DbDriverSqlite3,
			File:   filepath.FromSlash("./translations.db"),
			Port:   5432, // Postgres default port
		},
		Server: ServerConfig{
			Port: 8181,
		},
		Catalogs: CatalogConfig{
			ImportPath:     filepath.FromSlash("./translations"),
			ExportPath:     filepath.FromSlash("./translations-out"),
			FilePrefix:     "harbour-barcode",
			ExportFormat:   FormatTS,
			SourceLanguage: "en",
			Fallback:       "source",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Loads config from a TOML file and checks its validity.
func Load(file string) (Config, error) {
	conf := Default()
	_, err := toml.DecodeFile(file, &conf)
	if err != nil {
		return conf, err
	}

	if err = conf.valid(); err != nil {
		return conf, err
	}

	return conf, nil
}
