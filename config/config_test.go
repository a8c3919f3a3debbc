package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "in"), 0755))
	file := filepath.Join(dir, "translation-api.toml")
	body = "[catalogs]\nimport_path = " + quote(filepath.Join(dir, "in")) + "\n" + body
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	return file
}

func quote(s string) string {
	return "'" + s + "'"
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, DbDriverSqlite3, c.DB.Driver)
	assert.Equal(t, 8181, c.Server.Port)
	assert.Equal(t, FormatTS, c.Catalogs.ExportFormat)
	assert.Equal(t, "harbour-barcode", c.Catalogs.FilePrefix)
	assert.Equal(t, trans.FallbackSource, c.Catalogs.FallbackPolicy())
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, c.DB.File+"?_busy_timeout=5000", c.DB.ConnectionString())
}

func TestLoadPostgres(t *testing.T) {
	c, err := Load(writeConfig(t, `
fallback = "blank"
fallback_language = "it"
watch = true

[database]
driver = "postgres"
host = "db"
name = "catalogs"
user = "app"
password = "secret"

[log]
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/catalogs?sslmode=disable", c.DB.ConnectionString())
	assert.Equal(t, trans.FallbackBlank, c.Catalogs.FallbackPolicy())
	assert.Equal(t, "it", c.Catalogs.FallbackLanguage)
	assert.True(t, c.Catalogs.Watch)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"driver", "[database]\ndriver = \"mysql\""},
		{"sqlite file", "[database]\nfile = \"\""},
		{"postgres host", "[database]\ndriver = \"postgres\"\nname = \"x\"\nuser = \"x\""},
		{"postgres name", "[database]\ndriver = \"postgres\"\nhost = \"x\"\nuser = \"x\""},
		{"postgres user", "[database]\ndriver = \"postgres\"\nhost = \"x\"\nname = \"x\""},
		{"server port", "[server]\nport = -1"},
		{"fallback", "fallback = \"nothing\""},
		{"fallback language", "fallback_language = \"??\""},
		{"format", "export_format = \"po\""},
		{"export path", "export_path = \"\""},
		{"log level", "[log]\nlevel = \"loud\""},
		{"syntax", "[server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingImportPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(file, []byte("[catalogs]\nimport_path = '/does/not/exist'\n"), 0644))

	_, err := Load(file)
	assert.ErrorContains(t, err, "import_path")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}
