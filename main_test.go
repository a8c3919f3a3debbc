package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (file string, dir string) {
	t.Helper()

	testdata, err := filepath.Abs(filepath.Join("ts", "testdata"))
	require.NoError(t, err)

	dir = t.TempDir()
	file = filepath.Join(dir, "translation-api.toml")
	body := `
[database]
driver = 'sqlite3'
file = '` + filepath.Join(dir, "translations.db") + `'

[catalogs]
import_path = '` + testdata + `'
export_path = '` + filepath.Join(dir, "out") + `'

[log]
level = 'warn'
`
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	return file, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportExport(t *testing.T) {
	file, dir := writeConfig(t)

	out, err := run(t, "init-db", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully migrated the database to version 3")

	out, err = run(t, "import", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 files")

	out, err = run(t, "export", "--config", file, "--format", "xliff", "--language", "it,hu_HU")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out", "harbour-barcode-it.xlf"))
	assert.FileExists(t, filepath.Join(dir, "out", "harbour-barcode-hu.xlf"))
	assert.Contains(t, out, "Exported")

	_, err = run(t, "export", "--config", file, "--language", "xx")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "import", "--config", filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)

	out, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestLookup(t *testing.T) {
	file, _ := writeConfig(t)

	out, err := run(t, "lookup", "--config", file, "--lang", "it", "--id", "about-title")
	require.NoError(t, err)
	assert.Equal(t, "Informazioni su CodeReader\n", out)

	out, err = run(t, "lookup", "--config", file, "--lang", "hu", "--context", "HistoryPage", "--source", "Copy to clipboard")
	require.NoError(t, err)
	assert.Equal(t, "Vágólapra\n", out)

	out, err = run(t, "lookup", "--config", file, "--lang", "it", "--id", "settings-history-slider_value", "-n", "3", "--arg", "3")
	require.NoError(t, err)
	assert.Equal(t, "3 item(s)\n", out)

	_, err = run(t, "lookup", "--config", file, "--lang", "it")
	assert.Error(t, err)
}

func TestLint(t *testing.T) {
	out, err := run(t, "lint", "--config", filepath.Join(t.TempDir(), "none.toml"), filepath.Join("ts", "testdata", "harbour-barcode-hu.ts"))
	assert.ErrorIs(t, err, errLintFailed)
	assert.Contains(t, out, "(hu_HU)")
	assert.Contains(t, out, "[duplicate]")

	_, err = run(t, "lint", "--config", filepath.Join(t.TempDir(), "none.toml"), "README.md")
	assert.Error(t, err)
}
