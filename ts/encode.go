package ts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1Zgp/sailfish-barcode/trans"
)

// DefaultVersion is written when a catalog carries no schema version.
const DefaultVersion = "2.1"

// Same entity set as lupdate, so regenerated files diff cleanly against the originals.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	"\"", "&quot;",
)

type writer struct {
	w   *bufio.Writer
	err error
}

func (w *writer) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) element(indent int, name, text string) {
	w.printf("%s<%s>%s</%s>\n", strings.Repeat("    ", indent), name, escaper.Replace(text), name)
}

// Encode writes c as a TS document.
func Encode(out io.Writer, c *trans.Catalog) error {
	w := &writer{w: bufio.NewWriter(out)}

	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	w.printf("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n")
	w.printf("<TS version=\"%s\" language=\"%s\"", escaper.Replace(version), escaper.Replace(c.Language))
	if c.SourceLanguage != "" {
		w.printf(" sourcelanguage=\"%s\"", escaper.Replace(c.SourceLanguage))
	}
	w.printf(">\n")

	for _, ctx := range c.Contexts {
		w.printf("<context>\n")
		w.element(1, "name", ctx.Name)
		if ctx.Comment != "" {
			w.element(1, "comment", ctx.Comment)
		}
		for _, m := range ctx.Messages {
			writeMessage(w, m)
		}
		w.printf("</context>\n")
	}
	w.printf("</TS>\n")

	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

func writeMessage(w *writer, m *trans.Message) {
	w.printf("    <message")
	if m.ID != "" {
		w.printf(" id=\"%s\"", escaper.Replace(m.ID))
	}
	if m.Numerus {
		w.printf(" numerus=\"yes\"")
	}
	w.printf(">\n")

	for _, l := range m.Locations {
		w.printf("        <location filename=\"%s\"", escaper.Replace(l.File))
		if l.Line != "" {
			w.printf(" line=\"%s\"", escaper.Replace(l.Line))
		}
		w.printf("/>\n")
	}
	w.element(2, "source", m.Source)
	optional := []struct{ name, text string }{
		{"oldsource", m.OldSource},
		{"comment", m.Comment},
		{"extracomment", m.ExtraComment},
		{"translatorcomment", m.TranslatorComment},
	}
	for _, o := range optional {
		if o.text != "" {
			w.element(2, o.name, o.text)
		}
	}

	t := m.Translation
	w.printf("        <translation")
	if s := t.Status.String(); s != "" {
		w.printf(" type=\"%s\"", s)
	}
	switch {
	case m.Numerus && len(t.Forms) > 0:
		w.printf(">\n")
		for _, f := range t.Forms {
			w.element(3, "numerusform", f)
		}
		w.printf("        </translation>\n")
	case m.Numerus:
		w.printf(">\n            <numerusform></numerusform>\n        </translation>\n")
	default:
		w.printf(">%s</translation>\n", escaper.Replace(t.Text))
	}

	w.printf("    </message>\n")
}

// Export writes c into dir as prefix-<language>.ts and returns the file path.
func Export(c *trans.Catalog, dir, prefix string) (string, error) {
	path := filepath.Join(dir, Filename(prefix, c.Language))
	return path, WriteFile(c, path)
}

// WriteFile encodes c into path, creating its directory.
func WriteFile(c *trans.Catalog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Encode(f, c); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	// Renaming keeps watchers from seeing a half written file.
	return os.Rename(tmp, path)
}
