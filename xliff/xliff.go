/*
Package xliff converts catalogs to and from XLIFF 1.2, for translators working in tools that do
not read TS files.

Each context becomes one <file> whose "original" attribute is the context name. Numerus messages are
written as a <group restype="x-gettext-plurals"> holding one trans-unit per form, after the plain
trans-units of the same file.
*/
package xliff

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1Zgp/sailfish-barcode/trans"
)

const (
	Extension = ".xlf"
	Namespace = "urn:oasis:names:tc:xliff:document:1.2"

	pluralGroup = "x-gettext-plurals"

	noteDeveloper      = "developer"
	noteTranslator     = "translator"
	noteDisambiguation = "disambiguation"
)

type Xliff struct {
	XMLName xml.Name    `xml:"xliff"`
	Xmlns   string      `xml:"xmlns,attr,omitempty"`
	Version string      `xml:"version,attr"`
	Files   []XliffFile `xml:"file"`
}

type XliffFile struct {
	Original   string       `xml:"original,attr"`
	DataType   string       `xml:"datatype,attr"`
	SourceLang string       `xml:"source-language,attr"`
	TargetLang string       `xml:"target-language,attr"`
	Header     *XliffHeader `xml:"header,omitempty"`
	Units      []XliffUnit  `xml:"body>trans-unit"`
	Groups     []XliffGroup `xml:"body>group"`
}

type XliffHeader struct {
	Tool XliffTool `xml:"tool"`
	Note string    `xml:"note,omitempty"`
}

type XliffTool struct {
	Id      string `xml:"tool-id,attr"`
	Name    string `xml:"tool-name,attr"`
	Version string `xml:"tool-version,attr,omitempty"`
}

type XliffGroup struct {
	Id      string      `xml:"id,attr"`
	Resname string      `xml:"resname,attr,omitempty"`
	Restype string      `xml:"restype,attr,omitempty"`
	Units   []XliffUnit `xml:"trans-unit"`
}

type XliffUnit struct {
	Id      string      `xml:"id,attr"`
	Resname string      `xml:"resname,attr,omitempty"`
	Source  string      `xml:"source"`
	Target  XliffTarget `xml:"target"`
	Notes   []XliffNote `xml:"note"`
}

type XliffTarget struct {
	State string `xml:"state,attr,omitempty"`
	Text  string `xml:",chardata"`
}

type XliffNote struct {
	From string `xml:"from,attr,omitempty"`
	Text string `xml:",chardata"`
}

// state maps a status to the XLIFF target state. Only unfinished targets are "new" when empty, so
// a finished empty translation stays finished on import.
func state(s trans.Status, empty bool) string {
	switch {
	case s == trans.Unfinished && empty:
		return "new"
	case s == trans.Unfinished:
		return "needs-translation"
	}
	return "translated"
}

func status(state string, text string) trans.Status {
	switch state {
	case "new", "needs-translation", "needs-adaptation", "needs-l10n", "needs-review-translation",
		"needs-review-adaptation", "needs-review-l10n":
		return trans.Unfinished
	}
	if state == "" && text == "" {
		return trans.Unfinished
	}
	return trans.Finished
}

func notes(m *trans.Message) (ns []XliffNote) {
	if m.Comment != "" {
		ns = append(ns, XliffNote{From: noteDisambiguation, Text: m.Comment})
	}
	if m.ExtraComment != "" {
		ns = append(ns, XliffNote{From: noteDeveloper, Text: m.ExtraComment})
	}
	if m.TranslatorComment != "" {
		ns = append(ns, XliffNote{From: noteTranslator, Text: m.TranslatorComment})
	}
	return ns
}

// New converts c into an XLIFF document. Obsolete and vanished messages are left out.
func New(c *trans.Catalog, sourceLang string) *Xliff {
	if sourceLang == "" {
		sourceLang = c.SourceLanguage
	}
	if sourceLang == "" {
		sourceLang = "en"
	}

	x := &Xliff{Xmlns: Namespace, Version: "1.2"}
	for _, ctx := range c.Contexts {
		f := XliffFile{
			Original:   ctx.Name,
			DataType:   "plaintext",
			SourceLang: sourceLang,
			TargetLang: c.Language,
		}
		if len(x.Files) == 0 {
			f.Header = &XliffHeader{Tool: XliffTool{Id: "ts-catalog", Name: "ts-catalog"}}
		}

		for i, m := range ctx.Messages {
			t := m.Translation
			if t.Status == trans.Obsolete || t.Status == trans.Vanished {
				continue
			}
			id := m.ID
			if id == "" {
				id = strconv.Itoa(i + 1)
			}

			if !m.Numerus {
				f.Units = append(f.Units, XliffUnit{
					Id:      id,
					Resname: m.ID,
					Source:  m.Source,
					Target:  XliffTarget{State: state(t.Status, t.Empty()), Text: t.Text},
					Notes:   notes(m),
				})
				continue
			}

			g := XliffGroup{Id: id, Resname: m.ID, Restype: pluralGroup}
			forms := t.Forms
			if len(forms) == 0 {
				forms = []string{""}
			}
			for n, form := range forms {
				u := XliffUnit{
					Id:     fmt.Sprintf("%v[%d]", id, n),
					Source: m.Source,
					Target: XliffTarget{State: state(t.Status, form == ""), Text: form},
				}
				if n == 0 {
					u.Notes = notes(m)
				}
				g.Units = append(g.Units, u)
			}
			f.Groups = append(f.Groups, g)
		}
		x.Files = append(x.Files, f)
	}

	return x
}

// Export writes c as an XLIFF document.
func Export(w io.Writer, c *trans.Catalog, sourceLang string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(New(c, sourceLang)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Filename builds the file name a catalog is exported to, e.g. "harbour-barcode-it.xlf".
func Filename(prefix, lang string) string {
	if prefix == "" {
		return lang + Extension
	}
	return prefix + "-" + lang + Extension
}

// ExportFile writes c into dir as prefix-<language>.xlf and returns the file path.
func ExportFile(c *trans.Catalog, dir, prefix, sourceLang string) (string, error) {
	path := filepath.Join(dir, Filename(prefix, c.Language))
	return path, WriteFile(c, path, sourceLang)
}

// WriteFile exports c into path, creating its directory.
func WriteFile(c *trans.Catalog, path, sourceLang string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, c, sourceLang); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Catalog converts the document back into a catalog.
func (x *Xliff) Catalog() (*trans.Catalog, error) {
	if len(x.Files) == 0 {
		return nil, fmt.Errorf("xliff: no file elements")
	}

	c := &trans.Catalog{
		Version:        "2.1",
		Language:       x.Files[0].TargetLang,
		SourceLanguage: x.Files[0].SourceLang,
	}
	if c.Language == "" {
		return nil, fmt.Errorf("xliff: missing target-language")
	}

	for _, f := range x.Files {
		if f.TargetLang != "" && f.TargetLang != c.Language {
			return nil, fmt.Errorf("xliff: file %q has target-language %v, expected %v", f.Original, f.TargetLang, c.Language)
		}
		ctx := c.Context(f.Original)
		for _, u := range f.Units {
			m := &trans.Message{
				ID:          u.Resname,
				Source:      u.Source,
				Translation: trans.Translation{Status: status(u.Target.State, u.Target.Text), Text: u.Target.Text},
			}
			applyNotes(m, u.Notes)
			ctx.Messages = append(ctx.Messages, m)
		}
		for _, g := range f.Groups {
			if g.Restype != pluralGroup || len(g.Units) == 0 {
				continue
			}
			m := &trans.Message{ID: g.Resname, Source: g.Units[0].Source, Numerus: true}
			applyNotes(m, g.Units[0].Notes)
			m.Translation.Status = trans.Finished
			for _, u := range g.Units {
				if status(u.Target.State, u.Target.Text) == trans.Unfinished {
					m.Translation.Status = trans.Unfinished
				}
				m.Translation.Forms = append(m.Translation.Forms, u.Target.Text)
			}
			if m.Translation.Empty() {
				m.Translation.Forms = nil
			}
			ctx.Messages = append(ctx.Messages, m)
		}
	}

	return c, nil
}

func applyNotes(m *trans.Message, ns []XliffNote) {
	for _, n := range ns {
		switch n.From {
		case noteDisambiguation:
			m.Comment = n.Text
		case noteTranslator:
			m.TranslatorComment = n.Text
		default:
			m.ExtraComment = n.Text
		}
	}
}

// Decode reads an XLIFF document into a catalog.
func Decode(r io.Reader) (*trans.Catalog, error) {
	x := &Xliff{}
	if err := xml.NewDecoder(r).Decode(x); err != nil {
		return nil, fmt.Errorf("xliff: %w", err)
	}
	return x.Catalog()
}

func infoFromFilename(filename string) (expectLang string, ok bool) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return "", false
	}
	if _, err := trans.Tag(name[i+1:]); err != nil {
		return "", false
	}
	return name[i+1:], true
}

// NewFromFile reads the XLIFF file at the given path. When the file is named prefix-<language>.xlf
// the document's target language must match.
func NewFromFile(file string) (*trans.Catalog, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, err
	}

	if expectLang, ok := infoFromFilename(filepath.Base(file)); ok && !strings.EqualFold(expectLang, c.Language) {
		return nil, fmt.Errorf("found language %v but expected %v based on filename '%v'", c.Language, expectLang, file)
	}

	return c, nil
}
