/*
Package ts reads and writes Qt Linguist translation source (TS) files.

Only the elements that carry translation data are kept: locations, source and old source texts,
disambiguation, extraction and translator comments, and the translation itself. Length variants,
user data and "extra-" elements are dropped on decode.
*/
package ts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/1Zgp/sailfish-barcode/trans"
)

const Extension = ".ts"

type tsFile struct {
	XMLName        xml.Name    `xml:"TS"`
	Version        string      `xml:"version,attr"`
	Language       string      `xml:"language,attr"`
	SourceLanguage string      `xml:"sourcelanguage,attr"`
	Contexts       []tsContext `xml:"context"`
}

type tsContext struct {
	Name     string      `xml:"name"`
	Comment  string      `xml:"comment"`
	Messages []tsMessage `xml:"message"`
}

type tsMessage struct {
	ID                string        `xml:"id,attr"`
	Numerus           string        `xml:"numerus,attr"`
	Locations         []tsLocation  `xml:"location"`
	Source            string        `xml:"source"`
	OldSource         string        `xml:"oldsource"`
	Comment           string        `xml:"comment"`
	ExtraComment      string        `xml:"extracomment"`
	TranslatorComment string        `xml:"translatorcomment"`
	Translation       tsTranslation `xml:"translation"`
}

type tsLocation struct {
	Filename string `xml:"filename,attr"`
	Line     string `xml:"line,attr"`
}

type tsTranslation struct {
	Type  string   `xml:"type,attr"`
	Text  string   `xml:",chardata"`
	Forms []string `xml:"numerusform"`
}

// Decode parses a TS document.
func Decode(r io.Reader) (*trans.Catalog, error) {
	var f tsFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("ts: %w", err)
	}
	if f.Language == "" {
		return nil, fmt.Errorf("ts: missing language attribute")
	}

	c := &trans.Catalog{
		Version:        f.Version,
		Language:       f.Language,
		SourceLanguage: f.SourceLanguage,
		Contexts:       make([]*trans.Context, 0, len(f.Contexts)),
	}
	for _, xc := range f.Contexts {
		ctx := &trans.Context{
			Name:     xc.Name,
			Comment:  xc.Comment,
			Messages: make([]*trans.Message, 0, len(xc.Messages)),
		}
		for _, xm := range xc.Messages {
			ctx.Messages = append(ctx.Messages, xm.message())
		}
		c.Contexts = append(c.Contexts, ctx)
	}

	return c, nil
}

func (xm tsMessage) message() *trans.Message {
	m := &trans.Message{
		ID:                xm.ID,
		Source:            xm.Source,
		OldSource:         xm.OldSource,
		Comment:           xm.Comment,
		ExtraComment:      xm.ExtraComment,
		TranslatorComment: xm.TranslatorComment,
		Numerus:           xm.Numerus == "yes",
		Translation:       trans.Translation{Status: trans.ParseStatus(xm.Translation.Type)},
	}
	for _, l := range xm.Locations {
		m.Locations = append(m.Locations, trans.Location{File: l.Filename, Line: l.Line})
	}

	if m.Numerus {
		// Text around numerus forms is only indentation.
		m.Translation.Forms = xm.Translation.Forms
		if len(m.Translation.Forms) == 0 && strings.TrimSpace(xm.Translation.Text) != "" {
			m.Translation.Forms = []string{xm.Translation.Text}
		}
	} else {
		m.Translation.Text = xm.Translation.Text
	}

	return m
}

// NewFromFile reads the TS file at the given path. The language suffix of the file name, when
// there is one, must agree with the language declared in the file.
func NewFromFile(file string) (*trans.Catalog, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	c, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", file, err)
	}

	if _, lang, err := LangFromFilename(filepath.Base(file)); err == nil {
		if !SameLanguage(c.Language, lang) {
			return nil, fmt.Errorf("found language %v but expected %v based on filename '%v'", c.Language, lang, file)
		}
	}

	return c, nil
}

// LangFromFilename splits "harbour-barcode-hu.ts" into its prefix and language code.
func LangFromFilename(filename string) (prefix string, lang string, err error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	i := strings.LastIndexAny(name, "-_")
	// "app_pt_BR" keeps its region
	if i > 0 && isRegion(name[i+1:]) {
		if j := strings.LastIndexAny(name[:i], "-_"); j > 0 {
			return name[:j], name[j+1:], nil
		}
	}
	if i <= 0 || i == len(name)-1 {
		return "", "", fmt.Errorf("language missing from filename '%v'", filename)
	}
	if _, err := trans.Tag(name[i+1:]); err != nil {
		return "", "", fmt.Errorf("language missing from filename '%v'", filename)
	}
	return name[:i], name[i+1:], nil
}

func isRegion(s string) bool {
	return len(s) == 2 && strings.ToUpper(s) == s
}

// SameLanguage reports whether two TS language codes name the same language, ignoring the region
// when only one side has it ("hu" and "hu_HU").
func SameLanguage(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return true
	}
	ba, _, _ := strings.Cut(na, "-")
	bb, _, _ := strings.Cut(nb, "-")
	return ba == bb && (ba == na || bb == nb)
}

func normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// Filename builds the file name a catalog is exported to, e.g. "harbour-barcode-it.ts".
func Filename(prefix, lang string) string {
	if prefix == "" {
		return lang + Extension
	}
	return prefix + "-" + lang + Extension
}
