/*
Package trans holds the translation catalog model shared by the codecs, the datastore and the
lookup runtime.

A Catalog is everything translated into one target language. It is split into named contexts
(one per application screen) and each context carries an ordered list of messages.
*/
package trans

import (
	"strings"

	"golang.org/x/text/language"
)

// Status of a translation as recorded by the translation tooling.
type Status int

const (
	Finished Status = iota
	Unfinished
	Obsolete
	Vanished
)

func (s Status) String() string {
	switch s {
	case Unfinished:
		return "unfinished"
	case Obsolete:
		return "obsolete"
	case Vanished:
		return "vanished"
	}
	return ""
}

// ParseStatus converts the TS "type" attribute value to a Status. Unknown values count as finished.
func ParseStatus(s string) Status {
	switch s {
	case "unfinished":
		return Unfinished
	case "obsolete":
		return Obsolete
	case "vanished":
		return Vanished
	}
	return Finished
}

// Usable reports whether a translation with this status may be displayed.
func (s Status) Usable() bool {
	return s == Finished
}

type Catalog struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []*Context
}

type Context struct {
	Name     string
	Comment  string
	Messages []*Message
}

type Message struct {
	ID                string
	Source            string
	OldSource         string
	Comment           string
	ExtraComment      string
	TranslatorComment string
	Locations         []Location
	Numerus           bool
	Translation       Translation
}

type Location struct {
	File string
	Line string
}

type Translation struct {
	Status Status
	Text   string
	Forms  []string
}

// Empty reports whether nothing has been translated yet.
func (t Translation) Empty() bool {
	if t.Text != "" {
		return false
	}
	for _, f := range t.Forms {
		if f != "" {
			return false
		}
	}
	return true
}

// Texts returns every translated variant: the numerus forms, or the single text.
func (t Translation) Texts() []string {
	if len(t.Forms) > 0 {
		return t.Forms
	}
	return []string{t.Text}
}

type Language struct {
	Id   int64  `json:"-"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Key identifies a message inside a catalog.
type Key struct {
	Context string
	ID      string
	Source  string
	Comment string
}

func (k Key) String() string {
	if k.ID != "" {
		return k.Context + "/" + k.ID
	}
	if k.Comment != "" {
		return k.Context + "/" + k.Source + " (" + k.Comment + ")"
	}
	return k.Context + "/" + k.Source
}

// Key returns the identity of m within the given context. Messages with a stable id are keyed on
// it alone, others on their source text and disambiguation comment.
func (m *Message) Key(context string) Key {
	if m.ID != "" {
		return Key{Context: context, ID: m.ID}
	}
	return Key{Context: context, Source: m.Source, Comment: m.Comment}
}

// Name is how the message is addressed in URLs and reports.
func (m *Message) Name() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Source
}

// Tag converts a TS language code such as "hu_HU" to a BCP 47 tag.
func Tag(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(code, "_", "-"))
}

// Tag returns the BCP 47 tag of the catalog's target language.
func (c *Catalog) Tag() (language.Tag, error) {
	return Tag(c.Language)
}

// Context returns the context with the given name, creating it when missing.
func (c *Catalog) Context(name string) *Context {
	for _, ctx := range c.Contexts {
		if ctx.Name == name {
			return ctx
		}
	}
	ctx := &Context{Name: name}
	c.Contexts = append(c.Contexts, ctx)
	return ctx
}

// Each calls f for every message in document order.
func (c *Catalog) Each(f func(ctx *Context, m *Message)) {
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			f(ctx, m)
		}
	}
}

type Stats struct {
	Finished     int `json:"finished"`
	Unfinished   int `json:"unfinished"`
	Untranslated int `json:"untranslated"`
	Obsolete     int `json:"obsolete"`
}

// Total counts the messages that are still in use.
func (s Stats) Total() int {
	return s.Finished + s.Unfinished + s.Untranslated
}

func (c *Catalog) Stats() (s Stats) {
	c.Each(func(_ *Context, m *Message) {
		switch {
		case m.Translation.Status == Obsolete || m.Translation.Status == Vanished:
			s.Obsolete++
		case m.Translation.Empty():
			s.Untranslated++
		case m.Translation.Status == Unfinished:
			s.Unfinished++
		default:
			s.Finished++
		}
	})
	return s
}
