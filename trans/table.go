package trans

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1Zgp/sailfish-barcode/numerus"
)

// Fallback decides what is displayed when a message has no usable translation.
type Fallback int

const (
	// FallbackSource displays the source text.
	FallbackSource Fallback = iota
	// FallbackBlank displays nothing.
	FallbackBlank
)

func ParseFallback(s string) (Fallback, error) {
	switch s {
	case "", "source":
		return FallbackSource, nil
	case "blank":
		return FallbackBlank, nil
	}
	return FallbackSource, fmt.Errorf("unknown fallback %q (must be one of: source, blank)", s)
}

// Table is a read-only index over a catalog. It is safe for concurrent use.
type Table struct {
	catalog *Catalog
	rule    numerus.Rule
	byKey   map[Key]*Message
	byID    map[string]*Message
	dups    []Key
}

// NewTable indexes c. When a key occurs more than once the first message wins, like lrelease does;
// the later keys are listed by Duplicates. Obsolete and vanished messages are indexed too but never
// produce a translation.
func NewTable(c *Catalog) (*Table, error) {
	rule, err := numerus.ForLanguage(c.Language)
	if err != nil {
		return nil, fmt.Errorf("catalog language %q: %w", c.Language, err)
	}

	t := &Table{
		catalog: c,
		rule:    rule,
		byKey:   make(map[Key]*Message),
		byID:    make(map[string]*Message),
	}
	aliases := make(map[Key]*Message)
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			k := m.Key(ctx.Name)
			if _, ok := t.byKey[k]; ok {
				t.dups = append(t.dups, k)
				continue
			}
			t.byKey[k] = m
			if _, ok := t.byID[m.ID]; m.ID != "" && !ok {
				t.byID[m.ID] = m
			}
			// Every message is also reachable by context and source text, first one wins.
			plain := Key{Context: ctx.Name, Source: m.Source}
			if _, ok := aliases[plain]; !ok {
				aliases[plain] = m
			}
		}
	}
	for k, m := range aliases {
		if _, ok := t.byKey[k]; !ok {
			t.byKey[k] = m
		}
	}
	return t, nil
}

func (t *Table) Catalog() *Catalog {
	return t.catalog
}

// Duplicates lists keys that were dropped because an earlier message had the same key.
func (t *Table) Duplicates() []Key {
	return t.dups
}

func (t *Table) Rule() numerus.Rule {
	return t.rule
}

// Len is the number of messages in the catalog, duplicates included.
func (t *Table) Len() int {
	n := 0
	t.catalog.Each(func(*Context, *Message) { n++ })
	return n
}

// Find returns the message for a context and source text.
func (t *Table) Find(context, source, comment string) (*Message, bool) {
	m, ok := t.byKey[Key{Context: context, Source: source, Comment: comment}]
	return m, ok
}

// FindID returns the message with the given stable id, whatever its context.
func (t *Table) FindID(id string) (*Message, bool) {
	m, ok := t.byID[id]
	return m, ok
}

// Lookup returns the translation of a source text, and false when the message is unknown or its
// translation cannot be shown. A negative n means no quantity was given.
func (t *Table) Lookup(context, source, comment string, n int) (string, bool) {
	m, ok := t.Find(context, source, comment)
	if !ok {
		return "", false
	}
	return t.resolve(m, n)
}

// LookupID is Lookup for id based messages.
func (t *Table) LookupID(id string, n int) (string, bool) {
	m, ok := t.FindID(id)
	if !ok {
		return "", false
	}
	return t.resolve(m, n)
}

// Translate returns the translation of a source text, or the source text itself when there is none.
func (t *Table) Translate(context, source, comment string, n int) string {
	if s, ok := t.Lookup(context, source, comment, n); ok {
		return s
	}
	return ReplaceCount(source, n)
}

// TranslateID returns the translation for an id, falling back to the message source, then the id.
func (t *Table) TranslateID(id string, n int) string {
	if s, ok := t.LookupID(id, n); ok {
		return s
	}
	if m, ok := t.FindID(id); ok {
		return ReplaceCount(m.Source, n)
	}
	return id
}

func (t *Table) resolve(m *Message, n int) (string, bool) {
	tr := m.Translation
	if !tr.Status.Usable() {
		return "", false
	}

	text := tr.Text
	if m.Numerus && len(tr.Forms) > 0 {
		idx := 0
		if n >= 0 {
			idx = t.rule.Index(n)
		}
		if idx >= len(tr.Forms) {
			idx = len(tr.Forms) - 1
		}
		text = tr.Forms[idx]
	}
	if text == "" {
		return "", false
	}
	return ReplaceCount(text, n), true
}

// ReplaceCount substitutes the %n (and %Ln) quantity marker when a quantity is given.
func ReplaceCount(s string, n int) string {
	if n < 0 || !strings.Contains(s, "%") {
		return s
	}
	v := strconv.Itoa(n)
	return strings.NewReplacer("%Ln", v, "%n", v).Replace(s)
}
