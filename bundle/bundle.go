/*
Package bundle keeps the catalogs of every available language in memory and hands out translators
for the locale an application asks for.

Catalogs are loaded from a directory of TS files. A Bundle can watch that directory and swap in a
catalog again whenever its file is regenerated, so translators obtained afterwards see the update.
*/
package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/1Zgp/sailfish-barcode/ts"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Options configure how translators are built.
type Options struct {
	// Fallback is applied when no catalog in the chain has a usable translation.
	Fallback trans.Fallback
	// FallbackLanguage, when loaded, is consulted after the matched language and its parents.
	FallbackLanguage string
	// Parallel bounds concurrent file parsing. Zero means no limit.
	Parallel int
}

type entry struct {
	tag   language.Tag
	table *trans.Table
	file  string
}

type Bundle struct {
	dir  string
	opts Options

	mu      sync.RWMutex
	entries map[string]*entry
	matcher language.Matcher
	tags    []language.Tag
	codes   []string

	// OnReload is called after a watched file was loaded again (err == nil) or failed to load.
	OnReload func(file string, err error)
}

func New(opts Options) *Bundle {
	b := &Bundle{opts: opts, entries: make(map[string]*entry)}
	b.rebuild()
	return b
}

// Load parses every TS file in dir. Any file failing to parse fails the whole load.
func Load(ctx context.Context, dir string, opts Options) (*Bundle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+ts.Extension))
	if err != nil {
		return nil, err
	}

	b := New(opts)
	b.dir = dir

	catalogs := make([]*trans.Catalog, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := ts.NewFromFile(file)
			if err != nil {
				return err
			}
			catalogs[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range catalogs {
		if err := b.add(c, files[i]); err != nil {
			return nil, fmt.Errorf("%v: %w", files[i], err)
		}
	}
	b.rebuild()

	log.Debug().Str("dir", dir).Strs("languages", b.Languages()).Msg("loaded catalogs")

	return b, nil
}

// Dir is the directory the bundle was loaded from.
func (b *Bundle) Dir() string {
	return b.dir
}

// Add indexes c, replacing any catalog of the same language.
func (b *Bundle) Add(c *trans.Catalog) error {
	if err := b.add(c, ""); err != nil {
		return err
	}
	b.rebuild()
	return nil
}

func (b *Bundle) add(c *trans.Catalog, file string) error {
	tag, err := c.Tag()
	if err != nil {
		return fmt.Errorf("catalog language %q: %w", c.Language, err)
	}
	table, err := trans.NewTable(c)
	if err != nil {
		return err
	}
	for _, k := range table.Duplicates() {
		log.Warn().Str("language", c.Language).Str("key", k.String()).Msg("dropping duplicate message")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[normalize(c.Language)] = &entry{tag: tag, table: table, file: file}
	return nil
}

// Remove drops the catalog for a language code.
func (b *Bundle) Remove(code string) bool {
	b.mu.Lock()
	_, ok := b.entries[normalize(code)]
	delete(b.entries, normalize(code))
	b.mu.Unlock()

	if ok {
		b.rebuild()
	}
	return ok
}

func (b *Bundle) rebuild() {
	b.mu.Lock()
	defer b.mu.Unlock()

	codes := make([]string, 0, len(b.entries))
	for code := range b.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = b.entries[code].tag
	}
	b.codes = codes
	b.tags = tags
	b.matcher = language.NewMatcher(tags)
}

// Languages lists the TS codes of the loaded catalogs, sorted.
func (b *Bundle) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.codes))
	for i, code := range b.codes {
		out[i] = b.entries[code].table.Catalog().Language
	}
	return out
}

// Catalog returns the loaded catalog for a language code.
func (b *Bundle) Catalog(code string) (*trans.Catalog, bool) {
	t, ok := b.table(code)
	if !ok {
		return nil, false
	}
	return t.Catalog(), true
}

func (b *Bundle) table(code string) (*trans.Table, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[normalize(code)]
	if !ok {
		return nil, false
	}
	return e.table, true
}

// Match returns the code of the best loaded catalog for the preferred tags, or false when none is
// a reasonable match.
func (b *Bundle) Match(preferred ...language.Tag) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.tags) == 0 || len(preferred) == 0 {
		return "", false
	}
	_, idx, conf := b.matcher.Match(preferred...)
	if conf == language.No {
		return "", false
	}
	return b.codes[idx], true
}

// Translator returns a translator for the preferred tags. Its chain is the matched catalog, the
// catalogs of the matched language's parents ("pt_BR" -> "pt") and the fallback language. When
// nothing matches the translator only applies the fallback policy.
func (b *Bundle) Translator(preferred ...language.Tag) *trans.Translator {
	var chain []*trans.Table
	seen := make(map[string]bool)
	push := func(code string) {
		code = normalize(code)
		if seen[code] {
			return
		}
		if t, ok := b.table(code); ok {
			seen[code] = true
			chain = append(chain, t)
		}
	}

	if code, ok := b.Match(preferred...); ok {
		push(code)
		if t, ok := b.table(code); ok {
			if tag, err := t.Catalog().Tag(); err == nil {
				for p := tag.Parent(); p != language.Und; p = p.Parent() {
					push(p.String())
				}
			}
		}
	}
	if b.opts.FallbackLanguage != "" {
		push(b.opts.FallbackLanguage)
	}

	return trans.NewTranslator(b.opts.Fallback, chain...)
}

// TranslatorFor parses an Accept-Language style list ("it, en;q=0.8") or a single code.
func (b *Bundle) TranslatorFor(accept string) *trans.Translator {
	tags, _, err := language.ParseAcceptLanguage(strings.ReplaceAll(accept, "_", "-"))
	if err != nil {
		tags = nil
	}
	return b.Translator(tags...)
}

func normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}
