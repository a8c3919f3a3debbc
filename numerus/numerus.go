// Package numerus maps quantities to the numerus form of a translation, following the CLDR
// cardinal plural rules of the target language.
package numerus

import (
	"sort"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Quantities up to this bound are enough to reach every integer category of the CLDR rules.
const probeLimit = 200

// Rule is the numerus rule of one language.
type Rule struct {
	tag   language.Tag
	forms []plural.Form
}

// ForLanguage returns the rule for a TS language code ("hu_HU", "it") or a BCP 47 tag string.
func ForLanguage(code string) (Rule, error) {
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return Rule{}, err
	}
	return ForTag(tag), nil
}

// ForTag returns the rule for tag. Plural rules are looked up by base language only.
func ForTag(tag language.Tag) Rule {
	if base, conf := tag.Base(); conf != language.No {
		tag = language.Make(base.String())
	}
	seen := make(map[plural.Form]bool)
	var forms []plural.Form
	for n := 0; n < probeLimit; n++ {
		f := match(tag, n)
		if !seen[f] {
			seen[f] = true
			forms = append(forms, f)
		}
	}
	sort.Slice(forms, func(i, j int) bool { return order(forms[i]) < order(forms[j]) })

	return Rule{tag: tag, forms: forms}
}

func match(tag language.Tag, n int) plural.Form {
	return plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)
}

// order puts Other last, keeping the remaining categories in CLDR order.
func order(f plural.Form) int {
	if f == plural.Other {
		return int(plural.Many) + 1
	}
	return int(f)
}

func (r Rule) Tag() language.Tag {
	return r.tag
}

// Forms lists the plural categories of the language in the order translators fill them in.
func (r Rule) Forms() []plural.Form {
	return r.forms
}

// Count is the number of numerus forms a translation must provide.
func (r Rule) Count() int {
	if len(r.forms) == 0 {
		return 1
	}
	return len(r.forms)
}

// Index returns the numerus form shown for quantity n. Negative quantities use their magnitude.
func (r Rule) Index(n int) int {
	if n < 0 {
		n = -n
	}
	f := match(r.tag, n)
	for i, rf := range r.forms {
		if rf == f {
			return i
		}
	}
	return r.Count() - 1
}

// Name of a form, as used in reports.
func Name(f plural.Form) string {
	switch f {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	}
	return "other"
}
