// Package lint checks a catalog for problems that would show up at display time: duplicate keys,
// numerus translations with the wrong number of forms and dropped substitution markers.
package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1Zgp/sailfish-barcode/numerus"
	"github.com/1Zgp/sailfish-barcode/trans"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Check names, stable for filtering and JSON output.
const (
	CheckDuplicate     = "duplicate"
	CheckDuplicateID   = "duplicate-id"
	CheckNumerusCount  = "numerus-count"
	CheckMissingMarker = "missing-placeholder"
	CheckUnknownMarker = "unknown-placeholder"
	CheckUnfinished    = "unfinished"
	CheckEmpty         = "empty"
	CheckBadLanguage   = "language"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Check    string   `json:"check"`
	Context  string   `json:"context"`
	Message  string   `json:"message"`
	Detail   string   `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%v: [%v] %v/%v: %v", i.Severity, i.Check, i.Context, i.Message, i.Detail)
}

type Report struct {
	Language string      `json:"language"`
	Stats    trans.Stats `json:"stats"`
	Issues   []Issue     `json:"issues"`
}

func (r *Report) add(sev Severity, check string, ctx *trans.Context, m *trans.Message, format string, args ...interface{}) {
	i := Issue{Severity: sev, Check: check, Detail: fmt.Sprintf(format, args...)}
	if ctx != nil {
		i.Context = ctx.Name
	}
	if m != nil {
		i.Message = m.Name()
	}
	r.Issues = append(r.Issues, i)
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	return r.Count(Error) > 0
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Filter returns the issues at or above the given severity.
func (r *Report) Filter(min Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity >= min {
			out = append(out, i)
		}
	}
	return out
}

// Run checks every message of c.
func Run(c *trans.Catalog) *Report {
	r := &Report{Language: c.Language, Stats: c.Stats()}

	rule, err := numerus.ForLanguage(c.Language)
	if err != nil {
		r.add(Error, CheckBadLanguage, nil, nil, "cannot determine plural rule for %q: %v", c.Language, err)
	}

	keys := make(map[trans.Key]bool)
	ids := make(map[string]string)
	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			k := m.Key(ctx.Name)
			if keys[k] {
				r.add(Error, CheckDuplicate, ctx, m, "message key %v occurs more than once", k)
			}
			keys[k] = true

			if m.ID != "" {
				if other, ok := ids[m.ID]; ok && other != ctx.Name {
					r.add(Warning, CheckDuplicateID, ctx, m, "id also used in context %q", other)
				} else if !ok {
					ids[m.ID] = ctx.Name
				}
			}

			checkMessage(r, rule, err == nil, ctx, m)
		}
	}

	return r
}

func checkMessage(r *Report, rule numerus.Rule, haveRule bool, ctx *trans.Context, m *trans.Message) {
	t := m.Translation
	if t.Status == trans.Obsolete || t.Status == trans.Vanished {
		return
	}

	if t.Status == trans.Unfinished {
		r.add(Info, CheckUnfinished, ctx, m, "translation is unfinished")
		if t.Empty() {
			return
		}
	} else if t.Empty() {
		r.add(Warning, CheckEmpty, ctx, m, "translation is empty")
		return
	}

	if m.Numerus && haveRule && len(t.Forms) != rule.Count() {
		names := make([]string, len(rule.Forms()))
		for i, f := range rule.Forms() {
			names[i] = numerus.Name(f)
		}
		r.add(Error, CheckNumerusCount, ctx, m, "has %d numerus forms, language needs %d (%v)",
			len(t.Forms), rule.Count(), strings.Join(names, ", "))
	}

	want := trans.Placeholders(m.Source)
	for i, text := range t.Texts() {
		if text == "" {
			continue
		}
		got := trans.Placeholders(text)
		where := "translation"
		if m.Numerus {
			where = fmt.Sprintf("numerus form %d", i+1)
		}
		if missing := diff(want, got); len(missing) > 0 {
			r.add(Error, CheckMissingMarker, ctx, m, "%v drops %v", where, strings.Join(missing, ", "))
		}
		if extra := diff(got, want); len(extra) > 0 {
			r.add(Warning, CheckUnknownMarker, ctx, m, "%v uses %v not present in source", where, strings.Join(extra, ", "))
		}
		if !m.Numerus && trans.HasCount(m.Source) && !trans.HasCount(text) {
			r.add(Error, CheckMissingMarker, ctx, m, "%v drops %%n", where)
		}
	}
}

// diff returns the elements of a not in b, sorted.
func diff(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if !in[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
