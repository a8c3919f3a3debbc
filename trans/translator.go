package trans

// Translator resolves messages against an ordered chain of tables, most specific locale first.
type Translator struct {
	tables   []*Table
	fallback Fallback
}

func NewTranslator(fallback Fallback, tables ...*Table) *Translator {
	ts := make([]*Table, 0, len(tables))
	for _, t := range tables {
		if t != nil {
			ts = append(ts, t)
		}
	}
	return &Translator{tables: ts, fallback: fallback}
}

// Language is the TS code of the most specific catalog, empty when no catalog matched.
func (tr *Translator) Language() string {
	if len(tr.tables) == 0 {
		return ""
	}
	return tr.tables[0].Catalog().Language
}

// Lookup returns the first usable translation in the chain.
func (tr *Translator) Lookup(context, source, comment string, n int) (string, bool) {
	for _, t := range tr.tables {
		if s, ok := t.Lookup(context, source, comment, n); ok {
			return s, true
		}
	}
	return "", false
}

func (tr *Translator) LookupID(id string, n int) (string, bool) {
	for _, t := range tr.tables {
		if s, ok := t.LookupID(id, n); ok {
			return s, true
		}
	}
	return "", false
}

func (tr *Translator) Translate(context, source, comment string, n int) string {
	if s, ok := tr.Lookup(context, source, comment, n); ok {
		return s
	}
	if tr.fallback == FallbackBlank {
		return ""
	}
	return ReplaceCount(source, n)
}

func (tr *Translator) TranslateID(id string, n int) string {
	if s, ok := tr.LookupID(id, n); ok {
		return s
	}
	if tr.fallback == FallbackBlank {
		return ""
	}
	for _, t := range tr.tables {
		if m, ok := t.FindID(id); ok {
			return ReplaceCount(m.Source, n)
		}
	}
	return id
}
