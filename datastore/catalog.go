package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/1Zgp/sailfish-barcode/ts"
	"github.com/1Zgp/sailfish-barcode/xliff"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/language/display"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeLocations(ls []trans.Location) (string, error) {
	if len(ls) == 0 {
		return "", nil
	}
	b, err := json.Marshal(ls)
	return string(b), err
}

func decodeLocations(s string) (ls []trans.Location, err error) {
	if s == "" {
		return nil, nil
	}
	err = json.Unmarshal([]byte(s), &ls)
	return ls, err
}

func (ds *DataStore) getLanguage(q sqlx.Queryer, code string) (l trans.Language, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("language", "get", time.Since(start)) }()

	err = sqlx.Get(q, &l, ds.adapter.GetSingleLanguageQuery(), code)
	if err == nil {
		return l, nil
	}
	if err != sql.ErrNoRows {
		return l, err
	}

	// "hu-hu" finds "hu_HU"
	var all []trans.Language
	if err = sqlx.Select(q, &all, ds.adapter.GetAllLanguagesQuery()); err != nil {
		return l, err
	}
	for _, cand := range all {
		if normalizeCode(cand.Code) == normalizeCode(code) {
			return cand, nil
		}
	}

	return l, notFound("language", code)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// languageName is the English display name for a TS language code.
func languageName(code string) string {
	tag, err := trans.Tag(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}

func (ds *DataStore) createLanguage(ext sqlx.Ext, code, name string) (l trans.Language, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("language", "insert", time.Since(start)) }()

	if name == "" {
		name = languageName(code)
	}
	id, err := ds.insert(ext, ds.adapter.CreateLanguageQuery(), code, name)
	if err != nil {
		return l, err
	}
	return trans.Language{Id: id, Code: code, Name: name}, nil
}

func (ds *DataStore) createOrGetLanguage(ext sqlx.Ext, code string) (l trans.Language, err error) {
	l, err = ds.getLanguage(ext, code)
	if errors.Is(err, sql.ErrNoRows) {
		return ds.createLanguage(ext, code, "")
	}
	return l, err
}

type dbContext struct {
	Id      int64
	Name    string
	Comment string
}

func (ds *DataStore) getContext(q sqlx.Queryer, name string) (c dbContext, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("context", "get", time.Since(start)) }()

	err = sqlx.Get(q, &c, ds.adapter.GetSingleContextQuery(), name)
	if err == sql.ErrNoRows {
		return c, notFound("context", name)
	}
	return c, err
}

func (ds *DataStore) getContextId(q sqlx.Queryer, name string) (id int64, err error) {
	if id, ok := ds.contextCache[name]; ok {
		return id, nil
	}

	c, err := ds.getContext(q, name)
	if err != nil {
		return 0, err
	}
	ds.contextCache[name] = c.Id

	return c.Id, nil
}

func (ds *DataStore) createOrUpdateContext(ext sqlx.Ext, ctx *trans.Context) (id int64, err error) {
	c, err := ds.getContext(ext, ctx.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		start := time.Now()
		defer func() { ds.Stats.Log("context", "insert", time.Since(start)) }()

		id, err = ds.insert(ext, ds.adapter.CreateContextQuery(), ctx.Name, ctx.Comment)
		if err != nil {
			return 0, err
		}

	case err != nil:
		return 0, err

	default:
		id = c.Id
		if ctx.Comment != "" && ctx.Comment != c.Comment {
			if _, err = ext.Exec(ds.adapter.UpdateContextQuery(), ctx.Comment, id); err != nil {
				return 0, err
			}
		}
	}

	ds.contextCache[ctx.Name] = id
	return id, nil
}

// getMessageId finds a message by its id, or by source text and disambiguation comment when it
// has no id.
func (ds *DataStore) getMessageId(q sqlx.Queryer, contextId int64, msgid, source, comment string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("message", "get", time.Since(start)) }()

	if msgid != "" {
		err = q.QueryRowx(ds.adapter.GetMessageIdByMsgidQuery(), contextId, msgid).Scan(&id)
	} else {
		err = q.QueryRowx(ds.adapter.GetMessageIdBySourceQuery(), contextId, source, comment).Scan(&id)
	}
	return id, err
}

// findMessage resolves a message name as used in URLs: the message id, or the source text.
func (ds *DataStore) findMessage(q sqlx.Queryer, contextId int64, name, comment string) (id int64, err error) {
	id, err = ds.getMessageId(q, contextId, name, "", "")
	if err == sql.ErrNoRows {
		id, err = ds.getMessageId(q, contextId, "", name, comment)
	}
	if err == sql.ErrNoRows {
		return 0, notFound("message", name)
	}
	return id, err
}

func (ds *DataStore) createOrUpdateMessage(ext sqlx.Ext, contextId int64, m *trans.Message) (id int64, err error) {
	locations, err := encodeLocations(m.Locations)
	if err != nil {
		return 0, err
	}

	id, err = ds.getMessageId(ext, contextId, m.ID, m.Source, m.Comment)
	if err == sql.ErrNoRows {
		start := time.Now()
		defer func() { ds.Stats.Log("message", "insert", time.Since(start)) }()

		return ds.insert(ext, ds.adapter.CreateMessageQuery(),
			contextId, m.ID, m.Source, m.OldSource, m.Comment, m.ExtraComment, locations, boolToInt(m.Numerus))
	}
	if err != nil {
		return 0, err
	}

	start := time.Now()
	defer func() { ds.Stats.Log("message", "update", time.Since(start)) }()

	_, err = ext.Exec(ds.adapter.UpdateMessageQuery(),
		m.Source, m.OldSource, m.ExtraComment, locations, boolToInt(m.Numerus), id)
	return id, err
}

// replaceTranslation stores t as the translation of a message into a language, one row per
// numerus form.
func (ds *DataStore) replaceTranslation(ext sqlx.Ext, messageId, languageId int64, numerus bool, t trans.Translation, translatorComment string) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("translation", "insert", time.Since(start)) }()

	if _, err = ext.Exec(ds.adapter.DeleteTranslationQuery(), messageId, languageId); err != nil {
		return err
	}

	texts := []string{t.Text}
	if numerus && len(t.Forms) > 0 {
		texts = t.Forms
	}
	for form, content := range texts {
		_, err = ext.Exec(ds.adapter.CreateTranslationQuery(),
			messageId, languageId, form, content, t.Status.String(), translatorComment)
		if err != nil {
			return err
		}
	}

	return nil
}

// ImportCatalog stores every message of c and its translations into c's language, which is created
// when missing. Messages already in the database are updated. Of messages sharing a key only the
// first is imported. It returns the number of messages imported.
func (ds *DataStore) ImportCatalog(c *trans.Catalog) (count int, err error) {
	if _, err = c.Tag(); err != nil {
		return 0, fmt.Errorf("catalog language '%v': %w", c.Language, err)
	}

	err = ds.inTx(func(tx *sqlx.Tx) error {
		lang, err := ds.createOrGetLanguage(tx, c.Language)
		if err != nil {
			return err
		}

		seen := make(map[trans.Key]bool)
		for _, ctx := range c.Contexts {
			contextId, err := ds.createOrUpdateContext(tx, ctx)
			if err != nil {
				return err
			}

			for _, m := range ctx.Messages {
				key := m.Key(ctx.Name)
				if seen[key] {
					continue
				}
				seen[key] = true

				messageId, err := ds.createOrUpdateMessage(tx, contextId, m)
				if err != nil {
					return err
				}
				err = ds.replaceTranslation(tx, messageId, lang.Id, m.Numerus, m.Translation, m.TranslatorComment)
				if err != nil {
					return err
				}
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// readCatalog decodes a TS or XLIFF file, chosen by its extension.
func readCatalog(file string) (*trans.Catalog, error) {
	switch filepath.Ext(file) {
	case xliff.Extension:
		return xliff.NewFromFile(file)
	default:
		return ts.NewFromFile(file)
	}
}

// ImportDir imports every TS and XLIFF file in dir. The base name of each imported file is sent
// on notify, when it is not nil.
func (ds *DataStore) ImportDir(dir string, notify chan<- string) (count int, err error) {
	var files []string
	for _, ext := range []string{ts.Extension, xliff.Extension} {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return 0, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for i, file := range files {
		c, err := readCatalog(file)
		if err != nil {
			return i, err
		}

		if _, err = ds.ImportCatalog(c); err != nil {
			return i, fmt.Errorf("%v: %w", file, err)
		}
		if err = ds.setFileCode(c.Language, file); err != nil {
			return i, fmt.Errorf("%v: %w", file, err)
		}

		if notify != nil {
			notify <- filepath.Base(file)
		}
	}

	return len(files), nil
}

type catalogRow struct {
	Context           string `db:"context"`
	ContextComment    string `db:"context_comment"`
	MessageId         int64  `db:"message_id"`
	Msgid             string `db:"msgid"`
	Source            string `db:"source"`
	OldSource         string `db:"old_source"`
	Comment           string `db:"comment"`
	ExtraComment      string `db:"extra_comment"`
	Locations         string `db:"locations"`
	Numerus           bool   `db:"numerus"`
	Translated        bool   `db:"translated"`
	Form              int    `db:"form"`
	Content           string `db:"content"`
	Status            string `db:"status"`
	TranslatorComment string `db:"translator_comment"`
}

// GetCatalog rebuilds the catalog of a language. Messages with no translation into the language
// come back unfinished and empty.
// Returns sql.ErrNoRows (wrapped) when the language does not exist.
func (ds *DataStore) GetCatalog(code string) (c *trans.Catalog, err error) {
	lang, err := ds.getLanguage(ds.db, code)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { ds.Stats.Log("catalog", "get", time.Since(start)) }()

	var rows []catalogRow
	if err = ds.db.Select(&rows, ds.adapter.GetCatalogQuery(), lang.Id); err != nil {
		return nil, err
	}

	c = &trans.Catalog{Version: ts.DefaultVersion, Language: lang.Code}
	var (
		ctx    *trans.Context
		m      *trans.Message
		lastId int64
	)
	for _, r := range rows {
		if ctx == nil || ctx.Name != r.Context {
			ctx = &trans.Context{Name: r.Context, Comment: r.ContextComment}
			c.Contexts = append(c.Contexts, ctx)
		}

		if m == nil || r.MessageId != lastId {
			locations, err := decodeLocations(r.Locations)
			if err != nil {
				return nil, fmt.Errorf("message %v locations: %w", r.MessageId, err)
			}
			m = &trans.Message{
				ID:                r.Msgid,
				Source:            r.Source,
				OldSource:         r.OldSource,
				Comment:           r.Comment,
				ExtraComment:      r.ExtraComment,
				TranslatorComment: r.TranslatorComment,
				Locations:         locations,
				Numerus:           r.Numerus,
				Translation:       trans.Translation{Status: trans.ParseStatus(r.Status)},
			}
			if !r.Translated {
				m.Translation.Status = trans.Unfinished
			}
			ctx.Messages = append(ctx.Messages, m)
			lastId = r.MessageId
		}

		if !r.Translated {
			continue
		}
		if m.Numerus {
			m.Translation.Forms = append(m.Translation.Forms, r.Content)
		} else {
			m.Translation.Text = r.Content
		}
	}

	for _, ctx := range c.Contexts {
		for _, m := range ctx.Messages {
			// a single empty form is how a numerus message without forms is stored
			if m.Numerus && len(m.Translation.Forms) == 1 && m.Translation.Forms[0] == "" {
				m.Translation.Forms = nil
			}
		}
	}

	return c, nil
}

// ExportCatalog writes the catalog of a language into the export path and returns the path of the
// written file. The file is named after the language suffix of the file it was imported from, so
// "harbour-barcode-hu.ts" is written back under that name.
func (ds *DataStore) ExportCatalog(code string, conf config.CatalogConfig) (path string, err error) {
	c, err := ds.GetCatalog(code)
	if err != nil {
		return "", err
	}
	c.SourceLanguage = conf.SourceLanguage

	fileCode, err := ds.fileCode(c.Language)
	if err != nil {
		return "", err
	}

	start := time.Now()
	defer func() { ds.Stats.Log("catalog", "export", time.Since(start)) }()

	switch conf.ExportFormat {
	case config.FormatTS, "":
		path = filepath.Join(conf.ExportPath, ts.Filename(conf.FilePrefix, fileCode))
		return path, ts.WriteFile(c, path)
	case config.FormatXliff:
		path = filepath.Join(conf.ExportPath, xliff.Filename(conf.FilePrefix, fileCode))
		return path, xliff.WriteFile(c, path, conf.SourceLanguage)
	}
	return "", fmt.Errorf("unknown export format '%v'", conf.ExportFormat)
}

// fileCode is the language suffix of the file a language was last imported from, or its code.
func (ds *DataStore) fileCode(code string) (string, error) {
	lang, err := ds.getLanguage(ds.db, code)
	if err != nil {
		return "", err
	}
	var fc string
	if err = sqlx.Get(ds.db, &fc, ds.adapter.GetLanguageFileCodeQuery(), lang.Id); err != nil {
		return "", err
	}
	if fc == "" {
		return lang.Code, nil
	}
	return fc, nil
}

// setFileCode remembers the language suffix of an imported file name.
func (ds *DataStore) setFileCode(code, file string) error {
	_, suffix, err := ts.LangFromFilename(filepath.Base(file))
	if err != nil {
		return nil
	}
	lang, err := ds.getLanguage(ds.db, code)
	if err != nil {
		return err
	}
	_, err = ds.db.Exec(ds.adapter.UpdateLanguageFileCodeQuery(), suffix, lang.Id)
	return err
}
