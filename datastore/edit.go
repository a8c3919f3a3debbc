package datastore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/1Zgp/sailfish-barcode/trans"
	"github.com/jmoiron/sqlx"
)

// Context is a context with the translations of its messages into every language.
type Context struct {
	Name     string
	Comment  string
	Messages []*Message
}

type Message struct {
	Id           int64
	MsgID        string
	Source       string
	Comment      string
	ExtraComment string
	Numerus      bool
	// keyed by language code
	Translations map[string]*Translation
}

// Name is how the message is addressed: its id, or its source text when it has none.
func (m *Message) Name() string {
	if m.MsgID != "" {
		return m.MsgID
	}
	return m.Source
}

type Translation struct {
	trans.Translation
	TranslatorComment string
}

// Gets all available languages
func (ds *DataStore) GetLanguageList() (languages []trans.Language, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("language", "get", time.Since(start)) }()

	err = ds.db.Select(&languages, ds.adapter.GetAllLanguagesQuery())

	return languages, err
}

// CreateLanguage adds a language. An empty name is filled in from the code.
// Returns ErrAlreadyExists when the code is taken.
func (ds *DataStore) CreateLanguage(code, name string) (l trans.Language, err error) {
	if _, err = trans.Tag(code); err != nil {
		return l, err
	}

	_, err = ds.getLanguage(ds.db, code)
	switch {
	case err == nil:
		return l, ErrAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return l, err
	}

	return ds.createLanguage(ds.db, code, name)
}

// Gets the names of all contexts, in import order.
func (ds *DataStore) GetContextList() (names []string, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("context", "get", time.Since(start)) }()

	err = ds.db.Select(&names, ds.adapter.GetAllContextsQuery())

	return names, err
}

// Gets all data for the context with the given name.
// Returns sql.ErrNoRows (wrapped) when the given name cannot be found.
func (ds *DataStore) GetFullContext(name string) (c *Context, err error) {
	dc, err := ds.getContext(ds.db, name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { ds.Stats.Log("context", "get", time.Since(start)) }()

	var rows []struct {
		MessageId         int64  `db:"message_id"`
		Msgid             string `db:"msgid"`
		Source            string `db:"source"`
		Comment           string `db:"comment"`
		ExtraComment      string `db:"extra_comment"`
		Numerus           bool   `db:"numerus"`
		Code              string `db:"code"`
		Form              int    `db:"form"`
		Content           string `db:"content"`
		Status            string `db:"status"`
		TranslatorComment string `db:"translator_comment"`
	}
	err = ds.db.Select(&rows, ds.adapter.GetFullContextQuery(), dc.Id)
	if err != nil {
		return nil, err
	}

	c = &Context{Name: dc.Name, Comment: dc.Comment, Messages: make([]*Message, 0)}
	var m *Message
	for _, r := range rows {
		if m == nil || m.Id != r.MessageId {
			m = &Message{
				Id:           r.MessageId,
				MsgID:        r.Msgid,
				Source:       r.Source,
				Comment:      r.Comment,
				ExtraComment: r.ExtraComment,
				Numerus:      r.Numerus,
				Translations: make(map[string]*Translation),
			}
			c.Messages = append(c.Messages, m)
		}
		if r.Code == "" {
			continue
		}

		t, ok := m.Translations[r.Code]
		if !ok {
			t = &Translation{
				Translation:       trans.Translation{Status: trans.ParseStatus(r.Status)},
				TranslatorComment: r.TranslatorComment,
			}
			m.Translations[r.Code] = t
		}
		if m.Numerus {
			t.Forms = append(t.Forms, r.Content)
		} else {
			t.Text = r.Content
		}
	}

	return c, nil
}

// Updates the translation of a message into a language. The message is found by its id, or by
// its source text and disambiguation comment.
// When allowCreate is false, will return an error if the message does not exist or is not yet
// translated into the given language.
// If allowCreate is true, both the message (taking name as its source text) and its translation
// will be created if either does not exist.
func (ds *DataStore) CreateOrUpdateTranslation(contextName, messageName, comment, langCode string, t Translation, allowCreate bool) error {
	return ds.inTx(func(tx *sqlx.Tx) error {
		contextId, err := ds.getContextId(tx, contextName)
		if err != nil {
			return err
		}

		lang, err := ds.getLanguage(tx, langCode)
		if err != nil {
			return err
		}

		messageId, err := ds.findMessage(tx, contextId, messageName, comment)
		numerus := len(t.Forms) > 0
		switch {
		case errors.Is(err, sql.ErrNoRows) && allowCreate:
			m := &trans.Message{Source: messageName, Comment: comment, Numerus: numerus}
			messageId, err = ds.createOrUpdateMessage(tx, contextId, m)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err = sqlx.Get(tx, &numerus, ds.adapter.GetMessageNumerusQuery(), messageId); err != nil {
				return err
			}
		}

		if !allowCreate {
			var count int
			err = sqlx.Get(tx, &count, ds.adapter.GetTranslationCountQuery(), messageId, lang.Id)
			if err != nil {
				return err
			}
			if count == 0 {
				return notFound("translation", messageName+"/"+langCode)
			}
		}

		tr := t.Translation
		if numerus && len(tr.Forms) == 0 && tr.Text != "" {
			tr.Forms = []string{tr.Text}
		}
		if !numerus && tr.Text == "" && len(tr.Forms) > 0 {
			tr.Text = tr.Forms[0]
		}
		return ds.replaceTranslation(tx, messageId, lang.Id, numerus, tr, t.TranslatorComment)
	})
}

// Deletes a single message and all its translations.
func (ds *DataStore) DeleteMessage(contextName, messageName, comment string) error {
	return ds.inTx(func(tx *sqlx.Tx) error {
		contextId, err := ds.getContextId(tx, contextName)
		if err != nil {
			return err
		}
		messageId, err := ds.findMessage(tx, contextId, messageName, comment)
		if err != nil {
			return err
		}

		start := time.Now()
		defer func() { ds.Stats.Log("message", "delete", time.Since(start)) }()

		if _, err = tx.Exec(ds.adapter.DeleteMessageTranslationsQuery(), messageId); err != nil {
			return err
		}
		_, err = tx.Exec(ds.adapter.DeleteMessageQuery(), messageId)
		return err
	})
}

// Deletes the translation of a message into one language.
func (ds *DataStore) DeleteTranslation(contextName, messageName, comment, langCode string) error {
	return ds.inTx(func(tx *sqlx.Tx) error {
		contextId, err := ds.getContextId(tx, contextName)
		if err != nil {
			return err
		}
		messageId, err := ds.findMessage(tx, contextId, messageName, comment)
		if err != nil {
			return err
		}
		lang, err := ds.getLanguage(tx, langCode)
		if err != nil {
			return err
		}

		start := time.Now()
		defer func() { ds.Stats.Log("translation", "delete", time.Since(start)) }()

		result, err := tx.Exec(ds.adapter.DeleteTranslationQuery(), messageId, lang.Id)
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return notFound("translation", messageName+"/"+langCode)
		}
		return nil
	})
}
