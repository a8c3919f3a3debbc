package datastore

import "github.com/jmoiron/sqlx"

// queries holds the SQL shared by every adapter, written with '?' placeholders and rebound to the
// driver's bind style.
type queries struct {
	bind int
}

func (q queries) rebind(query string) string {
	return sqlx.Rebind(q.bind, query)
}

func (q queries) CreateContextQuery() string {
	return q.rebind("INSERT INTO context (name, comment) VALUES (?, ?)")
}

func (q queries) CreateLanguageQuery() string {
	return q.rebind("INSERT INTO language (code, name) VALUES (?, ?)")
}

func (q queries) CreateMessageQuery() string {
	return q.rebind("INSERT INTO message (context_id, msgid, source, old_source, comment, extra_comment, locations, numerus) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
}

func (q queries) CreateTranslationQuery() string {
	return q.rebind("INSERT INTO translation (message_id, language_id, form, content, status, translator_comment) VALUES (?, ?, ?, ?, ?, ?)")
}

func (q queries) DeleteMessageQuery() string {
	return q.rebind("DELETE FROM message WHERE id = ?")
}

func (q queries) DeleteMessageTranslationsQuery() string {
	return q.rebind("DELETE FROM translation WHERE message_id = ?")
}

func (q queries) DeleteTranslationQuery() string {
	return q.rebind("DELETE FROM translation WHERE message_id = ? AND language_id = ?")
}

func (q queries) GetAllContextsQuery() string {
	return "SELECT name FROM context ORDER BY id"
}

func (q queries) GetAllLanguagesQuery() string {
	return "SELECT id, code, name FROM language ORDER BY code"
}

func (q queries) GetLanguageFileCodeQuery() string {
	return q.rebind("SELECT file_code FROM language WHERE id = ?")
}

func (q queries) GetCatalogQuery() string {
	return q.rebind(`
SELECT
    context.name AS context, context.comment AS context_comment,
    message.id AS message_id, message.msgid, message.source, message.old_source, message.comment,
    message.extra_comment, message.locations, message.numerus,
    CASE WHEN translation.id IS NULL THEN 0 ELSE 1 END AS translated,
    COALESCE(translation.form, 0) AS form,
    COALESCE(translation.content, '') AS content,
    COALESCE(translation.status, '') AS status,
    COALESCE(translation.translator_comment, '') AS translator_comment
FROM context
INNER JOIN message ON message.context_id = context.id
LEFT JOIN translation ON translation.message_id = message.id AND translation.language_id = ?
ORDER BY context.id, message.id, translation.form`)
}

func (q queries) GetFullContextQuery() string {
	return q.rebind(`
SELECT
    message.id AS message_id, message.msgid, message.source, message.comment,
    message.extra_comment, message.numerus,
    COALESCE(language.code, '') AS code,
    COALESCE(translation.form, 0) AS form,
    COALESCE(translation.content, '') AS content,
    COALESCE(translation.status, '') AS status,
    COALESCE(translation.translator_comment, '') AS translator_comment
FROM message
LEFT JOIN translation ON translation.message_id = message.id
LEFT JOIN language ON language.id = translation.language_id
WHERE message.context_id = ?
ORDER BY message.id, language.code, translation.form`)
}

func (q queries) GetSingleContextQuery() string {
	return q.rebind("SELECT id, name, comment FROM context WHERE name = ?")
}

func (q queries) GetSingleLanguageQuery() string {
	return q.rebind("SELECT id, code, name FROM language WHERE code = ?")
}

func (q queries) GetMessageIdByMsgidQuery() string {
	return q.rebind("SELECT id FROM message WHERE context_id = ? AND msgid = ? ORDER BY id LIMIT 1")
}

func (q queries) GetMessageIdBySourceQuery() string {
	return q.rebind("SELECT id FROM message WHERE context_id = ? AND msgid = '' AND source = ? AND comment = ? ORDER BY id LIMIT 1")
}

func (q queries) GetMessageNumerusQuery() string {
	return q.rebind("SELECT numerus FROM message WHERE id = ?")
}

func (q queries) GetTranslationCountQuery() string {
	return q.rebind("SELECT COUNT(*) FROM translation WHERE message_id = ? AND language_id = ?")
}

func (q queries) UpdateContextQuery() string {
	return q.rebind("UPDATE context SET comment = ? WHERE id = ?")
}

func (q queries) UpdateLanguageFileCodeQuery() string {
	return q.rebind("UPDATE language SET file_code = ? WHERE id = ?")
}

func (q queries) UpdateMessageQuery() string {
	return q.rebind("UPDATE message SET source = ?, old_source = ?, extra_comment = ?, locations = ?, numerus = ? WHERE id = ?")
}

func (q queries) versionQuery() string {
	return "SELECT version FROM schema_migrations"
}

func (q queries) updateVersionQuery() string {
	return q.rebind("UPDATE schema_migrations SET version = ?")
}
