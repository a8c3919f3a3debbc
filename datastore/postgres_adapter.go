package datastore

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresAdapter provides support for PostgreSQL databases.
type PostgresAdapter struct {
	queries
}

func newPostgresAdapter() *PostgresAdapter {
	return &PostgresAdapter{queries{bind: sqlx.DOLLAR}}
}

func (a PostgresAdapter) EnsureVersionTableExists(db *sqlx.DB) error {
	return ensureVersionTable(db, `CREATE TABLE IF NOT EXISTS schema_migrations (version integer PRIMARY KEY NOT NULL)`)
}

func (a PostgresAdapter) PostCreate(db *sqlx.DB) (err error) {
	return nil
}

func (a PostgresAdapter) up() []string {
	return []string{
		// 1
		`
CREATE TABLE language (
    id SERIAL PRIMARY KEY,
    code varchar NOT NULL UNIQUE,
    name varchar NOT NULL DEFAULT ''
);
CREATE TABLE context (
    id SERIAL PRIMARY KEY,
    name varchar NOT NULL UNIQUE,
    comment text NOT NULL DEFAULT ''
);
CREATE TABLE message (
    id SERIAL PRIMARY KEY,
    context_id integer NOT NULL REFERENCES context(id) ON DELETE CASCADE ON UPDATE CASCADE,
    msgid varchar NOT NULL DEFAULT '',
    source text NOT NULL,
    old_source text NOT NULL DEFAULT '',
    comment text NOT NULL DEFAULT '',
    extra_comment text NOT NULL DEFAULT '',
    locations text NOT NULL DEFAULT '',
    numerus integer NOT NULL DEFAULT 0
);
CREATE INDEX message_context_id_idx ON message (context_id);
CREATE INDEX message_msgid_idx ON message (context_id, msgid);
CREATE TABLE translation (
    id SERIAL PRIMARY KEY,
    message_id integer NOT NULL REFERENCES message(id) ON DELETE CASCADE ON UPDATE CASCADE,
    language_id integer NOT NULL REFERENCES language(id) ON DELETE CASCADE ON UPDATE CASCADE,
    form integer NOT NULL DEFAULT 0,
    content text NOT NULL DEFAULT '',
    status varchar NOT NULL DEFAULT ''
);
CREATE INDEX translation_language_id_idx ON translation (language_id);
CREATE UNIQUE INDEX translation_message_language_form_idx ON translation (message_id, language_id, form);
INSERT INTO language (code, name) VALUES
    ('cs', 'Czech'),
    ('de', 'German'),
    ('en', 'English'),
    ('es', 'Spanish'),
    ('fi', 'Finnish'),
    ('fr', 'French'),
    ('hu_HU', 'Hungarian (Hungary)'),
    ('it', 'Italian'),
    ('nl', 'Dutch'),
    ('pl', 'Polish'),
    ('pt_BR', 'Portuguese (Brazil)'),
    ('ru_RU', 'Russian (Russia)'),
    ('sv', 'Swedish'),
    ('zh_CN', 'Chinese (China)');`,
		// 2
		`ALTER TABLE translation ADD COLUMN translator_comment text NOT NULL DEFAULT '';`,
		// 3
		`ALTER TABLE language ADD COLUMN file_code varchar(35) NOT NULL DEFAULT '';`,
	}
}

func (a PostgresAdapter) down() []string {
	return []string{
		// 1
		`
DROP TABLE IF EXISTS translation;
DROP TABLE IF EXISTS message;
DROP TABLE IF EXISTS context;
DROP TABLE IF EXISTS language;
`,
		// 2
		`ALTER TABLE translation DROP COLUMN IF EXISTS translator_comment;`,
		// 3
		`ALTER TABLE language DROP COLUMN IF EXISTS file_code;`,
	}
}

func (a PostgresAdapter) MigrateUp(db *sqlx.DB) (version int64, err error) {
	return migrateUp(db, a.queries, a.up())
}

func (a PostgresAdapter) MigrateDown(db *sqlx.DB) (version int64, err error) {
	return migrateDown(db, a.queries, a.down())
}

func (a PostgresAdapter) SupportsLastInsertId() bool {
	return false
}

func (a PostgresAdapter) CreateContextQuery() string {
	return a.queries.CreateContextQuery() + " RETURNING id"
}

func (a PostgresAdapter) CreateLanguageQuery() string {
	return a.queries.CreateLanguageQuery() + " RETURNING id"
}

func (a PostgresAdapter) CreateMessageQuery() string {
	return a.queries.CreateMessageQuery() + " RETURNING id"
}

func (a PostgresAdapter) CreateTranslationQuery() string {
	return a.queries.CreateTranslationQuery() + " RETURNING id"
}
