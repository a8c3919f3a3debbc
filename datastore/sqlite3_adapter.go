package datastore

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Sqlite3Adapter provides support for SQLite3 databases.
type Sqlite3Adapter struct {
	queries
}

func newSqlite3Adapter() *Sqlite3Adapter {
	return &Sqlite3Adapter{queries{bind: sqlx.QUESTION}}
}

func (s Sqlite3Adapter) EnsureVersionTableExists(db *sqlx.DB) error {
	return ensureVersionTable(db, `CREATE TABLE IF NOT EXISTS "schema_migrations" ("version" INTEGER PRIMARY KEY NOT NULL)`)
}

func (s Sqlite3Adapter) PostCreate(db *sqlx.DB) (err error) {
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return err
	}
	// Faster than using default journal file
	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return err
	}
	// Default (full) is slower
	_, err = db.Exec("PRAGMA synchronous = NORMAL")
	if err != nil {
		return err
	}

	return nil
}

func (s Sqlite3Adapter) up() []string {
	return []string{
		// 1
		`
CREATE TABLE "language" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "code" TEXT NOT NULL UNIQUE,
    "name" TEXT NOT NULL DEFAULT ''
);
CREATE TABLE "context" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "name" TEXT NOT NULL UNIQUE,
    "comment" TEXT NOT NULL DEFAULT ''
);
CREATE TABLE "message" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "context_id" INTEGER NOT NULL REFERENCES "context"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "msgid" TEXT NOT NULL DEFAULT '',
    "source" TEXT NOT NULL,
    "old_source" TEXT NOT NULL DEFAULT '',
    "comment" TEXT NOT NULL DEFAULT '',
    "extra_comment" TEXT NOT NULL DEFAULT '',
    "locations" TEXT NOT NULL DEFAULT '',
    "numerus" INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX "message_context_id" ON "message" ("context_id");
CREATE INDEX "message_msgid" ON "message" ("context_id", "msgid");
CREATE TABLE "translation" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "message_id" INTEGER NOT NULL REFERENCES "message"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "language_id" INTEGER NOT NULL REFERENCES "language"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "form" INTEGER NOT NULL DEFAULT 0,
    "content" TEXT NOT NULL DEFAULT '',
    "status" TEXT NOT NULL DEFAULT ''
);
CREATE INDEX "translation_language_id" ON "translation" ("language_id");
CREATE UNIQUE INDEX "translation_message_language_form" ON "translation" ("message_id", "language_id", "form");
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
    ('zh_CN', 'Chinese (China)');
`,
		// 2
		`ALTER TABLE "translation" ADD COLUMN "translator_comment" TEXT NOT NULL DEFAULT ''`,
		// 3
		`ALTER TABLE "language" ADD COLUMN "file_code" TEXT NOT NULL DEFAULT ''`,
	}
}

func (s Sqlite3Adapter) down() []string {
	return []string{
		// 1
		`
DROP TABLE translation;
DROP TABLE message;
DROP TABLE context;
DROP TABLE language;
`,
		// 2
		`ALTER TABLE "translation" DROP COLUMN "translator_comment"`,
		// 3
		`ALTER TABLE "language" DROP COLUMN "file_code"`,
	}
}

func (s Sqlite3Adapter) MigrateUp(db *sqlx.DB) (version int64, err error) {
	return migrateUp(db, s.queries, s.up())
}

func (s Sqlite3Adapter) MigrateDown(db *sqlx.DB) (version int64, err error) {
	return migrateDown(db, s.queries, s.down())
}

func (s Sqlite3Adapter) SupportsLastInsertId() bool {
	return true
}
