package datastore

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ensureVersionTable creates the schema_migrations table with a single version 0 row when it is
// missing.
func ensureVersionTable(db *sqlx.DB, create string) (err error) {
	_, err = db.Exec(create)
	if err != nil {
		return err
	}

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM schema_migrations`)
	if err != nil {
		return err
	}
	switch {
	case count == 0:
		_, err = db.Exec(`INSERT INTO schema_migrations (version) VALUES (0)`)
	case count > 1:
		err = errors.New("too many rows in schema_migrations table")
	}

	return err
}

// migrateUp applies the migrations in up that are newer than the current version, each in its
// own transaction.
func migrateUp(db *sqlx.DB, q queries, up []string) (version int64, err error) {
	startVer, err := currentVersion(db, q)
	if err != nil {
		return version, err
	}

	for i, query := range up {
		migTo := int64(i + 1)
		if migTo <= startVer {
			version = migTo
			continue
		}

		if err = applyMigration(db, q, query, migTo); err != nil {
			return version, err
		}
		version = migTo
	}

	return version, err
}

// migrateDown reverts applied migrations, newest first.
func migrateDown(db *sqlx.DB, q queries, down []string) (version int64, err error) {
	startVer, err := currentVersion(db, q)
	if err != nil {
		return version, err
	}

	version = startVer
	for i := len(down) - 1; i >= 0; i-- {
		migVer := int64(i + 1) // The version of the Down migration we will apply
		migTo := int64(i)      // The version we will end up at

		// Skip migrations for newer versions
		if migVer > startVer {
			continue
		}

		if err = applyMigration(db, q, down[i], migTo); err != nil {
			return version, err
		}
		version = migTo
	}

	return version, err
}

func applyMigration(db *sqlx.DB, q queries, query string, to int64) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(query); err != nil {
		tx.Rollback()
		return err
	}
	if _, err = tx.Exec(q.updateVersionQuery(), to); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func currentVersion(db *sqlx.DB, q queries) (version int64, err error) {
	err = db.QueryRow(q.versionQuery()).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, err
	default:
		return version, nil
	}
}
