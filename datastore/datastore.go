/*
Package datastore keeps editable catalogs in a SQL database.

Every language shares one set of contexts and messages. Translations are stored per message and
language, one row per numerus form, so a catalog for any language can be rebuilt from the database
and exported back to a file.
*/
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/1Zgp/sailfish-barcode/config"
	"github.com/jmoiron/sqlx"
)

var ErrAlreadyExists = errors.New("already exists")

// Adapter provides database-driver-specific query strings, etc.
type Adapter interface {
	PostCreate(*sqlx.DB) error
	EnsureVersionTableExists(*sqlx.DB) error
	MigrateUp(*sqlx.DB) (int64, error)
	MigrateDown(*sqlx.DB) (int64, error)
	SupportsLastInsertId() bool

	CreateContextQuery() string
	CreateLanguageQuery() string
	CreateMessageQuery() string
	CreateTranslationQuery() string
	DeleteMessageQuery() string
	DeleteMessageTranslationsQuery() string
	DeleteTranslationQuery() string
	GetAllContextsQuery() string
	GetAllLanguagesQuery() string
	GetCatalogQuery() string
	GetLanguageFileCodeQuery() string
	GetFullContextQuery() string
	GetSingleContextQuery() string
	GetSingleLanguageQuery() string
	GetMessageIdByMsgidQuery() string
	GetMessageIdBySourceQuery() string
	GetMessageNumerusQuery() string
	GetTranslationCountQuery() string
	UpdateContextQuery() string
	UpdateLanguageFileCodeQuery() string
	UpdateMessageQuery() string
}

type DataStore struct {
	adapter      Adapter
	db           *sqlx.DB
	contextCache map[string]int64
	Stats        Stats
}

type Stats map[StatKey]StatItem

type StatKey struct {
	Name   string
	Action string
}

type StatItem struct {
	Duration time.Duration
	Count    int
}

func (s Stats) Log(name, action string, d time.Duration) {
	item := s[StatKey{Name: name, Action: action}]
	item.Count++
	item.Duration += d
	s[StatKey{Name: name, Action: action}] = item
}

func (s Stats) String() string {
	keys := make([]StatKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Action < keys[j].Action
	})

	var out strings.Builder
	for _, k := range keys {
		v := s[k]
		fmt.Fprintf(&out, "%v  %v '%v' actions took %v total, %v avg\n", v.Count, k.Name, k.Action, v.Duration, v.Duration/time.Duration(v.Count))
	}
	return out.String()
}

// Creates a new datastore using the given database connection. The driver parameter is used to
// select the appropriate database adapter, and should be one of the config.DbDriver* constants.
func New(db *sqlx.DB, driver string) (ds *DataStore, err error) {
	adp, err := newAdapter(driver)
	if err != nil {
		return &DataStore{}, err
	}

	ds = &DataStore{
		adapter:      adp,
		db:           db,
		contextCache: make(map[string]int64),
		Stats:        make(map[StatKey]StatItem),
	}

	err = ds.adapter.PostCreate(ds.db)
	if err != nil {
		return ds, err
	}

	return ds, nil
}

// Connect opens the database described by c and wraps it in a datastore.
func Connect(c config.DbConfig) (*DataStore, error) {
	db, err := sqlx.Connect(c.Driver, c.ConnectionString())
	if err != nil {
		return nil, err
	}
	ds, err := New(db, c.Driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ds, nil
}

func newAdapter(driver string) (adp Adapter, err error) {
	switch driver {
	case config.DbDriverSqlite3:
		adp = newSqlite3Adapter()
	case config.DbDriverPostgresql:
		adp = newPostgresAdapter()
	}

	if adp == nil {
		return nil, fmt.Errorf("no adapter available for database driver '%v'", driver)
	}

	return adp, nil
}

// DB returns the underlying connection.
func (ds *DataStore) DB() *sqlx.DB {
	return ds.db
}

// MigrateUp applies every pending schema migration and returns the resulting version.
func (ds *DataStore) MigrateUp() (version int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("schema", "migrate", time.Since(start)) }()

	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateUp(ds.db)
}

// MigrateDown reverts every applied schema migration.
func (ds *DataStore) MigrateDown() (version int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("schema", "migrate", time.Since(start)) }()

	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateDown(ds.db)
}

// insert runs an INSERT and returns the new row's id, using RETURNING where the driver cannot
// report the last insert id.
func (ds *DataStore) insert(ext sqlx.Ext, query string, args ...interface{}) (id int64, err error) {
	if !ds.adapter.SupportsLastInsertId() {
		err = ext.QueryRowx(query, args...).Scan(&id)
		return id, err
	}

	result, err := ext.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// inTx runs f in a transaction, committing when it returns no error.
func (ds *DataStore) inTx(f func(tx *sqlx.Tx) error) (err error) {
	tx, err := ds.db.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			// ids cached during the transaction may be gone
			ds.contextCache = make(map[string]int64)
		}
	}()

	if err = f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func notFound(what, name string) error {
	return fmt.Errorf("%v '%v' does not exist in database: %w", what, name, sql.ErrNoRows)
}
