package migrations

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a local sqlite file (or ":memory:") or, for libsql:// and
// http(s):// urls, a remote libsql database.
func OpenDB(location string) (*sql.DB, error) {
	if isRemote(location) {
		db, err := sql.Open("libsql", location)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}

	if location != ":memory:" {
		err := os.MkdirAll(filepath.Dir(location), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", location)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// sqlite only supports a single writer, see
	// https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if location != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	return db, nil
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "libsql", "http", "https", "ws", "wss":
		return true
	}
	return false
}

// OpenAndMigrateDB opens the database and applies a schema made of idempotent
// statements (CREATE ... IF NOT EXISTS) separated by semicolons.
func OpenAndMigrateDB(schema, location string) (*sql.DB, error) {
	db, err := OpenDB(location)
	if err != nil {
		return nil, err
	}
	err = Migrate(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *sql.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		_, err := db.Exec(stmt)
		if err != nil {
			return fmt.Errorf("migrate db: %w", err)
		}
	}
	return nil
}
