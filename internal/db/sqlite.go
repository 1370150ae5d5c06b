package db

import (
	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens (creating if necessary) a sqlite3-backed Backend at
// the given file path DSN (spec.md §6.4's "sqlite" backend).
func OpenSQLite(dsn string) (Backend, error) {
	return newSQLBackend("sqlite3", dsn, schemaFor("sqlite"))
}
