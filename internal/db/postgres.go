package db

import (
	_ "github.com/lib/pq"
)

// OpenPostgres opens a postgres-backed Backend (spec.md §6.4's
// "postgres" backend). dsn is a standard libpq connection string.
func OpenPostgres(dsn string) (Backend, error) {
	return newSQLBackend("postgres", dsn, schemaFor("postgres"))
}
