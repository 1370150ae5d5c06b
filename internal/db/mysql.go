package db

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL opens a mysql-backed Backend, grounded on the teacher's
// NewDB in node/sqldb/mysql.go (same parseTime/loc query params and
// pool tuning, generalized into newSQLBackend for all three SQL
// drivers). This is an enrichment beyond spec.md's listed sqlite and
// postgres backends (SPEC_FULL.md DOMAIN STACK).
func OpenMySQL(dsn string) (Backend, error) {
	dsn = fmt.Sprintf("%s?parseTime=true&loc=Local", dsn)
	return newSQLBackend("mysql", dsn, schemaFor("mysql"))
}
