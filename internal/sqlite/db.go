// Package sqlite opens the embedded database used for local runs
// (DB_DRIVER=sqlite) and by the test suites. The schema mirrors the Postgres
// one so repositories run unchanged on both.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Open opens dsn (a file path or ":memory:") and applies the schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withTimeFormat(dsn))
	if err != nil {
		return nil, err
	}

	// satu writer; :memory: juga butuh satu koneksi agar database tidak hilang
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// withTimeFormat makes the driver store timestamps in the layout SQLite's own
// date functions understand.
func withTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

var Dialect = database.Dialect{
	Name: "sqlite",
	DayBucket: func(column string) string {
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
	},
	Violation: func(err error) database.Violation {
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return database.NoViolation
		}
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return database.UniqueViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return database.ForeignKeyViolation
		case sqlite3.SQLITE_CONSTRAINT:
			// tanpa extended result code, bedakan dari pesannya
			msg := se.Error()
			if strings.Contains(msg, "UNIQUE") {
				return database.UniqueViolation
			}
			if strings.Contains(msg, "FOREIGN KEY") {
				return database.ForeignKeyViolation
			}
		}
		return database.NoViolation
	},
}
