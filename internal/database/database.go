// Package database holds what the repositories share regardless of the
// backing engine: the query interface, the transaction helper, and the
// engine-specific bits (Dialect) that cannot be written as portable SQL.
package database

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	// ErrInUse: row still referenced by other rows (FK violation on delete).
	ErrInUse = errors.New("still referenced")
)

// Querier is satisfied by *sql.DB and *sql.Tx, so repositories work the same
// inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. Any error from fn rolls everything back.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type Violation int

const (
	NoViolation Violation = iota
	UniqueViolation
	ForeignKeyViolation
)

type Dialect struct {
	Name string
	// DayBucket renders an expression that turns a timestamp column into a
	// 'YYYY-MM-DD' string in UTC.
	DayBucket func(column string) string
	// Violation classifies an integrity constraint error.
	Violation func(err error) Violation
}

// Translate maps constraint errors to ErrDuplicate / ErrInUse and passes
// everything else through.
func (d Dialect) Translate(err error) error {
	if err == nil || d.Violation == nil {
		return err
	}
	switch d.Violation(err) {
	case UniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case ForeignKeyViolation:
		return errors.Join(ErrInUse, err)
	}
	return err
}

// RowsAffected returns ErrNotFound when a write matched nothing.
func RowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NotFound turns sql.ErrNoRows into ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
