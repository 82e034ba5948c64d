package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schema string

func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 8
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Open connects, exposes the pool as *sql.DB and makes sure the schema exists.
// Closing the returned DB does not close the pool; call pool.Close after it.
func Open(ctx context.Context, dsn string, maxConns int32) (*sql.DB, *pgxpool.Pool, error) {
	pool, err := Connect(ctx, dsn, maxConns)
	if err != nil {
		return nil, nil, err
	}
	db := stdlib.OpenDBFromPool(pool)
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, nil, err
	}
	return db, pool, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

var Dialect = database.Dialect{
	Name: "postgres",
	DayBucket: func(column string) string {
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM-DD')", column)
	},
	Violation: func(err error) database.Violation {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) {
			return database.NoViolation
		}
		switch pgErr.Code {
		case "23505":
			return database.UniqueViolation
		case "23503":
			return database.ForeignKeyViolation
		}
		return database.NoViolation
	},
}
