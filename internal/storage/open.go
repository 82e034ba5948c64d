// Package storage picks the database backend named by the configuration.
package storage

import (
	"context"
	"database/sql"

	"github.com/ariefcatur/go-retail-backoffice/internal/config"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/postgres"
	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
)

// DB is an opened database together with the dialect its repositories need.
type DB struct {
	*sql.DB
	Dialect database.Dialect
	close   func()
}

// Close closes the database and, for Postgres, the pool behind it.
func (d *DB) Close() {
	if d.close != nil {
		d.close()
	}
}

func Open(ctx context.Context, cfg config.Config) (*DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, Dialect: sqlite.Dialect, close: func() { _ = db.Close() }}, nil
	default:
		db, pool, err := postgres.Open(ctx, cfg.DatabaseDSN, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, Dialect: postgres.Dialect, close: func() {
			_ = db.Close()
			pool.Close()
		}}, nil
	}
}
