// Package testutil gives the store and service tests a fresh in-memory
// database with the production schema.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Clock is a settable time source.
type Clock struct{ T time.Time }

func NewClock(t time.Time) *Clock { return &Clock{T: t.UTC()} }

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
