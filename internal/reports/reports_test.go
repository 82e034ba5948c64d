package reports

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
	"github.com/ariefcatur/go-retail-backoffice/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeder struct {
	t        *testing.T
	db       *sql.DB
	customer string
}

func newSeeder(t *testing.T) *seeder {
	db := testutil.NewDB(t)
	id := uuid.NewString()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := (&customers.Repo{DB: db, Dialect: sqlite.Dialect}).Insert(context.Background(), customers.Customer{
		ID: id, Name: "C1", Email: "c1@example.com", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return &seeder{t: t, db: db, customer: id}
}

func (s *seeder) product(name string) string {
	id := uuid.NewString()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := (&catalog.Repo{DB: s.db, Dialect: sqlite.Dialect}).InsertProduct(context.Background(), catalog.Product{
		ID: id, Name: name, Price: 1000, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(s.t, err)
	return id
}

func (s *seeder) order(status orders.Status, total int64, at time.Time, items map[string]int) {
	repo := &orders.Repo{DB: s.db}
	o := orders.Order{
		ID: uuid.NewString(), CustomerID: s.customer, TotalPrice: total,
		Status: status, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(s.t, repo.Insert(context.Background(), o))
	for pid, qty := range items {
		require.NoError(s.t, repo.InsertItem(context.Background(), orders.Item{
			ID: uuid.NewString(), OrderID: o.ID, ProductID: pid, Quantity: qty, Price: 1000, CreatedAt: at,
		}))
	}
}

func day(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }

func TestRevenueGroupsCompletedOrdersByDay(t *testing.T) {
	s := newSeeder(t)
	s.order(orders.StatusCompleted, 100000, day(1, 9), nil)
	s.order(orders.StatusCompleted, 50000, day(1, 23), nil)
	s.order(orders.StatusPending, 999999, day(1, 10), nil)
	s.order(orders.StatusCompleted, 70000, day(3, 0), nil)
	s.order(orders.StatusCanceled, 1, day(3, 1), nil)
	s.order(orders.StatusCompleted, 1, day(5, 0), nil) // di luar range

	svc := &Service{DB: s.db, Dialect: sqlite.Dialect}
	got, err := svc.Revenue(context.Background(), "2026-03-01", "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, []DailyRevenue{
		{Date: "2026-03-01", Total: 150000},
		{Date: "2026-03-03", Total: 70000},
	}, got)
}

func TestRevenueEndDayIsInclusive(t *testing.T) {
	s := newSeeder(t)
	s.order(orders.StatusCompleted, 42, time.Date(2026, 3, 3, 23, 59, 59, 0, time.UTC), nil)

	got, err := (&Service{DB: s.db, Dialect: sqlite.Dialect}).Revenue(context.Background(), "2026-03-03", "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, []DailyRevenue{{Date: "2026-03-03", Total: 42}}, got)
}

func TestRevenueEmptyRange(t *testing.T) {
	s := newSeeder(t)
	s.order(orders.StatusPending, 100000, day(1, 9), nil)

	got, err := (&Service{DB: s.db, Dialect: sqlite.Dialect}).Revenue(context.Background(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRevenueRejectsBadRange(t *testing.T) {
	svc := &Service{DB: testutil.NewDB(t), Dialect: sqlite.Dialect}
	for _, r := range [][2]string{{"2026-03-05", "2026-03-01"}, {"yesterday", "2026-03-01"}, {"2026-03-01", ""}} {
		_, err := svc.Revenue(context.Background(), r[0], r[1])
		assert.ErrorIs(t, err, ErrInvalidRange, "%v", r)
	}
}

func TestTopProducts(t *testing.T) {
	s := newSeeder(t)
	a, b, c := s.product("A"), s.product("B"), s.product("C")
	s.order(orders.StatusCompleted, 1, day(1, 0), map[string]int{a: 2, b: 5})
	s.order(orders.StatusCompleted, 1, day(2, 0), map[string]int{a: 1})
	s.order(orders.StatusPending, 1, day(2, 0), map[string]int{c: 100})

	got, err := (&Service{DB: s.db, Dialect: sqlite.Dialect}).TopProducts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TopProduct{ProductID: b, Name: "B", TotalSold: 5}, got[0])
	assert.Equal(t, TopProduct{ProductID: a, Name: "A", TotalSold: 3}, got[1])
}
