package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/ledger"
	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
	"github.com/ariefcatur/go-retail-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}
	employee = auth.Principal{UserID: "emp-1", Role: auth.RoleEmployee}
)

func newService(t *testing.T) *Service {
	t.Helper()
	clock := testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return &Service{DB: testutil.NewDB(t), Dialect: sqlite.Dialect, Now: clock.Now}
}

func ptr(s string) *string { return &s }

func TestCreateProductRecordsInitialStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Ao thun", Price: 100000, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, int64(100000), p.Price)

	a, err := svc.CreateAttribute(ctx, admin, AttributeInput{ProductID: p.ID, Size: "M", Color: "Red", Stock: 10})
	require.NoError(t, err)

	p, err = svc.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock, "own counter plus variants")

	logs, err := (&ledger.Repo{DB: svc.DB}).List(ctx, ledger.Filter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, ledger.Import, l.Type)
	}
	var variantLog ledger.Entry
	for _, l := range logs {
		if l.AttributeID != nil {
			variantLog = l
		}
	}
	require.NotNil(t, variantLog.AttributeID)
	assert.Equal(t, a.ID, *variantLog.AttributeID)
	assert.Equal(t, 10, variantLog.Quantity)
	assert.Equal(t, "M", variantLog.Size)
}

func TestZeroInitialStockWritesNoLedger(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Quan jean", Price: 350000})
	require.NoError(t, err)

	logs, err := (&ledger.Repo{DB: svc.DB}).List(ctx, ledger.Filter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)

	// tanpa riwayat, produk boleh dihapus
	require.NoError(t, svc.DeleteProduct(ctx, admin, p.ID))
	_, err = svc.Product(ctx, p.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Ao khoac", Price: 500000, Stock: 2})
	require.NoError(t, err)
	a, err := svc.CreateAttribute(ctx, admin, AttributeInput{ProductID: p.ID, Size: "L", Stock: 10})
	require.NoError(t, err)

	repo := &Repo{DB: svc.DB, Dialect: sqlite.Dialect}

	require.NoError(t, repo.AdjustAttributeStock(ctx, a.ID, -3))
	stock, err := repo.AttributeStock(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	assert.ErrorIs(t, repo.AdjustAttributeStock(ctx, a.ID, -8), ErrInsufficientStock)
	stock, err = repo.AttributeStock(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock, "failed decrement leaves stock untouched")

	require.NoError(t, repo.AdjustAttributeStock(ctx, a.ID, -7))
	assert.ErrorIs(t, repo.AdjustAttributeStock(ctx, "missing", -1), database.ErrNotFound)

	require.NoError(t, repo.AdjustProductStock(ctx, p.ID, -2))
	assert.ErrorIs(t, repo.AdjustProductStock(ctx, p.ID, -1), ErrInsufficientStock)
	require.NoError(t, repo.AdjustProductStock(ctx, p.ID, 4))

	got, err := svc.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	price, err := repo.ProductPrice(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), price)
	_, err = repo.ProductPrice(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Vay", Price: 200000, Stock: 3})
	require.NoError(t, err)

	got, err := svc.UpdateProduct(ctx, admin, p.ID, ProductInput{Name: "Vay dai", Price: 250000, Stock: 99})
	require.NoError(t, err)
	assert.Equal(t, "Vay dai", got.Name)
	assert.Equal(t, int64(250000), got.Price)
	assert.Equal(t, 3, got.Stock)

	_, err = svc.UpdateProduct(ctx, admin, "missing", ProductInput{Name: "x"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDeleteProductWithHistoryIsRefused(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Mu", Price: 50000, Stock: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, admin, p.ID), database.ErrInUse)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, admin, "missing"), database.ErrNotFound)
}

func TestCategories(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, admin, CategoryInput{Name: "Ao"})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, admin, ProductInput{Name: "Ao so mi", Price: 180000, CategoryID: &c.ID})
	require.NoError(t, err)
	require.NotNil(t, p.CategoryName)
	assert.Equal(t, "Ao", *p.CategoryName)

	c, err = svc.UpdateCategory(ctx, admin, c.ID, CategoryInput{Name: "Ao nam"})
	require.NoError(t, err)
	assert.Equal(t, "Ao nam", c.Name)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = svc.CreateProduct(ctx, admin, ProductInput{Name: "x", CategoryID: ptr("nope")})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	require.NoError(t, svc.DeleteCategory(ctx, admin, c.ID))
	p, err = svc.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, p.CategoryID)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestAttributesOfUnknownProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Attributes(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = svc.CreateAttribute(ctx, admin, AttributeInput{ProductID: "missing", Stock: 1})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMutationsRequireAdmin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, employee, ProductInput{Name: "x"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = svc.CreateCategory(ctx, auth.Principal{}, CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, employee, "x"), auth.ErrForbidden)
}
