package customers

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
	"github.com/ariefcatur/go-retail-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}

func TestCustomerLifecycle(t *testing.T) {
	svc := &Service{DB: testutil.NewDB(t), Dialect: sqlite.Dialect}
	ctx := context.Background()

	c, err := svc.Create(ctx, admin, Input{Name: "Nguyen Van A", Email: " A@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", c.Email)

	_, err = svc.Create(ctx, admin, Input{Name: "Dup", Email: "a@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	phone := "0901234567"
	c, err = svc.Update(ctx, admin, c.ID, Input{Name: "Nguyen Van B", Email: "b@example.com", Phone: &phone})
	require.NoError(t, err)
	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van B", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, admin, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin, c.ID), database.ErrNotFound)
}

func TestCustomerUpdateToTakenEmail(t *testing.T) {
	svc := &Service{DB: testutil.NewDB(t), Dialect: sqlite.Dialect}
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, Input{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, admin, Input{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, admin, b.ID, Input{Name: "B", Email: "a@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestCustomerMutationsRequireAdmin(t *testing.T) {
	svc := &Service{DB: testutil.NewDB(t), Dialect: sqlite.Dialect}
	_, err := svc.Create(context.Background(), auth.Principal{UserID: "e", Role: auth.RoleEmployee}, Input{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
