package httpx

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/inventory"
	"github.com/ariefcatur/go-retail-backoffice/internal/logx"
	"github.com/ariefcatur/go-retail-backoffice/internal/notify"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/ariefcatur/go-retail-backoffice/internal/redisx"
	"github.com/ariefcatur/go-retail-backoffice/internal/reports"
	"github.com/ariefcatur/go-retail-backoffice/internal/sqlite"
	"github.com/ariefcatur/go-retail-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	t        *testing.T
	db       *sql.DB
	handler  http.Handler
	tokens   *auth.Tokens
	admin    string
	employee string
}

type options struct {
	redis     bool
	rateLimit int
}

func newEnv(t *testing.T, opt options) *env {
	t.Helper()
	db := testutil.NewDB(t)
	log := logx.Discard()
	dialect := sqlite.Dialect
	store := &activity.Store{DB: db}
	trail := &activity.Trail{Recorder: store, Log: log}
	notifier := notify.Log{Logger: log}
	tokens := auth.NewTokens("test-secret", time.Hour)

	d := Deps{
		Log:    log,
		Tokens: tokens,
		Auth: &auth.Service{
			Users: &auth.UserRepo{DB: db, Dialect: dialect}, Tokens: tokens,
			Notifier: notifier, Activity: trail, Log: log, Cost: bcrypt.MinCost,
		},
		Catalog:    &catalog.Service{DB: db, Dialect: dialect, Activity: trail},
		Customers:  &customers.Service{DB: db, Dialect: dialect, Activity: trail},
		Promotions: &promotions.Service{DB: db, Dialect: dialect, Activity: trail},
		Orders:     &orders.Service{DB: db, Dialect: dialect, Notifier: notifier, Activity: trail, Log: log},
		Inventory:  &inventory.Service{DB: db, Dialect: dialect, Activity: trail},
		Reports:    &reports.Service{DB: db, Dialect: dialect},
		Activity:   store,
		Health:     db.PingContext,
	}
	if opt.redis {
		mr := miniredis.RunT(t)
		rdb := redisx.New(mr.Addr())
		t.Cleanup(func() { _ = rdb.Close() })
		d.Idempotency = &redisx.Idempotency{RDB: rdb}
		if opt.rateLimit > 0 {
			d.RateLimiter = &redisx.RateLimiter{RDB: rdb, Max: opt.rateLimit, Window: time.Minute}
		}
	}

	e := &env{t: t, db: db, handler: NewRouter(d), tokens: tokens}
	e.admin = e.token(auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin, Name: "Admin"})
	e.employee = e.token(auth.Principal{UserID: "emp-1", Role: auth.RoleEmployee, Name: "Clerk"})
	return e
}

func (e *env) token(p auth.Principal) string {
	raw, _, err := e.tokens.Issue(p)
	require.NoError(e.t, err)
	return raw
}

func (e *env) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seed creates customer C1 and product P1 (100000) with variant A1 (stock).
func (e *env) seed(stock int) (customerID, productID, attributeID string) {
	e.t.Helper()
	rec := e.do("POST", "/api/customers", e.admin, map[string]any{"name": "C1", "email": "c1@example.com"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	customerID = decodeAs[customers.Customer](e.t, rec).ID

	rec = e.do("POST", "/api/products", e.admin, map[string]any{"name": "P1", "price": 100000})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	productID = decodeAs[catalog.Product](e.t, rec).ID

	rec = e.do("POST", "/api/products/attributes", e.admin, map[string]any{"productId": productID, "size": "M", "color": "Red", "stock": stock})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	attributeID = decodeAs[catalog.Attribute](e.t, rec).ID
	return
}

func orderBody(customerID, productID, attributeID string, qty int) map[string]any {
	return map[string]any{
		"customerId": customerID,
		"items": []map[string]any{
			{"productId": productID, "attributeId": attributeID, "quantity": qty, "price": 1},
		},
	}
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, options{})
	rec := e.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAuthentication(t *testing.T) {
	e := newEnv(t, options{})

	rec := e.do("GET", "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do("GET", "/api/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do("GET", "/api/products", e.employee, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = e.do("POST", "/api/orders", e.employee, map[string]any{"customerId": "x", "items": []any{}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do("GET", "/api/activity", e.employee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginAndRegister(t *testing.T) {
	e := newEnv(t, options{})

	rec := e.do("POST", "/api/auth/register", e.admin, map[string]any{
		"username": "clerk", "password": "password1", "role": "Employee", "email": "clerk@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = e.do("POST", "/api/auth/register", e.employee, map[string]any{
		"username": "other", "password": "password1", "role": "Employee",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do("POST", "/api/auth/login", "", map[string]any{"username": "clerk", "password": "password1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decodeAs[auth.Session](t, rec)
	assert.Equal(t, auth.RoleEmployee, s.Role)

	rec = e.do("GET", "/api/orders", s.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do("POST", "/api/auth/login", "", map[string]any{"username": "clerk", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do("POST", "/api/auth/reset-password", "", map[string]any{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderFlow(t *testing.T) {
	e := newEnv(t, options{})
	customerID, productID, attributeID := e.seed(10)

	rec := e.do("POST", "/api/orders", e.admin, orderBody(customerID, productID, attributeID, 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeAs[CreateOrderResp](t, rec)
	assert.Equal(t, int64(200000), resp.TotalPrice)
	assert.False(t, resp.Idempotent)

	rec = e.do("GET", "/api/orders/"+resp.OrderID+"/details", e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeAs[orders.Details](t, rec)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "P1", d.Items[0].ProductName)
	assert.Equal(t, int64(100000), d.Items[0].Price)

	rec = e.do("GET", "/api/products/"+productID+"/attributes", e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	attrs := decodeAs[[]catalog.Attribute](t, rec)
	require.Len(t, attrs, 1)
	assert.Equal(t, 8, attrs[0].Stock)

	rec = e.do("GET", "/api/inventory?productId="+productID, e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]map[string]any](t, rec), 2, "initial IMPORT plus the EXPORT")

	rec = e.do("PUT", "/api/orders/"+resp.OrderID, e.admin, map[string]any{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, orders.StatusShipped, decodeAs[orders.Order](t, rec).Status)

	rec = e.do("PUT", "/api/orders/"+resp.OrderID, e.admin, map[string]any{"status": "PENDING"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do("PUT", "/api/orders/"+resp.OrderID, e.admin, map[string]any{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do("PUT", "/api/orders/missing", e.admin, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do("GET", "/api/customers/"+customerID+"/history", e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]orders.Order](t, rec), 1)

	rec = e.do("GET", "/api/activity", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var actions []string
	for _, a := range decodeAs[[]activity.Entry](t, rec) {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, activity.ActionCreateOrder)
	assert.Contains(t, actions, activity.ActionUpdateOrder)
}

func TestOrderErrors(t *testing.T) {
	e := newEnv(t, options{})
	customerID, productID, attributeID := e.seed(1)

	rec := e.do("POST", "/api/orders", e.admin, orderBody(customerID, productID, attributeID, 5))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")

	rec = e.do("POST", "/api/orders", e.admin, orderBody("missing", productID, attributeID, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do("POST", "/api/orders", e.admin, orderBody(customerID, productID, attributeID, 0))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeAs[errorBody](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "gt", body.Fields["items[0].quantity"])

	rec = e.do("POST", "/api/orders", e.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPromotionOnOrder(t *testing.T) {
	e := newEnv(t, options{})
	customerID, productID, attributeID := e.seed(10)

	now := time.Now().UTC()
	rec := e.do("POST", "/api/promotions", e.admin, map[string]any{
		"code": "SALE10", "discountType": "PERCENTAGE", "discountValue": 10,
		"startDate": now.Add(-time.Hour), "endDate": now.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := orderBody(customerID, productID, attributeID, 2)
	body["promotionCode"] = "SALE10"
	rec = e.do("POST", "/api/orders", e.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeAs[CreateOrderResp](t, rec)
	assert.Equal(t, int64(180000), resp.TotalPrice)
	require.NotNil(t, resp.Promotion)
	assert.True(t, resp.Promotion.Applied)

	body["promotionCode"] = "NOPE"
	rec = e.do("POST", "/api/orders", e.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp = decodeAs[CreateOrderResp](t, rec)
	assert.Equal(t, int64(200000), resp.TotalPrice)
	assert.Equal(t, promotions.ReasonNotFound, resp.Promotion.Reason)

	rec = e.do("POST", "/api/promotions", e.admin, map[string]any{
		"code": "BAD", "discountType": "PERCENTAGE", "discountValue": 150,
		"startDate": now, "endDate": now,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotentOrderCreation(t *testing.T) {
	e := newEnv(t, options{redis: true})
	customerID, productID, attributeID := e.seed(10)
	body := orderBody(customerID, productID, attributeID, 2)

	first := e.do("POST", "/api/orders", e.admin, body, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	r1 := decodeAs[CreateOrderResp](t, first)

	second := e.do("POST", "/api/orders", e.admin, body, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())
	r2 := decodeAs[CreateOrderResp](t, second)
	assert.Equal(t, r1.OrderID, r2.OrderID)
	assert.True(t, r2.Idempotent)

	stock, err := (&catalog.Repo{DB: e.db, Dialect: sqlite.Dialect}).AttributeStock(context.Background(), attributeID)
	require.NoError(t, err)
	assert.Equal(t, 8, stock, "replay must not decrement again")

	// key gagal dilepas sehingga bisa dicoba ulang
	bad := orderBody(customerID, productID, attributeID, 50)
	rec := e.do("POST", "/api/orders", e.admin, bad, "Idempotency-Key", "retry-me")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = e.do("POST", "/api/orders", e.admin, body, "Idempotency-Key", "retry-me")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, options{redis: true, rateLimit: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, e.do("GET", "/api/products", e.employee, nil).Code)
	}
	rec := e.do("GET", "/api/products", e.employee, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// healthz berada di luar /api
	assert.Equal(t, http.StatusOK, e.do("GET", "/healthz", "", nil).Code)
}

func TestReports(t *testing.T) {
	e := newEnv(t, options{})

	rec := e.do("GET", "/api/reports/revenue?startDate=2026-03-01&endDate=2026-03-31", e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = e.do("GET", "/api/reports/revenue?startDate=2026-03-31&endDate=2026-03-01", e.employee, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do("GET", "/api/reports/top-products", e.employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCatalogConflicts(t *testing.T) {
	e := newEnv(t, options{})
	_, productID, _ := e.seed(3)

	rec := e.do("DELETE", "/api/products/"+productID, e.admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "product with ledger history")

	rec = e.do("POST", "/api/customers", e.admin, map[string]any{"name": "Dup", "email": "c1@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do("POST", "/api/categories", e.admin, map[string]any{"name": "Ao"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = e.do("GET", "/api/categories", e.employee, nil)
	assert.Len(t, decodeAs[[]catalog.Category](t, rec), 1)
}

func TestStorageErrorsAreNotLeaked(t *testing.T) {
	e := newEnv(t, options{})
	require.NoError(t, e.db.Close())

	rec := e.do("GET", "/api/products", e.employee, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	assert.Equal(t, http.StatusServiceUnavailable, e.do("GET", "/healthz", "", nil).Code)
}
