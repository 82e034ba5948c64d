package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/inventory"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/ariefcatur/go-retail-backoffice/internal/redisx"
	"github.com/ariefcatur/go-retail-backoffice/internal/reports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Log         logrus.FieldLogger
	Tokens      *auth.Tokens
	Auth        *auth.Service
	Catalog     *catalog.Service
	Customers   *customers.Service
	Promotions  *promotions.Service
	Orders      *orders.Service
	Inventory   *inventory.Service
	Reports     *reports.Service
	Activity    *activity.Store
	CORSOrigins []string

	// opsional; nil = fitur mati
	Idempotency *redisx.Idempotency
	RateLimiter *redisx.RateLimiter
	Health      func(ctx context.Context) error
}

func NewRouter(d Deps) *chi.Mux {
	dec := &decoder{validate: newValidator(), log: d.Log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				d.Log.WithError(err).Warn("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		if d.RateLimiter != nil && d.RateLimiter.Max > 0 {
			api.Use(rateLimit(d.RateLimiter, d.Log))
		}

		ah := &AuthHandler{Auth: d.Auth, dec: dec}
		ah.RegisterPublic(api)

		api.Group(func(p chi.Router) {
			p.Use(authenticate(d.Tokens, dec))

			ah.Register(p)
			(&ProductsHandler{Catalog: d.Catalog, dec: dec}).Register(p)
			(&CategoriesHandler{Catalog: d.Catalog, dec: dec}).Register(p)
			(&CustomersHandler{Customers: d.Customers, Orders: d.Orders, dec: dec}).Register(p)
			(&PromotionsHandler{Promotions: d.Promotions, dec: dec}).Register(p)
			(&OrdersHandler{Orders: d.Orders, Idempotency: d.Idempotency, Log: d.Log, dec: dec}).Register(p)
			(&InventoryHandler{Inventory: d.Inventory, dec: dec}).Register(p)
			(&ReportsHandler{Reports: d.Reports, dec: dec}).Register(p)
			(&ActivityHandler{Store: d.Activity, dec: dec}).Register(p)
		})
	})
	return r
}

// admin wraps the routes that only Admin may call.
func admin(r chi.Router, dec *decoder) chi.Router {
	return r.With(requireAdmin(dec))
}
