package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/platform/auth"
	"github.com/tiemmay/api/internal/platform/httpx"
	"github.com/tiemmay/api/internal/platform/idempotency"
	"github.com/tiemmay/api/internal/platform/observability"
	"github.com/tiemmay/api/internal/services"
)

// RouterConfig wires the HTTP surface together.
type RouterConfig struct {
	Logger   *zap.Logger
	Verifier auth.TokenVerifier

	Catalog      *services.CatalogService
	Carts        *services.CartService
	Orders       *services.OrderService
	Appointments *services.AppointmentService

	ReadinessChecks map[string]ReadinessChecker

	AdminRole string

	TraceProjectID string

	IdempotencyStore idempotency.Store
	IdempotencyTTL   time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter assembles the chi router: shared middleware, public catalog
// routes, authenticated customer routes, and the admin surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.InjectLoggerMiddleware(cfg.Logger))
	r.Use(observability.TraceMiddleware(cfg.TraceProjectID))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, req, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	NewHealthHandler(cfg.ReadinessChecks).Register(r)

	catalogHandler := NewCatalogHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.Carts)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Carts)
	appointmentHandler := NewAppointmentHandler(cfg.Appointments)

	var limiter *simpleRateLimiter
	if cfg.RateLimitRequests > 0 {
		limiter = newSimpleRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			catalogHandler.Register(public)
		})

		api.Group(func(private chi.Router) {
			private.Use(auth.RequireAuth(cfg.Verifier))
			if limiter != nil {
				private.Use(limiter.middleware)
			}
			if cfg.IdempotencyStore != nil {
				private.Use(idempotency.Middleware(cfg.IdempotencyStore, cfg.IdempotencyTTL))
			}
			cartHandler.Register(private)
			orderHandler.Register(private)
			appointmentHandler.Register(private)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireAuth(cfg.Verifier, cfg.AdminRole))
			orderHandler.RegisterAdmin(admin)
			appointmentHandler.RegisterAdmin(admin)
		})
	})

	return r
}
