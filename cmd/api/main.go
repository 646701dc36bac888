package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/handlers"
	"github.com/tiemmay/api/internal/platform/auth"
	"github.com/tiemmay/api/internal/platform/config"
	"github.com/tiemmay/api/internal/platform/events"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
	"github.com/tiemmay/api/internal/platform/idempotency"
	"github.com/tiemmay/api/internal/platform/observability"
	firestorerepo "github.com/tiemmay/api/internal/repositories/firestore"
	"github.com/tiemmay/api/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := platformfs.NewProvider(cfg.Firestore)
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn("close firestore client", zap.Error(err))
		}
	}()

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}

	var publisher events.Publisher
	var pubsubPublisher *events.PubSubPublisher
	if cfg.Events.Enabled {
		pubsubPublisher, err = events.NewPubSubPublisher(ctx, cfg.Firestore.ProjectID, cfg.Events.Topic)
		if err != nil {
			return fmt.Errorf("initialize events: %w", err)
		}
		defer pubsubPublisher.Stop()
		publisher = pubsubPublisher
	}

	products := firestorerepo.NewProductRepository(provider)
	categories := firestorerepo.NewCategoryRepository(provider)
	stores := firestorerepo.NewStoreRepository(provider)
	orders := firestorerepo.NewOrderRepository(provider)
	appointments := firestorerepo.NewAppointmentRepository(provider)
	customers := firestorerepo.NewCustomerRepository(provider)

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products:   products,
		Categories: categories,
		Stores:     stores,
	})
	if err != nil {
		return err
	}
	cartService, err := services.NewCartService(services.CartServiceDeps{Products: products})
	if err != nil {
		return err
	}
	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orders,
		Customers: customers,
		Products:  products,
		Publisher: publisher,
	})
	if err != nil {
		return err
	}
	appointmentService, err := services.NewAppointmentService(services.AppointmentServiceDeps{
		Appointments: appointments,
		Products:     products,
		Stores:       stores,
		Publisher:    publisher,
	})
	if err != nil {
		return err
	}

	var idempotencyStore idempotency.Store
	if cfg.Idempotency.Enabled {
		idempotencyStore = idempotency.NewFirestoreStore(provider, cfg.Idempotency.Collection)
	}

	routerCfg := handlers.RouterConfig{
		Logger:       logger,
		Verifier:     verifier,
		Catalog:      catalogService,
		Carts:        cartService,
		Orders:       orderService,
		Appointments: appointmentService,
		ReadinessChecks: map[string]handlers.ReadinessChecker{
			"firestore": func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
		AdminRole:        cfg.Firebase.AdminRole,
		TraceProjectID:   cfg.Firestore.ProjectID,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Idempotency.TTL,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimitRequests = cfg.RateLimit.Requests
		routerCfg.RateLimitWindow = cfg.RateLimit.Window
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
