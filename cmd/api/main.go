package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/handlers"
	"github.com/nueve-shop/api/internal/platform/auth"
	"github.com/nueve-shop/api/internal/platform/config"
	"github.com/nueve-shop/api/internal/platform/observability"
	"github.com/nueve-shop/api/internal/platform/postgres"
	postgresRepo "github.com/nueve-shop/api/internal/repositories/postgres"
	"github.com/nueve-shop/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := runMigrations(cfg.Database); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to initialise token verifier", zap.Error(err))
	}

	productRepo := postgresRepo.NewProductRepository(db)
	inventoryRepo := postgresRepo.NewInventoryRepository(db)
	addressRepo := postgresRepo.NewAddressRepository(db)
	orderRepo := postgresRepo.NewOrderRepository(db)
	wishlistRepo := postgresRepo.NewWishlistRepository(db)
	cartRepo := postgresRepo.NewCartRepository(db)
	healthRepo := postgresRepo.NewHealthRepository(db)

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     orderRepo,
		Addresses:  addressRepo,
		Products:   productRepo,
		Inventory:  inventoryRepo,
		UnitOfWork: db,
		Shipping: domain.ShippingPolicy{
			FreeShippingThreshold: cfg.Shipping.FreeShippingThreshold,
			DeliveryCharge:        cfg.Shipping.DeliveryCharge,
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	addressService, err := services.NewAddressService(services.AddressServiceDeps{
		Addresses:  addressRepo,
		UnitOfWork: db,
	})
	if err != nil {
		logger.Fatal("failed to initialise address service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: productRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	userService, err := services.NewUserService(services.UserServiceDeps{
		Wishlists: wishlistRepo,
		Carts:     cartRepo,
		Products:  productRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise user service", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(healthRepo)),
		handlers.WithAuthMiddleware(auth.Middleware(verifier)),
		handlers.WithCatalogRoutes(handlers.NewCatalogHandlers(catalogService).Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(orderService).Routes),
		handlers.WithAddressRoutes(handlers.NewAddressHandlers(addressService).Routes),
		handlers.WithMeRoutes(handlers.NewMeHandlers(userService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "nueve-shop-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("nueve-shop api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runMigrations(cfg config.DatabaseConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.URL)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate.Up: %w", err)
	}
	return nil
}
