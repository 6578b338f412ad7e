package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetpay/internal/app"
	"fleetpay/internal/config"
	"fleetpay/internal/form"
	"fleetpay/internal/handler"
	internalRedis "fleetpay/internal/redis"
	"fleetpay/internal/repository/postgres"
	"fleetpay/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger, err := app.NewLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// Apply pending schema migrations.
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Wire dependencies.
	server, accessService := wireServer(db, redisClient, nrApp, cfg, logger)

	// Seed the configured admin account so a fresh install is usable.
	if err := accessService.EnsureAdmin(ctx, cfg.Admin.AccountID, cfg.Admin.Username); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the access service, which main also needs for admin seeding.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) (*http.Server, *service.AccessService) {
	// Initialize Redis stores.
	sessionStore := internalRedis.NewSessionStore(redisClient, cfg.Session.TTL)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	downtimeRepo := postgres.NewDowntimeRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)

	// Initialize services.
	auditService := service.NewAuditService(auditRepo, logger)
	accessService := service.NewAccessService(accountRepo, auditRepo, logger)
	driverService := service.NewDriverService(driverRepo, vehicleRepo, auditRepo, logger)
	vehicleService := service.NewVehicleService(vehicleRepo, auditRepo, logger)
	tripService := service.NewTripService(db, tripRepo, driverRepo, vehicleRepo, downtimeRepo, auditRepo, logger)
	ledgerService := service.NewLedgerService(db, tripRepo, auditRepo, logger)
	reportService := service.NewReportService(tripRepo, driverRepo)

	// Build the guided entry flows and their engine.
	flowRegistry := service.NewFlowRegistry(tripService, driverService, vehicleService)
	formEngine := form.NewEngine(flowRegistry, sessionStore, logger)

	// Initialize handlers.
	flowHandler := handler.NewFlowHandler(formEngine, lockStore)
	tripHandler := handler.NewTripHandler(tripService)
	driverHandler := handler.NewDriverHandler(driverService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	reportHandler := handler.NewReportHandler(reportService)
	accountHandler := handler.NewAccountHandler(accessService, auditService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		FlowHandler:    flowHandler,
		TripHandler:    tripHandler,
		DriverHandler:  driverHandler,
		VehicleHandler: vehicleHandler,
		LedgerHandler:  ledgerHandler,
		ReportHandler:  reportHandler,
		AccountHandler: accountHandler,
		AccessService:  accessService,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, accessService
}
