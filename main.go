package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bosma/internal/config"
	"bosma/internal/logging"
	"bosma/internal/repositories"
	"bosma/internal/server"
	"bosma/internal/services"
	"bosma/internal/storage"
	"bosma/pkg/rabbitmq"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// application owns the server and the connections it must release on exit.
type application struct {
	server   *server.Server
	mqClient *rabbitmq.Client
	logger   *zap.Logger
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Env: cfg.AppEnv})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := newApplication(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	// --- Start HTTP Server ---
	log.Info("Starting server", zap.String("port", cfg.AppPort))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.server.App.Listen(cfg.AppPort); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("Shutting down server...")

	if err := app.server.App.Shutdown(); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

// newApplication connects to the database and the optional broker and blob
// store, builds the server and seeds the super admin.
func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	// --- Database ---
	logLevel := logger.Warn
	if cfg.AppEnv == "production" {
		logLevel = logger.Error
	}
	db, err := repositories.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logLevel)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		return nil, err
	}

	deps := server.Deps{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	}

	// --- RabbitMQ Client ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		deps.Publisher = mqClient
	} else {
		log.Warn("RABBITMQ_URL is not set, order events are disabled")
	}

	// --- Blob Storage ---
	if cfg.StorageEnabled() {
		deps.Blobs = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	} else {
		log.Warn("Supabase storage is not configured, asset uploads are disabled")
	}

	srv := server.New(deps)
	app := &application{server: srv, mqClient: mqClient, logger: log}

	// --- Order Event Consumer ---
	if mqClient != nil {
		notifications := srv.Services.Notifications
		handler := func(event rabbitmq.OrderEvent) error {
			return notifications.HandleOrderEvent(context.Background(), event)
		}
		if err := mqClient.ConsumeOrderEvents(handler); err != nil {
			log.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Super Admin ---
	if cfg.SuperAdminEmail != "" {
		created, err := srv.Services.Users.SeedSuperAdmin(ctx, services.SuperAdminSeed{
			Email:    cfg.SuperAdminEmail,
			Password: cfg.SuperAdminPassword,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed super admin: %w", err)
		}
		if created {
			log.Info("Super admin created", zap.String("email", cfg.SuperAdminEmail))
		}
	}

	return app, nil
}

func (a *application) Close() {
	if a.mqClient == nil {
		return
	}
	if err := a.mqClient.Close(); err != nil {
		a.logger.Error("Error closing RabbitMQ client", zap.Error(err))
	}
}
