// Package bootstrap handles application initialization and lifecycle
// management for the content-expiry service.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nordiccms/content-expiry/internal/api"
	"github.com/nordiccms/content-expiry/internal/cache"
	"github.com/nordiccms/content-expiry/internal/changelist"
	"github.com/nordiccms/content-expiry/internal/config"
	"github.com/nordiccms/content-expiry/internal/contenttypes"
	"github.com/nordiccms/content-expiry/internal/database"
	"github.com/nordiccms/content-expiry/internal/events"
	"github.com/nordiccms/content-expiry/internal/expiry"
	"github.com/nordiccms/content-expiry/internal/export"
	"github.com/nordiccms/content-expiry/internal/handlers"
	"github.com/nordiccms/content-expiry/internal/logger"
	"github.com/nordiccms/content-expiry/internal/repository"
)

const version = "dev"

const shutdownTimeout = 10 * time.Second

// Serve initializes the full application and runs the HTTP server until a
// shutdown signal arrives.
func Serve(configPath string) error {
	// Phase 1: Load config and create logger
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Setup database
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	// Phase 3: Setup Redis
	redisClient, err := cache.NewClient(cache.ClientConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Phase 4: Wire repositories, registry, and services
	app := buildApp(cfg, db, log)

	exclusionCache := cache.NewExclusionCache(redisClient, cfg.Expiry.ExclusionCacheTTL, log)
	scoper := changelist.NewScoper(app.registry, exclusionCache, cfg.Expiry, log)

	// Phase 5: Start the event consumer (optional)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Redis.Events {
		handler := events.NewExpiryHandler(app.versionRepo, app.service, log)
		consumer := events.NewConsumer(redisClient, "", handler, log)
		if startErr := consumer.Start(ctx); startErr != nil {
			return fmt.Errorf("failed to start event consumer: %w", startErr)
		}
		defer consumer.Stop()
	} else {
		log.Info("Version event consumer disabled")
	}

	// Phase 6: Setup and run HTTP server
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	exporter := export.NewExporter(app.registry, cfg.Expiry.ExportDateFormat)
	router := api.NewRouter(api.Handlers{
		Expiry:     handlers.NewExpiryHandler(app.expiryRepo, scoper, exporter, cfg.Expiry.SiteID, log),
		Defaults:   handlers.NewDefaultsHandler(app.defaultRepo, app.registry, log),
		Moderation: handlers.NewModerationHandler(app.service, log),
	}, cfg.Server.CORSOrigins, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			logger.String("host", cfg.Server.Host),
			logger.Int("port", cfg.Server.Port),
		)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case serveErr := <-errCh:
		return fmt.Errorf("server error: %w", serveErr)
	case sig := <-quit:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	log.Info("Server exited")
	return nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config, version string) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", "content-expiry"),
		logger.String("version", version),
	), nil
}

// appComponents groups the repositories and services shared by the HTTP server
// and the backfill command.
type appComponents struct {
	registry    *contenttypes.Registry
	expiryRepo  *repository.ExpiryRepository
	defaultRepo *repository.DefaultExpiryRepository
	versionRepo *repository.VersionRepository
	service     *expiry.Service
}

func buildApp(cfg *config.Config, db *database.DB, log logger.Logger) *appComponents {
	expiryRepo := repository.NewExpiryRepository(db.DB(), log)
	defaultRepo := repository.NewDefaultExpiryRepository(db.DB(), log)
	versionRepo := repository.NewVersionRepository(db.DB(), log)
	moderationRepo := repository.NewModerationRepository(db.DB(), log)
	contentRepo := repository.NewContentRepository(db.DB(), log)

	registry := BuildRegistry(contentRepo, log)

	service := expiry.NewService(
		expiryRepo,
		defaultRepo,
		versionRepo,
		moderationRepo,
		registry,
		cfg.Expiry,
		log,
	)

	return &appComponents{
		registry:    registry,
		expiryRepo:  expiryRepo,
		defaultRepo: defaultRepo,
		versionRepo: versionRepo,
		service:     service,
	}
}
