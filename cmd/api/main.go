package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dan9191/car-service/internal/assets"
	"github.com/Dan9191/car-service/internal/auth"
	"github.com/Dan9191/car-service/internal/config"
	"github.com/Dan9191/car-service/internal/handler"
	"github.com/Dan9191/car-service/internal/logging"
	"github.com/Dan9191/car-service/internal/middleware"
	"github.com/Dan9191/car-service/internal/notify"
	"github.com/Dan9191/car-service/internal/repository"
	"github.com/Dan9191/car-service/internal/repository/postgres"
	"github.com/Dan9191/car-service/internal/repository/sqlite"
	"github.com/Dan9191/car-service/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "car-service",
		Short:         "Car listing REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate(cmd.Context())
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatalf("Error: %v", err)
	}
}

// bootstrap loads the configuration and builds the logger it describes
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(logging.Settings{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is the built-in development key, set a private signing key for production")
	}
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	// Initialize database
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	storage, uploadDir, err := openAssetStorage(ctx, cfg)
	if err != nil {
		return err
	}

	// Initialize layers
	assetManager := assets.NewManager(storage, cfg.AssetURLPrefix(), logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(repo, tokens, notify.New(cfg, logger), logger)
	carSvc := service.NewCarService(repo, assetManager, logger)
	h := handler.NewHandler(authSvc, carSvc, repo, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handler.NewRouter(h, handler.RouterConfig{
		FrontendURL: cfg.FrontendURL,
		UploadDir:   uploadDir,
		Metrics:     middleware.NewMetrics(registry),
		Gatherer:    registry,
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func migrate(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	logger.Infof("Database migrations for %s are up to date", cfg.DBDriver)
	return nil
}

// openRepository connects to the configured database and applies pending migrations
func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.DBConn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return repo, nil
	default:
		repo, err := postgres.Open(ctx, cfg.DBConn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repo, nil
	}
}

// openAssetStorage returns the configured storage and, for the local backend, the directory to serve
func openAssetStorage(ctx context.Context, cfg *config.Config) (assets.Storage, string, error) {
	if cfg.AssetBackend == config.AssetBackendS3 {
		storage, err := assets.NewS3Storage(ctx, assets.S3Settings{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return storage, "", nil
	}

	storage, err := assets.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	return storage, storage.Dir(), nil
}

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stderr)
}
