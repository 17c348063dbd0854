package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/config"
	"github.com/streamvault/streamvault/internal/handler"
	"github.com/streamvault/streamvault/internal/integrations/tmdb"
	"github.com/streamvault/streamvault/internal/repository"
	"github.com/streamvault/streamvault/internal/service"
	"github.com/streamvault/streamvault/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Could not load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("Database initialized successfully")

	var mailer service.WelcomeMailer
	if cfg.SMTPConfigured() {
		mailer = email.NewSender(cfg, logger)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; logins will be issued null tokens")
	}

	authSvc := service.NewAuthService(repo, logger, cfg.JWTSecret, mailer)
	tmdbClient := tmdb.NewClient(cfg, logger)
	catalogSvc := service.NewCatalogService(tmdbClient, int64(cfg.CatalogCacheTTL.Seconds()), logger)
	h := handler.NewHandler(authSvc, catalogSvc, logger)

	// Warm the catalog cache on a schedule so browse traffic mostly hits
	// cached payloads.
	var scheduler *cron.Cron
	if tmdbClient.Configured() && cfg.CatalogWarmSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.CatalogWarmSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			catalogSvc.Warm(ctx)
		})
		if err != nil {
			logger.Fatalf("Invalid CATALOG_WARM_SCHEDULE: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		go catalogSvc.Warm(context.Background())
	} else {
		logger.Warn("Catalog warm disabled (no TMDB_API_KEY or empty schedule)")
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg.ClientOrigin, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	logger.Info("Server stopped")
}
