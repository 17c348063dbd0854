// Package functions exposes the API as per-request serverless entrypoints.
// Each exported function is deployable on its own; shared state (config,
// connection pool, services) is built lazily on the first request and
// reused for the lifetime of the instance.
package functions

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path"
	"sync"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/config"
	"github.com/streamvault/streamvault/internal/handler"
	"github.com/streamvault/streamvault/internal/integrations/tmdb"
	"github.com/streamvault/streamvault/internal/repository"
	"github.com/streamvault/streamvault/internal/service"
	"github.com/streamvault/streamvault/internal/utils/email"
)

var (
	initOnce sync.Once
	app      *handler.Handler
	initErr  error
)

// ensureApp builds the shared application state exactly once per instance.
func ensureApp() (*handler.Handler, error) {
	initOnce.Do(func() {
		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			logger.SetLevel(level)
		}

		cfg, err := config.NewConfig()
		if err != nil {
			initErr = err
			return
		}

		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			initErr = err
			return
		}

		repo := repository.NewRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			initErr = err
			return
		}

		var mailer service.WelcomeMailer
		if cfg.SMTPConfigured() {
			mailer = email.NewSender(cfg, logger)
		}

		authSvc := service.NewAuthService(repo, logger, cfg.JWTSecret, mailer)
		catalogSvc := service.NewCatalogService(
			tmdb.NewClient(cfg, logger),
			int64(cfg.CatalogCacheTTL.Seconds()),
			logger,
		)

		app = handler.NewHandler(authSvc, catalogSvc, logger)
	})
	return app, initErr
}

// withApp resolves the shared handler, converting init failures into the
// generic 500 envelope.
func withApp(w http.ResponseWriter, fn func(h *handler.Handler)) {
	h, err := ensureApp()
	if err != nil {
		logrus.Errorf("Initialization error: %v", err)
		handler.WriteJSON(w, http.StatusInternalServerError, false, "Internal server error.", nil)
		return
	}
	fn(h)
}

// requirePost rejects non-POST methods with 405 and an Allow header.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		handler.WriteJSON(w, http.StatusMethodNotAllowed, false, "Method not allowed. Use POST.", nil)
		return false
	}
	return true
}

// Register handles POST /api/register.
func Register(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	withApp(w, func(h *handler.Handler) { h.Register(w, r) })
}

// Login handles POST /api/login.
func Login(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	withApp(w, func(h *handler.Handler) { h.Login(w, r) })
}

// Movies handles GET /api/movies/{category}. The category comes from the
// `category` query parameter when the platform routes by filename, falling
// back to the last path segment.
func Movies(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = path.Base(r.URL.Path)
	}
	withApp(w, func(h *handler.Handler) { h.ServeCategory(w, r, category) })
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusOK, true, "API is healthy.", nil)
}
