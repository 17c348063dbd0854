package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the API routes with CORS for the configured browser origin
// and a top-level recovery fallback.
func NewRouter(h *Handler, clientOrigin string, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/movies/{category}", h.Movies).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{clientOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	return recoverMiddleware(log)(cors(r))
}

// recoverMiddleware converts anything that escapes a handler into the
// generic 500 envelope; details stay in the server log.
func recoverMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorf("Unhandled error: %v", rec)
					WriteJSON(w, http.StatusInternalServerError, false, "Internal server error.", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
