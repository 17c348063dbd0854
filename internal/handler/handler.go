package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/integrations/tmdb"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/service"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// WriteJSON writes the envelope with the given status. Shared with the
// serverless entrypoints.
func WriteJSON(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Success: success, Message: message, Data: data}); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}

// Handler bundles the HTTP endpoints over the shared services.
type Handler struct {
	auth    *service.AuthService
	catalog *service.CatalogService
	log     *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(auth *service.AuthService, catalog *service.CatalogService, log *logrus.Logger) *Handler {
	return &Handler{auth: auth, catalog: catalog, log: log}
}

// Register handles user registration
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, false, "All fields are required.", nil)
		return
	}

	err := h.auth.Register(r.Context(), req)
	if err == nil {
		WriteJSON(w, http.StatusCreated, true, "Registration successful.", nil)
		return
	}

	if conflict, ok := models.IsConflict(err); ok {
		WriteJSON(w, http.StatusConflict, false, conflict.Error(), nil)
		return
	}
	if errors.Is(err, models.ErrInvalidInput) {
		WriteJSON(w, http.StatusBadRequest, false, invalidInputMessage(err), nil)
		return
	}

	h.log.Errorf("Registration error: %v", err)
	WriteJSON(w, http.StatusInternalServerError, false, "An unexpected error occurred during registration.", nil)
}

// Login handles user authentication
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, false, "User ID and password are required.", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), req.UserID, req.Password)
	if err == nil {
		WriteJSON(w, http.StatusOK, true, "Login successful.", result)
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		WriteJSON(w, http.StatusBadRequest, false, "User ID and password are required.", nil)
	case errors.Is(err, models.ErrUserNotFound):
		WriteJSON(w, http.StatusNotFound, false, "User not found. Please register first.", nil)
	case errors.Is(err, models.ErrInvalidCredentials):
		WriteJSON(w, http.StatusUnauthorized, false, "Invalid credentials. Please try again.", nil)
	default:
		h.log.Errorf("Login error: %v", err)
		WriteJSON(w, http.StatusInternalServerError, false, "An unexpected error occurred during login.", nil)
	}
}

// Movies proxies one catalog category
// GET /api/movies/{category}
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	category := tmdb.Category(mux.Vars(r)["category"])
	h.serveCategory(w, r, category)
}

// serveCategory is shared with the serverless Movies entrypoint.
func (h *Handler) serveCategory(w http.ResponseWriter, r *http.Request, category tmdb.Category) {
	payload, err := h.catalog.Get(r.Context(), category)
	if err == nil {
		WriteJSON(w, http.StatusOK, true, "Movies fetched successfully.", payload)
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		WriteJSON(w, http.StatusBadRequest, false, "Invalid movie category requested.", nil)
	case errors.Is(err, models.ErrNotConfigured):
		h.log.Error("TMDB_API_KEY is not set.")
		WriteJSON(w, http.StatusInternalServerError, false, "TMDB configuration is missing.", nil)
	default:
		h.log.Errorf("TMDB fetch error: %v", err)
		WriteJSON(w, http.StatusBadGateway, false, "Failed to fetch movies from TMDB. Please try again later.", nil)
	}
}

// ServeCategory exposes the category proxy for transports that do their own
// routing.
func (h *Handler) ServeCategory(w http.ResponseWriter, r *http.Request, category string) {
	h.serveCategory(w, r, tmdb.Category(category))
}

// Health reports liveness
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, true, "API is healthy.", nil)
}

// invalidInputMessage maps a wrapped validation error to its client-facing
// wording.
func invalidInputMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "A valid email address is required."
	case strings.Contains(msg, "password"):
		return "Password must be at least 6 characters long."
	default:
		return "All fields are required."
	}
}
