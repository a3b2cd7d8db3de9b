package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rightsquest/internal/api/apierr"
	"github.com/mcoot/rightsquest/internal/api/handler"
	"github.com/mcoot/rightsquest/internal/api/middleware"
	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/services/session"
	"github.com/mcoot/rightsquest/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Catalog     *catalog.Catalog
	UserService *users.Service
	Sessions    *session.Manager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)
	userHandler := handler.NewUserHandler(cfg.Sessions, cfg.UserService)
	moduleHandler := handler.NewModuleHandler(cfg.Sessions)
	paymentHandler := handler.NewPaymentHandler(cfg.Sessions)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Catalog routes
	api.HandleFunc("/catalog/modules", catalogHandler.Modules).Methods(http.MethodGet)
	api.HandleFunc("/catalog/badges", catalogHandler.Badges).Methods(http.MethodGet)
	api.HandleFunc("/catalog/levels", catalogHandler.Levels).Methods(http.MethodGet)

	// User and session routes
	api.HandleFunc("/users/connect", userHandler.Connect).Methods(http.MethodPost)

	user := api.PathPrefix("/users/{id}").Subrouter()
	user.HandleFunc("", userHandler.Get).Methods(http.MethodGet)
	user.HandleFunc("", userHandler.Delete).Methods(http.MethodDelete)
	user.HandleFunc("/stats", userHandler.Stats).Methods(http.MethodGet)
	user.HandleFunc("/session", userHandler.Session).Methods(http.MethodGet)
	user.HandleFunc("/disconnect", userHandler.Disconnect).Methods(http.MethodPost)

	// Module routes
	user.HandleFunc("/modules", moduleHandler.List).Methods(http.MethodGet)
	user.HandleFunc("/modules/{module_id}/start", moduleHandler.Start).Methods(http.MethodPost)

	// Payment routes
	user.HandleFunc("/payments", paymentHandler.Pay).Methods(http.MethodPost)
	user.HandleFunc("/payments", paymentHandler.List).Methods(http.MethodGet)
	user.HandleFunc("/payments/test", paymentHandler.Test).Methods(http.MethodPost)
	user.HandleFunc("/payments/{ref}", paymentHandler.Status).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
