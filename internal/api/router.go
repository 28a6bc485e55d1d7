package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrine-app/vitrine/internal/api/recovery"
	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/services"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users       *services.UserService
	Collections *services.CollectionService
	Preferences *services.PreferenceService
	Authorizer  auth.Authorizer
	IsHealthy   func() bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(metricsMiddleware)

	healthHandler := NewHealthHandler(d.IsHealthy)
	userHandler := NewUserHandler(d.Users)
	collectionHandler := NewCollectionHandler(d.Collections)
	preferenceHandler := NewPreferenceHandler(d.Preferences)

	// Unauthenticated
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Key only: user provisioning
	users := router.PathPrefix("/api/users").Subrouter()
	users.Use(auth.RequireKey(d.Authorizer))
	users.HandleFunc("", userHandler.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("/{userId}", userHandler.GetUser).Methods(http.MethodGet)

	// Key and a known user
	me := router.PathPrefix("/api/me").Subrouter()
	me.Use(auth.RequireUser(d.Authorizer))
	me.HandleFunc("/collections", collectionHandler.ListAccessible).Methods(http.MethodGet)
	me.HandleFunc("/preference", preferenceHandler.GetPreference).Methods(http.MethodGet)
	me.HandleFunc("/preference/last-selected", preferenceHandler.PutLastSelected).Methods(http.MethodPut)
	me.HandleFunc("/preference/default", preferenceHandler.PutDefault).Methods(http.MethodPut)

	cols := router.PathPrefix("/api/collections").Subrouter()
	cols.Use(auth.RequireUser(d.Authorizer))
	cols.HandleFunc("", collectionHandler.CreateCollection).Methods(http.MethodPost)
	cols.HandleFunc("/{collectionId}/grants/{userId}", collectionHandler.GrantAccess).Methods(http.MethodPut)
	cols.HandleFunc("/{collectionId}/grants/{userId}", collectionHandler.RevokeAccess).Methods(http.MethodDelete)

	return router
}
