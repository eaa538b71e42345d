// Package httpserver exposes the directory JSON API over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fnb-collective/directory/internal/obs"
	"github.com/fnb-collective/directory/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	locations service.LocationService
	profiles  service.ProfileService
	log       *zap.Logger
	srv       *http.Server
}

// New constructs the HTTP server with injected services.
func New(
	auth service.AuthService,
	locations service.LocationService,
	profiles service.ProfileService,
	log *zap.Logger,
	addr string,
	allowedOrigins []string,
) *Server {
	s := &Server{auth: auth, locations: locations, profiles: profiles, log: log}

	r := mux.NewRouter()
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.recoverMiddleware, s.logMiddleware, obs.Instrument, s.authMiddleware)

	api.HandleFunc("/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/signout-everywhere", s.handleSignOutEverywhere).Methods(http.MethodPost)

	api.HandleFunc("/locations", s.handleListLocations).Methods(http.MethodGet)
	api.HandleFunc("/locations", s.handleCreateLocation).Methods(http.MethodPost)
	api.HandleFunc("/locations/{id}", s.handleGetLocation).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}", s.handleUpdateLocation).Methods(http.MethodPatch)
	api.HandleFunc("/locations/{id}", s.handleDeleteLocation).Methods(http.MethodDelete)

	api.HandleFunc("/users", s.handleListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.handleUpdateProfile).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id}", s.handleDeleteProfile).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/locations", s.handleAttachLocation).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", headerAccessToken, headerRefreshToken}),
		handlers.ExposedHeaders([]string{headerAccessToken, headerRefreshToken}),
		handlers.AllowCredentials(),
	)

	s.srv = &http.Server{
		Handler:      cors(r),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.srv.Handler }

// Start begins serving; it blocks until the listener fails or is shut down.
func (s *Server) Start() error { return s.srv.ListenAndServe() }

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
