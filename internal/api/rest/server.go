// Package rest is the HTTP surface: chat, match and player reads,
// fantasy recommendations, and account management.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, log *logrus.Logger) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Chat
	api.HandleFunc("/chat", handler.optionalAuth(handler.Chat)).Methods("POST")

	// Players
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/top", handler.GetTopPlayers).Methods("GET")
	api.HandleFunc("/players/{name}/stats", handler.GetPlayerStats).Methods("GET")
	api.HandleFunc("/players/{name}/form", handler.GetPlayerForm).Methods("GET")

	// Matches
	api.HandleFunc("/matches/live", handler.GetLiveMatches).Methods("GET")
	api.HandleFunc("/matches/upcoming", handler.GetUpcomingMatches).Methods("GET")
	api.HandleFunc("/matches/recent", handler.GetRecentMatches).Methods("GET")
	api.HandleFunc("/matches/{matchID}", handler.GetMatch).Methods("GET")

	// Pitch
	api.HandleFunc("/pitch/{venue}", handler.GetPitchConditions).Methods("GET")

	// Recommendations
	api.HandleFunc("/recommendations/differentials", handler.GetDifferentials).Methods("GET")
	api.HandleFunc("/recommendations/captains", handler.GetCaptains).Methods("GET")
	api.HandleFunc("/compare", handler.ComparePlayers).Methods("GET")

	// Admin
	api.HandleFunc("/scheduler/status", handler.requireAuth(handler.GetSchedulerStatus)).Methods("GET")
	api.HandleFunc("/scheduler/sync", handler.requireAuth(handler.TriggerSync)).Methods("POST")

	// Accounts
	api.HandleFunc("/auth/register", handler.Register).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")
	api.HandleFunc("/users/me", handler.requireAuth(handler.GetMe)).Methods("GET")
	api.HandleFunc("/users/me/chats", handler.requireAuth(handler.GetMyChats)).Methods("GET")
	api.HandleFunc("/users/me/preferences", handler.requireAuth(handler.GetMyPreferences)).Methods("GET")
	api.HandleFunc("/users/me/preferences", handler.requireAuth(handler.UpdateMyPreferences)).Methods("PUT")

	// Browser preflight. Matching here is what lets the CORS middleware
	// answer OPTIONS; without it mux 405s before the chain runs.
	router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
