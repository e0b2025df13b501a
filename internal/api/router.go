package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamesessions/internal/api/handler"
	"github.com/mcoot/gamesessions/internal/api/middleware"
	"github.com/mcoot/gamesessions/internal/directory"
	logmw "github.com/mcoot/gamesessions/internal/middleware"
	"github.com/mcoot/gamesessions/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	SessionManager session.ManagerInterface
	Directory      directory.Directory
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.SessionManager, cfg.Directory)
	userHandler := handler.NewUserHandler(cfg.Directory)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(logmw.Logging(cfg.Logger))
	api.Use(middleware.Actor)

	// Static paths are registered before {gameId} so "join" is never read as an id
	api.HandleFunc("/games", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games/join", sessionHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/games/{gameId}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameId}", sessionHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/games/{gameId}/team", sessionHandler.JoinTeam).Methods(http.MethodPost)
	api.HandleFunc("/games/{gameId}/start", sessionHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/games/{gameId}/end", sessionHandler.End).Methods(http.MethodPost)
	api.HandleFunc("/games/{gameId}/state", sessionHandler.UpdateState).Methods(http.MethodPut)
	api.HandleFunc("/games/{gameId}/teams", sessionHandler.GetTeams).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameId}/stats", sessionHandler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameId}/reconnect/{userId}", sessionHandler.Reconnect).Methods(http.MethodGet)

	api.HandleFunc("/users/{userId}", userHandler.Put).Methods(http.MethodPut)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
