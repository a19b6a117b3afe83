package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multitetris/internal/api/handler"
	"github.com/mcoot/multitetris/internal/api/middleware"
	"github.com/mcoot/multitetris/internal/services/room"
	"github.com/mcoot/multitetris/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Rooms      *room.Manager
	History    storage.HistoryStore
	RoomConfig room.Config
	WSHandler  http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.History, cfg.RoomConfig, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.History)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Websocket endpoint; the connection handler recovers its own panics
	if cfg.WSHandler != nil {
		r.Handle("/ws", loggingMiddleware(cfg.WSHandler)).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Live rooms
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/ranking", roomHandler.Ranking).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", roomHandler.Dashboard).Methods(http.MethodGet)

	// History
	api.HandleFunc("/leaderboard", historyHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/sessions/recent", historyHandler.RecentSessions).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", historyHandler.Player).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
