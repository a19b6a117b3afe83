package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multitetris/internal/api/request"
	"github.com/mcoot/multitetris/internal/api/response"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

// HistoryHandler serves the all-time leaderboard and session log
type HistoryHandler struct {
	history storage.HistoryStore
}

// NewHistoryHandler creates a new history handler. A nil store makes every
// endpoint report the history as unavailable.
func NewHistoryHandler(history storage.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Leaderboard handles GET /api/v1/leaderboard?limit=N
func (h *HistoryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := request.ParseLimit(r)
	if !ok {
		WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
		return
	}
	if h.history == nil {
		WriteError(w, model.ErrHistoryUnavailable)
		return
	}

	players, err := h.history.GetTopPlayers(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(players))
}

// RecentSessions handles GET /api/v1/sessions/recent?limit=N
func (h *HistoryHandler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := request.ParseLimit(r)
	if !ok {
		WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
		return
	}
	if h.history == nil {
		WriteError(w, model.ErrHistoryUnavailable)
		return
	}

	sessions, err := h.history.GetRecentSessions(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RecentSessionsFromModel(sessions))
}

// Player handles GET /api/v1/players/{id}
func (h *HistoryHandler) Player(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])
	if h.history == nil {
		WriteError(w, model.ErrHistoryUnavailable)
		return
	}

	stats, err := h.history.GetPlayerStats(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerStatsFromModel(*stats))
}
