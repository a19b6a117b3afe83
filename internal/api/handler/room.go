package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/multitetris/internal/api/response"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/services/room"
	"github.com/mcoot/multitetris/internal/storage"
)

// RoomHandler exposes live room state read through each room's loop
type RoomHandler struct {
	rooms   *room.Manager
	history storage.HistoryStore
	cfg     room.Config
	logger  *slog.Logger
}

// NewRoomHandler creates a new room handler. history may be nil.
func NewRoomHandler(rooms *room.Manager, history storage.HistoryStore, cfg room.Config, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:   rooms,
		history: history,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "room-handler")),
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms := make([]response.RoomSummary, 0)
	for _, code := range h.rooms.Codes() {
		code := code
		loop, ok := h.rooms.Get(code)
		if !ok {
			continue
		}
		var summary response.RoomSummary
		err := loop.Do(r.Context(), func(reg *room.Registry) {
			summary = response.RoomSummary{
				Code:           string(code),
				Connections:    reg.ConnectionCount(),
				Players:        reg.SessionCount(),
				GravityEnabled: reg.State().GravityEnabled,
			}
		})
		if err != nil {
			// the room was closed between listing and reading it
			continue
		}
		rooms = append(rooms, summary)
	}
	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}

// Ranking handles GET /api/v1/rooms/{code}/ranking
func (h *RoomHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	ranking, err := h.ranking(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RankingFromModel(code, ranking))
}

// Dashboard handles GET /api/v1/dashboard?room=CODE. A room that has never
// been joined reports an empty live ranking.
func (h *RoomHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(r.URL.Query().Get("room"))
	if code == "" {
		code = model.DefaultRoom
	}

	ranking, err := h.ranking(r, code)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		WriteError(w, err)
		return
	}

	payload := room.BuildDashboard(r.Context(), h.history, ranking, h.cfg, h.logger)
	response.JSON(w, http.StatusOK, response.DashboardFromPayload(code, payload))
}

func (h *RoomHandler) ranking(r *http.Request, code model.RoomCode) (model.Ranking, error) {
	loop, ok := h.rooms.Get(code)
	if !ok {
		return model.Ranking{}, model.ErrRoomNotFound
	}
	var ranking model.Ranking
	if err := loop.Do(r.Context(), func(reg *room.Registry) { ranking = reg.Ranking() }); err != nil {
		if errors.Is(err, room.ErrLoopClosed) {
			return model.Ranking{}, model.ErrRoomNotFound
		}
		return model.Ranking{}, err
	}
	return ranking, nil
}
