package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/services/room"
)

// HandlerConfig holds websocket endpoint settings
type HandlerConfig struct {
	// OriginPatterns lists extra hosts allowed to connect cross-origin
	OriginPatterns []string
}

// Handler upgrades HTTP requests to websocket connections and feeds their
// messages to the room loop
type Handler struct {
	hub    *Hub
	rooms  *room.Manager
	random random.Random
	cfg    HandlerConfig
	logger *slog.Logger
}

// NewHandler creates a websocket handler
func NewHandler(hub *Hub, rooms *room.Manager, random random.Random, cfg HandlerConfig, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		rooms:  rooms,
		random: random,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "ws-handler")),
	}
}

// ServeHTTP handles GET /ws?room=CODE
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(r.URL.Query().Get("room"))
	if code == "" {
		code = model.DefaultRoom
	}

	// the server write timeout would otherwise cut long-lived sockets
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	id := model.ConnID(h.random.UUID())
	client := NewClient(id, code, conn)
	h.hub.Register(client)

	loop, err := h.rooms.Connect(code, id)
	if err != nil {
		h.logger.Warn("room unavailable", slog.String("room", string(code)))
		h.hub.Unregister(id)
		_ = conn.Close(websocket.StatusTryAgainLater, "room unavailable")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go client.writePump(ctx, h.logger)

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in websocket handler",
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
				slog.String("conn", string(id)))
		}
		if err := loop.Submit(func(reg *room.Registry) { reg.Disconnect(id) }); err != nil {
			h.logger.Debug("disconnect not delivered", slog.String("conn", string(id)))
		}
		h.hub.Unregister(id)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	h.readPump(ctx, id, conn, loop)
}

// readPump forwards text messages to the room loop until the socket closes
func (h *Handler) readPump(ctx context.Context, id model.ConnID, conn *websocket.Conn, loop *room.Loop) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				h.logger.Debug("websocket closed", slog.String("conn", string(id)))
			} else {
				h.logger.Info("websocket read ended",
					slog.String("conn", string(id)),
					slog.String("error", err.Error()))
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		if err := loop.Submit(func(reg *room.Registry) { _ = reg.HandleMessage(id, data) }); err != nil {
			return
		}
	}
}
