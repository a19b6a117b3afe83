package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/services/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	// Largest message accepted from a client. A full snapshot is well under this.
	maxMessageSize = 64 << 10
)

// ErrSendBufferFull is returned when a slow client's queue is full and the
// message was dropped
var ErrSendBufferFull = errors.New("send buffer full")

// Client is one open websocket connection
type Client struct {
	id          model.ConnID
	room        model.RoomCode
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client with an empty send queue. conn may be nil in tests.
func NewClient(id model.ConnID, roomCode model.RoomCode, conn *websocket.Conn) *Client {
	return &Client{
		id:          id,
		room:        roomCode,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the connection handle
func (c *Client) ID() model.ConnID {
	return c.id
}

// writePump writes queued messages to the socket and pings it while idle.
// It returns when the queue is closed, a write fails or ctx ends.
func (c *Client) writePump(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				logger.Debug("websocket write failed",
					slog.String("conn", string(c.id)),
					slog.String("error", err.Error()))
				_ = c.conn.CloseNow()
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Debug("websocket ping failed",
					slog.String("conn", string(c.id)),
					slog.String("error", err.Error()))
				_ = c.conn.CloseNow()
				return
			}
		}
	}
}

// Hub tracks open connections and delivers messages to them by handle.
// It implements room.Sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	logger  *slog.Logger
}

var _ room.Sender = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "ws-hub")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("conn", string(c.id)),
		slog.String("room", string(c.room)),
		slog.Int("total_clients", count))
}

// Unregister removes a client and closes its send queue
func (h *Hub) Unregister(id model.ConnID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		close(c.send)
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("ws client unregistered",
			slog.String("conn", string(id)),
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int("total_clients", count))
	}
}

// Send queues a message for a connection without blocking. A full queue
// drops the message.
func (h *Hub) Send(id model.ConnID, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	select {
	case c.send <- data:
		return nil
	default:
		h.logger.Warn("ws message dropped - client buffer full",
			slog.String("conn", string(id)))
		return ErrSendBufferFull
	}
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll tells every open connection the server is going away
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, c := range h.clients {
		if c.conn != nil {
			conns = append(conns, c.conn)
		}
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *websocket.Conn) {
			defer wg.Done()
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		}(conn)
	}
	wg.Wait()
	h.logger.Info("ws connections closed", slog.Int("count", len(conns)))
}
