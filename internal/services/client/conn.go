package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/coder/websocket"
)

// Conn is a message connection to the server
type Conn interface {
	Outbound
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// WSConn is a Conn over a websocket
type WSConn struct {
	conn *websocket.Conn
}

// Dial opens a websocket to the server's /ws endpoint for a room.
// serverURL is the HTTP base URL, e.g. http://localhost:8080.
func Dial(ctx context.Context, serverURL string, room string) (*WSConn, error) {
	wsURL, err := WebsocketURL(serverURL, room)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	conn.SetReadLimit(1 << 20)
	return &WSConn{conn: conn}, nil
}

// WebsocketURL converts an HTTP base URL into the room's websocket URL
func WebsocketURL(serverURL string, room string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	if room != "" {
		q := u.Query()
		q.Set("room", room)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Write sends one text message
func (c *WSConn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Read returns the next text message
func (c *WSConn) Read(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		if typ == websocket.MessageText {
			return data, nil
		}
	}
}

// Close ends the connection normally
func (c *WSConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
