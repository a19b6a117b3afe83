package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		server string
		room   string
		want   string
	}{
		{"http://localhost:8080", "", "ws://localhost:8080/ws"},
		{"http://localhost:8080/", "main", "ws://localhost:8080/ws?room=main"},
		{"https://tetris.example.com", "red", "wss://tetris.example.com/ws?room=red"},
		{"ws://host:1", "a b", "ws://host:1/ws?room=a+b"},
	}
	for _, tt := range tests {
		got, err := WebsocketURL(tt.server, tt.room)
		require.NoError(t, err, tt.server)
		assert.Equal(t, tt.want, got)
	}
}

func TestWebsocketURLRejectsScheme(t *testing.T) {
	_, err := WebsocketURL("ftp://host", "")
	assert.Error(t, err)
}
