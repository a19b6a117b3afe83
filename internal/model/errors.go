package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotJoined      = errors.New("connection has not joined")
	ErrAlreadyJoined  = errors.New("connection has already joined")
	ErrInvalidName    = errors.New("invalid player name")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotFirstPlayer = errors.New("player does not control room settings")

	// Protocol errors
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrMalformedMessage = errors.New("malformed message")
	ErrInvalidGrid      = errors.New("invalid grid")

	// Connection errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionClosed   = errors.New("connection closed")

	// History errors
	ErrHistoryUnavailable = errors.New("history store unavailable")
)
