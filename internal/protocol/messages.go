package protocol

import "github.com/mcoot/multitetris/internal/model"

// MessageType names a message on the realtime channel
type MessageType string

// Client to server
const (
	TypeJoinGame      MessageType = "joinGame"
	TypeGameState     MessageType = "gameState"
	TypeGameOver      MessageType = "gameOver"
	TypeRestartGame   MessageType = "restartGame"
	TypeSendGarbage   MessageType = "sendGarbage"
	TypeUpdateGravity MessageType = "updateGravity"
	TypeGetDashboard  MessageType = "getDashboard"
)

// Server to client
const (
	TypeGameJoined        MessageType = "gameJoined"
	TypeGameSettings      MessageType = "gameSettings"
	TypeGarbageAttack     MessageType = "garbageAttack"
	TypeGravityUpdate     MessageType = "gravityUpdate"
	TypeBecomeFirstPlayer MessageType = "becomeFirstPlayer"
	TypeGameUpdate        MessageType = "gameUpdate"
	TypeDashboardData     MessageType = "dashboardData"
	TypeError             MessageType = "error"
)

// JoinGamePayload registers a player. GravityEnabled is only honoured for
// the first player of a room.
type JoinGamePayload struct {
	Name           string `json:"name"`
	GravityEnabled *bool  `json:"gravityEnabled,omitempty"`
}

// GameJoinedPayload acknowledges a join
type GameJoinedPayload struct {
	PlayerID       model.PlayerID `json:"playerId"`
	PlayerName     string         `json:"playerName"`
	IsFirstPlayer  bool           `json:"isFirstPlayer"`
	GravityEnabled bool           `json:"gravityEnabled"`
}

// GameSettingsPayload is sent to every new connection
type GameSettingsPayload struct {
	GravityEnabled bool `json:"gravityEnabled"`
	IsFirstPlayer  bool `json:"isFirstPlayer"`
}

// GameStatePayload is a pushed simulation snapshot. Used by both
// gameState and gameOver.
type GameStatePayload = model.Snapshot

// SendGarbagePayload asks the server to attack every other playing session
type SendGarbagePayload struct {
	Amount int `json:"amount"`
}

// GarbageAttackPayload delivers an attack. FromPlayer is the sender's
// display name.
type GarbageAttackPayload struct {
	Amount     int    `json:"amount"`
	FromPlayer string `json:"fromPlayer"`
}

// GravityPayload carries the shared gravity setting for updateGravity and
// gravityUpdate
type GravityPayload struct {
	GravityEnabled bool `json:"gravityEnabled"`
}

// BecomeFirstPlayerPayload tells a connection it now controls room settings
type BecomeFirstPlayerPayload struct {
	IsFirstPlayer bool `json:"isFirstPlayer"`
}

// GameUpdatePayload is the ranking broadcast
type GameUpdatePayload = model.Ranking

// DashboardPayload is the live ranking plus optional history
type DashboardPayload struct {
	TopPlayers        []model.RankedPlayer `json:"topPlayers"`
	AllPlayers        []model.RankedPlayer `json:"allPlayers"`
	TopPlayersAllTime []model.PlayerStats  `json:"topPlayersAllTime,omitempty"`
	RecentSessions    []model.GameSession  `json:"recentSessions,omitempty"`
}

// ErrorPayload reports a message the server could not process
type ErrorPayload struct {
	Message string `json:"message"`
}
