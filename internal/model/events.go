package model

// EventType identifies the kind of engine event
type EventType string

const (
	EventScoreChanged  EventType = "score_changed"
	EventGameOver      EventType = "game_over"
	EventStateChanged  EventType = "state_changed"
	EventGarbageAttack EventType = "garbage_attack"
)

// Event is emitted by a simulation engine for its owner to dispatch
type Event struct {
	Type    EventType
	Payload any // Type-specific data, nil for state changes
}

// ScoreChangedPayload contains the counters after a line clear or restart
type ScoreChangedPayload struct {
	Score int
	Level int
	Lines int
}

// GameOverPayload contains the final counters of a session
type GameOverPayload struct {
	Score int
	Lines int
}

// GarbageAttackPayload contains the number of garbage rows to send
type GarbageAttackPayload struct {
	Amount int
}
