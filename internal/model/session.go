package model

import "time"

// PlayerID uniquely identifies a joined player
type PlayerID string

// ConnID is the handle of a transport connection. Session records hold a
// ConnID rather than the connection itself; it is resolved at send time.
type ConnID string

// RoomCode identifies an independent room of players
type RoomCode string

// DefaultRoom is the room used when a client does not ask for one
const DefaultRoom RoomCode = "main"

// PlayerStatus is the play state reported by a client
type PlayerStatus string

const (
	StatusPlaying  PlayerStatus = "playing"
	StatusGameOver PlayerStatus = "gameover"
)

// Snapshot is the public state of a simulation, as pushed by clients
type Snapshot struct {
	Grid            Grid         `json:"grid"`
	Score           int          `json:"score"`
	Level           int          `json:"level"`
	Lines           int          `json:"lines"`
	Status          PlayerStatus `json:"status"`
	IncomingGarbage int          `json:"incomingGarbage,omitempty"`
}

// PlayerSession is the server's record of one joined connection
type PlayerSession struct {
	ID           PlayerID
	Name         string
	Conn         ConnID
	Score        int
	Level        int
	Lines        int
	Grid         Grid
	Status       PlayerStatus
	JoinTime     time.Time
	SessionStart time.Time
	// Recorded is set once the session's game over has been written to history
	Recorded bool
	seq      uint64
}

// NewPlayerSession creates a session record with an empty grid and zero score
func NewPlayerSession(id PlayerID, name string, conn ConnID, now time.Time) *PlayerSession {
	return &PlayerSession{
		ID:           id,
		Name:         name,
		Conn:         conn,
		Level:        1,
		Grid:         NewGrid(),
		Status:       StatusPlaying,
		JoinTime:     now,
		SessionStart: now,
	}
}

// Merge applies a client snapshot. Zero values in the snapshot are treated
// as "no change" and leave the existing field as is.
func (p *PlayerSession) Merge(s Snapshot) {
	if s.Score != 0 {
		p.Score = s.Score
	}
	if s.Level != 0 {
		p.Level = s.Level
	}
	if s.Lines != 0 {
		p.Lines = s.Lines
	}
	if len(s.Grid) > 0 {
		p.Grid = s.Grid.Clone()
	}
	if s.Status != "" {
		p.Status = s.Status
	}
}

// Reset returns the record to its just-joined values with a fresh session start
func (p *PlayerSession) Reset(now time.Time) {
	p.Score = 0
	p.Level = 1
	p.Lines = 0
	p.Grid = NewGrid()
	p.Status = StatusPlaying
	p.SessionStart = now
	p.Recorded = false
}

// IsPlaying returns true while the player's game is running
func (p *PlayerSession) IsPlaying() bool {
	return p.Status == StatusPlaying
}

// SetSeq records the insertion order used to break ranking ties
func (p *PlayerSession) SetSeq(seq uint64) {
	p.seq = seq
}

// Seq returns the insertion order of the record
func (p *PlayerSession) Seq() uint64 {
	return p.seq
}
