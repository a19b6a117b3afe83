package model

import "time"

// PlayerResult is the end-of-session summary written to the history store
type PlayerResult struct {
	ID       PlayerID
	Name     string
	Score    int
	Level    int
	Lines    int
	PlayedAt time.Time
}

// SavePlayerResult reports how a player aggregate was written
type SavePlayerResult struct {
	Created      bool
	Updated      bool
	NewHighScore int
}

// SessionResult is one finished game session
type SessionResult struct {
	PlayerID   PlayerID
	PlayerName string
	Score      int
	Level      int
	Lines      int
	StartTime  time.Time
	EndTime    time.Time
}

// DurationSeconds returns the session length in whole seconds
func (s SessionResult) DurationSeconds() int {
	if s.StartTime.IsZero() || s.EndTime.IsZero() || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return int(s.EndTime.Sub(s.StartTime) / time.Second)
}

// PlayerStats is the per-player aggregate kept in the history store
type PlayerStats struct {
	ID           PlayerID  `json:"id"`
	Name         string    `json:"name"`
	HighScore    int       `json:"highScore"`
	TotalGames   int       `json:"totalGames"`
	TotalLines   int       `json:"totalLines"`
	HighestLevel int       `json:"highestLevel"`
	FirstPlayed  time.Time `json:"firstPlayed"`
	LastPlayed   time.Time `json:"lastPlayed"`
}

// GameSession is one entry of the append-only session log
type GameSession struct {
	ID         int64     `json:"id"`
	PlayerID   PlayerID  `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Lines      int       `json:"lines"`
	Duration   int       `json:"duration"` // seconds
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
}
