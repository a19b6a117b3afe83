package storage

import (
	"context"

	"github.com/mcoot/multitetris/internal/model"
)

// Default and maximum result sizes for history queries
const (
	DefaultTopPlayersLimit     = 10
	DefaultRecentSessionsLimit = 20
	MaxQueryLimit              = 100
)

// HistoryStore persists per-player aggregates and the session log
type HistoryStore interface {
	// SavePlayer creates the player aggregate or folds one more finished
	// game into it
	SavePlayer(ctx context.Context, result model.PlayerResult) (model.SavePlayerResult, error)

	// SaveGameSession appends a finished session and returns its id
	SaveGameSession(ctx context.Context, session model.SessionResult) (int64, error)

	// GetTopPlayers returns aggregates ordered by best score
	GetTopPlayers(ctx context.Context, limit int) ([]model.PlayerStats, error)

	// GetRecentSessions returns the most recently ended sessions first
	GetRecentSessions(ctx context.Context, limit int) ([]model.GameSession, error)

	// GetPlayerStats returns model.ErrPlayerNotFound for unknown players
	GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error)

	Close() error
}

// NormalizeLimit applies the default for non-positive limits and caps the
// result at MaxQueryLimit
func NormalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxQueryLimit)
}

// MergePlayer folds a finished game into an existing aggregate
func MergePlayer(existing model.PlayerStats, result model.PlayerResult) model.PlayerStats {
	existing.HighScore = max(existing.HighScore, result.Score)
	existing.HighestLevel = max(existing.HighestLevel, result.Level)
	existing.TotalGames++
	existing.TotalLines += result.Lines
	existing.LastPlayed = result.PlayedAt
	return existing
}

// NewPlayerStats creates the aggregate for a player's first finished game
func NewPlayerStats(result model.PlayerResult) model.PlayerStats {
	return model.PlayerStats{
		ID:           result.ID,
		Name:         result.Name,
		HighScore:    result.Score,
		TotalGames:   1,
		TotalLines:   result.Lines,
		HighestLevel: max(result.Level, 1),
		FirstPlayed:  result.PlayedAt,
		LastPlayed:   result.PlayedAt,
	}
}

// NewGameSession builds the log entry for a finished session
func NewGameSession(id int64, s model.SessionResult) model.GameSession {
	return model.GameSession{
		ID:         id,
		PlayerID:   s.PlayerID,
		PlayerName: s.PlayerName,
		Score:      s.Score,
		Level:      s.Level,
		Lines:      s.Lines,
		Duration:   s.DurationSeconds(),
		StartedAt:  s.StartTime,
		EndedAt:    s.EndTime,
	}
}
