package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

// Storage is an in-memory implementation of the history store
type Storage struct {
	mu sync.RWMutex

	players       map[model.PlayerID]*model.PlayerStats
	sessions      []model.GameSession
	nextSessionID int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.PlayerStats),
	}
}

// Ensure Storage implements the interface
var _ storage.HistoryStore = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, result model.PlayerResult) (model.SavePlayerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.players[result.ID]; ok {
		merged := storage.MergePlayer(*existing, result)
		s.players[result.ID] = &merged
		return model.SavePlayerResult{Updated: true, NewHighScore: merged.HighScore}, nil
	}

	stats := storage.NewPlayerStats(result)
	s.players[result.ID] = &stats
	return model.SavePlayerResult{Created: true, NewHighScore: stats.HighScore}, nil
}

func (s *Storage) SaveGameSession(ctx context.Context, session model.SessionResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSessionID++
	s.sessions = append(s.sessions, storage.NewGameSession(s.nextSessionID, session))
	return s.nextSessionID, nil
}

func (s *Storage) GetTopPlayers(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PlayerStats, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HighScore != out[j].HighScore {
			return out[i].HighScore > out[j].HighScore
		}
		return out[i].ID < out[j].ID
	})

	limit = storage.NormalizeLimit(limit, storage.DefaultTopPlayersLimit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) GetRecentSessions(ctx context.Context, limit int) ([]model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.GameSession, len(s.sessions))
	copy(out, s.sessions)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EndedAt.Equal(out[j].EndedAt) {
			return out[i].EndedAt.After(out[j].EndedAt)
		}
		return out[i].ID > out[j].ID
	})

	limit = storage.NormalizeLimit(limit, storage.DefaultRecentSessionsLimit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	stats := *p
	return &stats, nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}
