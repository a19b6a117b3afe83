package response

import (
	"time"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
)

// RoomSummary describes one live room
type RoomSummary struct {
	Code           string `json:"code"`
	Connections    int    `json:"connections"`
	Players        int    `json:"players"`
	GravityEnabled bool   `json:"gravity_enabled"`
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// RankedPlayer represents a live session in API responses
type RankedPlayer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Level    int       `json:"level"`
	Lines    int       `json:"lines"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
	Grid     [][]int   `json:"grid,omitempty"`
}

// RankedPlayerFromModel converts model.RankedPlayer
func RankedPlayerFromModel(p model.RankedPlayer) RankedPlayer {
	return RankedPlayer{
		ID:       string(p.ID),
		Name:     p.Name,
		Score:    p.Score,
		Level:    p.Level,
		Lines:    p.Lines,
		Status:   string(p.Status),
		JoinedAt: p.JoinTime,
		Grid:     p.Grid,
	}
}

func rankedPlayers(players []model.RankedPlayer) []RankedPlayer {
	out := make([]RankedPlayer, len(players))
	for i, p := range players {
		out[i] = RankedPlayerFromModel(p)
	}
	return out
}

// Ranking is the live ranking of one room
type Ranking struct {
	Room       string         `json:"room"`
	TopPlayers []RankedPlayer `json:"top_players"`
	AllPlayers []RankedPlayer `json:"all_players"`
}

// RankingFromModel converts model.Ranking
func RankingFromModel(code model.RoomCode, r model.Ranking) Ranking {
	return Ranking{
		Room:       string(code),
		TopPlayers: rankedPlayers(r.TopPlayers),
		AllPlayers: rankedPlayers(r.AllPlayers),
	}
}

// PlayerStats represents a player's all-time aggregate
type PlayerStats struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HighScore    int       `json:"high_score"`
	TotalGames   int       `json:"total_games"`
	TotalLines   int       `json:"total_lines"`
	HighestLevel int       `json:"highest_level"`
	FirstPlayed  time.Time `json:"first_played"`
	LastPlayed   time.Time `json:"last_played"`
}

// PlayerStatsFromModel converts model.PlayerStats
func PlayerStatsFromModel(p model.PlayerStats) PlayerStats {
	return PlayerStats{
		ID:           string(p.ID),
		Name:         p.Name,
		HighScore:    p.HighScore,
		TotalGames:   p.TotalGames,
		TotalLines:   p.TotalLines,
		HighestLevel: p.HighestLevel,
		FirstPlayed:  p.FirstPlayed,
		LastPlayed:   p.LastPlayed,
	}
}

// GameSession represents one finished session
type GameSession struct {
	ID         int64     `json:"id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Level      int       `json:"level"`
	Lines      int       `json:"lines"`
	Duration   int       `json:"duration_seconds"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// GameSessionFromModel converts model.GameSession
func GameSessionFromModel(s model.GameSession) GameSession {
	return GameSession{
		ID:         s.ID,
		PlayerID:   string(s.PlayerID),
		PlayerName: s.PlayerName,
		Score:      s.Score,
		Level:      s.Level,
		Lines:      s.Lines,
		Duration:   s.Duration,
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
	}
}

// Leaderboard is the all-time top players
type Leaderboard struct {
	Players []PlayerStats `json:"players"`
}

// LeaderboardFromModel converts a slice of model.PlayerStats
func LeaderboardFromModel(players []model.PlayerStats) Leaderboard {
	out := make([]PlayerStats, len(players))
	for i, p := range players {
		out[i] = PlayerStatsFromModel(p)
	}
	return Leaderboard{Players: out}
}

// RecentSessions is the most recently finished sessions
type RecentSessions struct {
	Sessions []GameSession `json:"sessions"`
}

// RecentSessionsFromModel converts a slice of model.GameSession
func RecentSessionsFromModel(sessions []model.GameSession) RecentSessions {
	out := make([]GameSession, len(sessions))
	for i, s := range sessions {
		out[i] = GameSessionFromModel(s)
	}
	return RecentSessions{Sessions: out}
}

// Dashboard combines a room's live ranking with history. The history
// sections are omitted when unavailable.
type Dashboard struct {
	Room              string         `json:"room"`
	TopPlayers        []RankedPlayer `json:"top_players"`
	AllPlayers        []RankedPlayer `json:"all_players"`
	TopPlayersAllTime []PlayerStats  `json:"top_players_all_time,omitempty"`
	RecentSessions    []GameSession  `json:"recent_sessions,omitempty"`
}

// DashboardFromPayload converts the dashboardData payload
func DashboardFromPayload(code model.RoomCode, d protocol.DashboardPayload) Dashboard {
	out := Dashboard{
		Room:       string(code),
		TopPlayers: rankedPlayers(d.TopPlayers),
		AllPlayers: rankedPlayers(d.AllPlayers),
	}
	if d.TopPlayersAllTime != nil {
		out.TopPlayersAllTime = LeaderboardFromModel(d.TopPlayersAllTime).Players
	}
	if d.RecentSessions != nil {
		out.RecentSessions = RecentSessionsFromModel(d.RecentSessions).Sessions
	}
	return out
}
