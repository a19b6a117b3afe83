package model

import (
	"sort"
	"time"
)

// DefaultTopN is the number of players exposed as topPlayers
const DefaultTopN = 5

// RankedPlayer is the public view of a session record in a ranking
type RankedPlayer struct {
	ID       PlayerID     `json:"id"`
	Name     string       `json:"name"`
	Score    int          `json:"score"`
	Level    int          `json:"level"`
	Lines    int          `json:"lines"`
	Grid     Grid         `json:"grid"`
	Status   PlayerStatus `json:"status"`
	JoinTime time.Time    `json:"joinTime"`
}

// Ranking is a derived, descending-by-score view of all sessions
type Ranking struct {
	TopPlayers []RankedPlayer `json:"topPlayers"`
	AllPlayers []RankedPlayer `json:"allPlayers"`
}

// RankedFromSession converts a session record to its public view
func RankedFromSession(p *PlayerSession) RankedPlayer {
	return RankedPlayer{
		ID:       p.ID,
		Name:     p.Name,
		Score:    p.Score,
		Level:    p.Level,
		Lines:    p.Lines,
		Grid:     p.Grid.Clone(),
		Status:   p.Status,
		JoinTime: p.JoinTime,
	}
}

// Rank orders sessions by score descending. Equal scores are ordered by
// earliest join time, then by insertion order.
func Rank(sessions []*PlayerSession, topN int) Ranking {
	ordered := make([]*PlayerSession, len(sessions))
	copy(ordered, sessions)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.JoinTime.Equal(b.JoinTime) {
			return a.JoinTime.Before(b.JoinTime)
		}
		return a.Seq() < b.Seq()
	})

	all := make([]RankedPlayer, 0, len(ordered))
	for _, p := range ordered {
		all = append(all, RankedFromSession(p))
	}

	if topN < 0 {
		topN = 0
	}
	top := all
	if len(top) > topN {
		top = top[:topN]
	}

	return Ranking{
		TopPlayers: top,
		AllPlayers: all,
	}
}
