// Package storagetest holds the behaviour every history store backend
// must share. Backend test packages embed HistorySuite.
package storagetest

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

// HistorySuite runs the history store contract against the store returned
// by NewStore, called once per test
type HistorySuite struct {
	suite.Suite
	NewStore func() storage.HistoryStore

	Store storage.HistoryStore
	Ctx   context.Context
	Now   time.Time
}

func (s *HistorySuite) SetupTest() {
	s.Require().NotNil(s.NewStore, "NewStore must be set")
	s.Store = s.NewStore()
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *HistorySuite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

func (s *HistorySuite) result(id string, score, level, lines int, at time.Time) model.PlayerResult {
	return model.PlayerResult{
		ID:       model.PlayerID(id),
		Name:     "name-" + id,
		Score:    score,
		Level:    level,
		Lines:    lines,
		PlayedAt: at,
	}
}

func (s *HistorySuite) TestSavePlayerCreates() {
	res, err := s.Store.SavePlayer(s.Ctx, s.result("p1", 400, 2, 12, s.Now))
	s.Require().NoError(err)

	s.True(res.Created)
	s.False(res.Updated)
	s.Equal(400, res.NewHighScore)

	stats, err := s.Store.GetPlayerStats(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("name-p1", stats.Name)
	s.Equal(400, stats.HighScore)
	s.Equal(1, stats.TotalGames)
	s.Equal(12, stats.TotalLines)
	s.Equal(2, stats.HighestLevel)
	s.True(s.Now.Equal(stats.FirstPlayed))
	s.True(s.Now.Equal(stats.LastPlayed))
}

func (s *HistorySuite) TestSavePlayerUpdatesAggregate() {
	_, err := s.Store.SavePlayer(s.Ctx, s.result("p1", 400, 3, 25, s.Now))
	s.Require().NoError(err)

	later := s.Now.Add(time.Hour)
	res, err := s.Store.SavePlayer(s.Ctx, s.result("p1", 250, 2, 8, later))
	s.Require().NoError(err)

	s.True(res.Updated)
	s.False(res.Created)
	s.Equal(400, res.NewHighScore, "best score is kept")

	stats, err := s.Store.GetPlayerStats(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(400, stats.HighScore)
	s.Equal(2, stats.TotalGames)
	s.Equal(33, stats.TotalLines)
	s.Equal(3, stats.HighestLevel)
	s.True(s.Now.Equal(stats.FirstPlayed))
	s.True(later.Equal(stats.LastPlayed))
}

func (s *HistorySuite) TestSavePlayerRaisesHighScore() {
	_, err := s.Store.SavePlayer(s.Ctx, s.result("p1", 100, 1, 2, s.Now))
	s.Require().NoError(err)

	res, err := s.Store.SavePlayer(s.Ctx, s.result("p1", 900, 1, 5, s.Now))
	s.Require().NoError(err)
	s.Equal(900, res.NewHighScore)
}

func (s *HistorySuite) TestGetPlayerStatsNotFound() {
	_, err := s.Store.GetPlayerStats(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *HistorySuite) TestGetTopPlayersOrderedAndLimited() {
	for i, score := range []int{300, 1500, 500, 50} {
		_, err := s.Store.SavePlayer(s.Ctx, s.result(fmt.Sprintf("p%d", i), score, 1, 1, s.Now))
		s.Require().NoError(err)
	}

	top, err := s.Store.GetTopPlayers(s.Ctx, 3)
	s.Require().NoError(err)

	s.Require().Len(top, 3)
	s.Equal(1500, top[0].HighScore)
	s.Equal(500, top[1].HighScore)
	s.Equal(300, top[2].HighScore)
}

func (s *HistorySuite) TestGetTopPlayersEmpty() {
	top, err := s.Store.GetTopPlayers(s.Ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *HistorySuite) TestSaveGameSessionAssignsIDs() {
	first, err := s.Store.SaveGameSession(s.Ctx, model.SessionResult{
		PlayerID:   "p1",
		PlayerName: "alice",
		Score:      120,
		Level:      1,
		Lines:      3,
		StartTime:  s.Now,
		EndTime:    s.Now.Add(95 * time.Second),
	})
	s.Require().NoError(err)

	second, err := s.Store.SaveGameSession(s.Ctx, model.SessionResult{
		PlayerID:  "p2",
		StartTime: s.Now,
		EndTime:   s.Now.Add(time.Second),
	})
	s.Require().NoError(err)

	s.NotEqual(first, second)

	recent, err := s.Store.GetRecentSessions(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(first, recent[0].ID)
	s.Equal(model.PlayerID("p1"), recent[0].PlayerID)
	s.Equal("alice", recent[0].PlayerName)
	s.Equal(120, recent[0].Score)
	s.Equal(95, recent[0].Duration)
}

func (s *HistorySuite) TestGetRecentSessionsNewestFirst() {
	for i := 0; i < 5; i++ {
		_, err := s.Store.SaveGameSession(s.Ctx, model.SessionResult{
			PlayerID:  model.PlayerID(fmt.Sprintf("p%d", i)),
			Score:     i * 10,
			StartTime: s.Now,
			EndTime:   s.Now.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	recent, err := s.Store.GetRecentSessions(s.Ctx, 3)
	s.Require().NoError(err)

	s.Require().Len(recent, 3)
	s.Equal(model.PlayerID("p4"), recent[0].PlayerID)
	s.Equal(model.PlayerID("p3"), recent[1].PlayerID)
	s.Equal(model.PlayerID("p2"), recent[2].PlayerID)
}
