package room

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/multitetris/internal/dependencies/mocks"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
	"github.com/mcoot/multitetris/internal/storage/memory"
	"github.com/mcoot/multitetris/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	sender   *testutil.RecordingSender
	store    *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.sender = testutil.NewRecordingSender()
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry("main", DefaultConfig(), s.sender, s.store, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) join(conn model.ConnID, name string) {
	s.registry.Connect(conn)
	s.Require().NoError(s.registry.Join(conn, protocol.JoinGamePayload{Name: name}))
}

func (s *RegistrySuite) setScore(conn model.ConnID, score int) {
	s.Require().NoError(s.registry.GameState(conn, model.Snapshot{Score: score}))
}

func (s *RegistrySuite) lastRanking(conn model.ConnID) model.Ranking {
	env, ok := s.sender.Last(conn, protocol.TypeGameUpdate)
	s.Require().True(ok, "no gameUpdate for %s", conn)
	ranking, err := protocol.DecodePayload[protocol.GameUpdatePayload](env)
	s.Require().NoError(err)
	return ranking
}

func names(players []model.RankedPlayer) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Name)
	}
	return out
}

// Connect / Join tests

func (s *RegistrySuite) TestConnectSendsSettings() {
	s.registry.Connect("c1")

	env, ok := s.sender.Last("c1", protocol.TypeGameSettings)
	s.Require().True(ok)
	settings, err := protocol.DecodePayload[protocol.GameSettingsPayload](env)
	s.Require().NoError(err)
	s.True(settings.GravityEnabled)
	s.True(settings.IsFirstPlayer)
	s.Equal(1, s.registry.ConnectionCount())
	s.Equal(0, s.registry.SessionCount())
}

func (s *RegistrySuite) TestConnectAfterFirstPlayerIsNotFirst() {
	s.join("c1", "Alice")
	s.registry.Connect("c2")

	env, _ := s.sender.Last("c2", protocol.TypeGameSettings)
	settings, err := protocol.DecodePayload[protocol.GameSettingsPayload](env)
	s.Require().NoError(err)
	s.False(settings.IsFirstPlayer)
}

func (s *RegistrySuite) TestFirstJoinSeedsGravity() {
	off := false
	s.registry.Connect("c1")
	s.Require().NoError(s.registry.Join("c1", protocol.JoinGamePayload{Name: "Alice", GravityEnabled: &off}))

	env, ok := s.sender.Last("c1", protocol.TypeGameJoined)
	s.Require().True(ok)
	joined, err := protocol.DecodePayload[protocol.GameJoinedPayload](env)
	s.Require().NoError(err)
	s.True(joined.IsFirstPlayer)
	s.False(joined.GravityEnabled)
	s.Equal("Alice", joined.PlayerName)
	s.Equal(model.ConnID("c1"), s.registry.State().FirstPlayer)
	s.False(s.registry.State().GravityEnabled)
}

func (s *RegistrySuite) TestLaterJoinCannotChangeGravity() {
	off, on := false, true
	s.registry.Connect("c1")
	s.Require().NoError(s.registry.Join("c1", protocol.JoinGamePayload{Name: "Alice", GravityEnabled: &off}))
	s.registry.Connect("c2")
	s.Require().NoError(s.registry.Join("c2", protocol.JoinGamePayload{Name: "Bob", GravityEnabled: &on}))

	env, _ := s.sender.Last("c2", protocol.TypeGameJoined)
	joined, err := protocol.DecodePayload[protocol.GameJoinedPayload](env)
	s.Require().NoError(err)
	s.False(joined.IsFirstPlayer)
	s.False(joined.GravityEnabled)
	s.False(s.registry.State().GravityEnabled)
}

func (s *RegistrySuite) TestJoinAssignsPlayerID() {
	s.random.QueueUUID("11111111-2222-4333-8444-555555555555")
	s.join("c1", "Alice")

	session, ok := s.registry.Session("c1")
	s.Require().True(ok)
	s.Equal(model.PlayerID("11111111-2222-4333-8444-555555555555"), session.ID)
	s.Equal(model.StatusPlaying, session.Status)
	s.Equal(0, session.Score)
	s.Equal(1, session.Level)
	s.Equal(s.clock.Now(), session.JoinTime)
	s.True(session.Grid.IsEmpty())
}

func (s *RegistrySuite) TestJoinTwiceRejected() {
	s.join("c1", "Alice")

	err := s.registry.Join("c1", protocol.JoinGamePayload{Name: "Alice"})
	s.ErrorIs(err, model.ErrAlreadyJoined)
	s.Equal(1, s.registry.SessionCount())
}

func (s *RegistrySuite) TestJoinEmptyNameRejected() {
	s.registry.Connect("c1")

	err := s.registry.Join("c1", protocol.JoinGamePayload{Name: "   "})
	s.ErrorIs(err, model.ErrInvalidName)
	s.Equal(0, s.registry.SessionCount())
	s.Empty(s.registry.State().FirstPlayer)
}

func (s *RegistrySuite) TestJoinTruncatesLongName() {
	s.join("c1", strings.Repeat("x", 40))

	session, _ := s.registry.Session("c1")
	s.Len(session.Name, MaxNameLength)
}

func (s *RegistrySuite) TestJoinBroadcastsRankingToAllConnections() {
	s.registry.Connect("watcher")
	s.join("c1", "Alice")

	ranking := s.lastRanking("watcher")
	s.Equal([]string{"Alice"}, names(ranking.AllPlayers))
}

// GameState tests

func (s *RegistrySuite) TestGameStateMergesSnapshot() {
	s.join("c1", "Alice")

	s.Require().NoError(s.registry.GameState("c1", model.Snapshot{Score: 100, Lines: 2}))
	s.Require().NoError(s.registry.GameState("c1", model.Snapshot{Level: 2}))

	session, _ := s.registry.Session("c1")
	s.Equal(100, session.Score)
	s.Equal(2, session.Lines)
	s.Equal(2, session.Level)
}

func (s *RegistrySuite) TestGameStateBeforeJoin() {
	s.registry.Connect("c1")

	err := s.registry.GameState("c1", model.Snapshot{Score: 100})
	s.ErrorIs(err, model.ErrNotJoined)
}

func (s *RegistrySuite) TestRankingOrderedByScore() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")
	s.join("c3", "Carol")
	s.setScore("c1", 500)
	s.setScore("c2", 1500)
	s.setScore("c3", 300)

	ranking := s.lastRanking("c1")
	s.Equal([]string{"Bob", "Alice", "Carol"}, names(ranking.AllPlayers))
	s.Equal([]int{1500, 500, 300}, []int{
		ranking.AllPlayers[0].Score,
		ranking.AllPlayers[1].Score,
		ranking.AllPlayers[2].Score,
	})
}

func (s *RegistrySuite) TestRankingTopPlayersLimited() {
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		conn := model.ConnID("c" + name)
		s.join(conn, name)
		s.setScore(conn, (i+1)*100)
	}

	ranking := s.registry.Ranking()
	s.Len(ranking.AllPlayers, 7)
	s.Equal([]string{"G", "F", "E", "D", "C"}, names(ranking.TopPlayers))
}

func (s *RegistrySuite) TestRankingTiesFavourEarliestJoin() {
	s.join("c1", "Early")
	s.clock.Advance(time.Second)
	s.join("c2", "Late")
	s.setScore("c2", 100)
	s.setScore("c1", 100)

	s.Equal([]string{"Early", "Late"}, names(s.registry.Ranking().AllPlayers))
}

func (s *RegistrySuite) TestRankingTiesSameJoinTimeUseInsertionOrder() {
	s.join("c1", "First")
	s.join("c2", "Second")
	s.join("c3", "Third")

	s.Equal([]string{"First", "Second", "Third"}, names(s.registry.Ranking().AllPlayers))
}

// SendGarbage tests

func (s *RegistrySuite) TestSendGarbageReachesOtherPlayingSessions() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")
	s.join("c3", "Carol")
	s.Require().NoError(s.registry.GameOver("c3", model.Snapshot{Status: model.StatusGameOver}))
	s.registry.Wait()

	s.Require().NoError(s.registry.SendGarbage("c1", 3))

	env, ok := s.sender.Last("c2", protocol.TypeGarbageAttack)
	s.Require().True(ok)
	attack, err := protocol.DecodePayload[protocol.GarbageAttackPayload](env)
	s.Require().NoError(err)
	s.Equal(3, attack.Amount)
	s.Equal("Alice", attack.FromPlayer)

	s.Empty(s.sender.OfType("c1", protocol.TypeGarbageAttack))
	s.Empty(s.sender.OfType("c3", protocol.TypeGarbageAttack))
}

func (s *RegistrySuite) TestSendGarbageNonPositiveIgnored() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")

	s.NoError(s.registry.SendGarbage("c1", 0))
	s.NoError(s.registry.SendGarbage("c1", -2))
	s.Empty(s.sender.OfType("c2", protocol.TypeGarbageAttack))
}

func (s *RegistrySuite) TestSendGarbageBeforeJoin() {
	s.registry.Connect("c1")
	s.ErrorIs(s.registry.SendGarbage("c1", 2), model.ErrNotJoined)
}

func (s *RegistrySuite) TestSendGarbageSurvivesFailedDelivery() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")
	s.join("c3", "Carol")
	s.sender.Fail["c2"] = model.ErrConnectionClosed

	s.Require().NoError(s.registry.SendGarbage("c1", 2))
	s.Len(s.sender.OfType("c3", protocol.TypeGarbageAttack), 1)
}

// UpdateGravity tests

func (s *RegistrySuite) TestUpdateGravityByFirstPlayer() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")

	s.Require().NoError(s.registry.UpdateGravity("c1", false))

	s.False(s.registry.State().GravityEnabled)
	for _, conn := range []model.ConnID{"c1", "c2"} {
		env, ok := s.sender.Last(conn, protocol.TypeGravityUpdate)
		s.Require().True(ok)
		update, err := protocol.DecodePayload[protocol.GravityPayload](env)
		s.Require().NoError(err)
		s.False(update.GravityEnabled)
	}
}

func (s *RegistrySuite) TestUpdateGravityByOtherPlayerRejected() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")

	err := s.registry.UpdateGravity("c2", false)
	s.ErrorIs(err, model.ErrNotFirstPlayer)
	s.True(s.registry.State().GravityEnabled)
	s.Empty(s.sender.OfType("c1", protocol.TypeGravityUpdate))
}

// Disconnect tests

func (s *RegistrySuite) TestDisconnectHandsOffFirstPlayer() {
	s.join("c1", "Alice")
	s.clock.Advance(time.Second)
	s.join("c2", "Bob")
	s.clock.Advance(time.Second)
	s.join("c3", "Carol")

	s.registry.Disconnect("c1")

	s.Equal(model.ConnID("c2"), s.registry.State().FirstPlayer)
	s.Len(s.sender.OfType("c2", protocol.TypeBecomeFirstPlayer), 1)
	s.Empty(s.sender.OfType("c3", protocol.TypeBecomeFirstPlayer))

	s.NoError(s.registry.UpdateGravity("c2", false))
	s.False(s.registry.State().GravityEnabled)
}

func (s *RegistrySuite) TestDisconnectLastPlayerClearsFirstPlayer() {
	s.join("c1", "Alice")

	s.registry.Disconnect("c1")

	s.Empty(s.registry.State().FirstPlayer)
	s.Equal(0, s.registry.ConnectionCount())
	s.Equal(0, s.registry.SessionCount())
}

func (s *RegistrySuite) TestDisconnectBroadcastsRanking() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")

	s.registry.Disconnect("c1")

	s.Equal([]string{"Bob"}, names(s.lastRanking("c2").AllPlayers))
}

func (s *RegistrySuite) TestDisconnectPersistsPlayingSession() {
	s.random.QueueUUID("p-alice")
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameState("c1", model.Snapshot{Score: 500, Lines: 5, Level: 1}))
	s.clock.Advance(90 * time.Second)

	s.registry.Disconnect("c1")
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(500, sessions[0].Score)
	s.Equal(5, sessions[0].Lines)
	s.Equal(90, sessions[0].Duration)
	s.Equal("Alice", sessions[0].PlayerName)

	stats, err := s.store.GetPlayerStats(s.ctx, "p-alice")
	s.Require().NoError(err)
	s.Equal(500, stats.HighScore)
	s.Equal(1, stats.TotalGames)
}

func (s *RegistrySuite) TestDisconnectWithoutScoreNotPersisted() {
	s.join("c1", "Alice")

	s.registry.Disconnect("c1")
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *RegistrySuite) TestDisconnectUnknownConnection() {
	s.NotPanics(func() { s.registry.Disconnect("nobody") })
}

// GameOver / Restart tests

func (s *RegistrySuite) TestGameOverPersistsOnce() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 1200, Lines: 4, Status: model.StatusGameOver}))
	s.registry.Wait()

	session, _ := s.registry.Session("c1")
	s.Equal(model.StatusGameOver, session.Status)

	s.registry.Disconnect("c1")
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(sessions, 1)
	s.Equal(1200, sessions[0].Score)
}

func (s *RegistrySuite) TestRepeatedGameOverRecordedOnce() {
	s.random.QueueUUID("p-alice")
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 700, Status: model.StatusGameOver}))
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 700, Status: model.StatusGameOver}))
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(sessions, 1)

	stats, err := s.store.GetPlayerStats(s.ctx, "p-alice")
	s.Require().NoError(err)
	s.Equal(1, stats.TotalGames)
}

func (s *RegistrySuite) TestGameOverAfterGameOverStateIsRecorded() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameState("c1", model.Snapshot{Score: 300, Status: model.StatusGameOver}))
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 300, Status: model.StatusGameOver}))
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(sessions, 1)
}

func (s *RegistrySuite) TestGameOverAfterRestartIsRecordedAgain() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 100}))
	s.Require().NoError(s.registry.Restart("c1"))
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 200}))
	s.registry.Wait()

	sessions, err := s.store.GetRecentSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

func (s *RegistrySuite) TestGameOverWithoutStatusStillEnds() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 40}))
	s.registry.Wait()

	session, _ := s.registry.Session("c1")
	s.Equal(model.StatusGameOver, session.Status)
}

func (s *RegistrySuite) TestRestartResetsSession() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 300, Lines: 3, Level: 1}))
	s.registry.Wait()
	s.clock.Advance(time.Minute)

	s.Require().NoError(s.registry.Restart("c1"))

	session, _ := s.registry.Session("c1")
	s.Equal(0, session.Score)
	s.Equal(0, session.Lines)
	s.Equal(1, session.Level)
	s.Equal(model.StatusPlaying, session.Status)
	s.Equal(s.clock.Now(), session.SessionStart)
	s.True(session.Grid.IsEmpty())
}

func (s *RegistrySuite) TestRestartBeforeJoin() {
	s.ErrorIs(s.registry.Restart("c1"), model.ErrNotJoined)
}

// Dashboard tests

func (s *RegistrySuite) TestDashboardIncludesHistory() {
	s.join("c1", "Alice")
	s.Require().NoError(s.registry.GameOver("c1", model.Snapshot{Score: 800}))
	s.registry.Wait()
	s.join("c2", "Bob")

	s.registry.Dashboard("c2")
	s.registry.Wait()

	env, ok := s.sender.Last("c2", protocol.TypeDashboardData)
	s.Require().True(ok)
	dash, err := protocol.DecodePayload[protocol.DashboardPayload](env)
	s.Require().NoError(err)
	s.Equal([]string{"Alice", "Bob"}, names(dash.AllPlayers))
	s.Require().Len(dash.TopPlayersAllTime, 1)
	s.Equal(800, dash.TopPlayersAllTime[0].HighScore)
	s.Len(dash.RecentSessions, 1)
}

func (s *RegistrySuite) TestDashboardWithoutHistory() {
	registry := NewRegistry("main", DefaultConfig(), s.sender, nil, s.clock, s.random, testutil.NopLogger())
	registry.Connect("c1")
	s.Require().NoError(registry.Join("c1", protocol.JoinGamePayload{Name: "Alice"}))

	registry.Dashboard("c1")

	env, ok := s.sender.Last("c1", protocol.TypeDashboardData)
	s.Require().True(ok)
	dash, err := protocol.DecodePayload[protocol.DashboardPayload](env)
	s.Require().NoError(err)
	s.Len(dash.AllPlayers, 1)
	s.Empty(dash.TopPlayersAllTime)
	s.Empty(dash.RecentSessions)
}

// HandleMessage tests

func (s *RegistrySuite) TestHandleMessageJoinAndState() {
	s.registry.Connect("c1")

	s.Require().NoError(s.registry.HandleMessage("c1", []byte(`{"type":"joinGame","payload":{"name":"Alice"}}`)))
	s.Require().NoError(s.registry.HandleMessage("c1", []byte(`{"type":"gameState","payload":{"score":240,"lines":3}}`)))

	session, ok := s.registry.Session("c1")
	s.Require().True(ok)
	s.Equal(240, session.Score)
	s.Equal(3, session.Lines)
}

func (s *RegistrySuite) TestHandleMessageMalformed() {
	s.registry.Connect("c1")

	err := s.registry.HandleMessage("c1", []byte("not json"))
	s.ErrorIs(err, model.ErrMalformedMessage)
	s.Len(s.sender.OfType("c1", protocol.TypeError), 1)
}

func (s *RegistrySuite) TestHandleMessageUnknownType() {
	s.registry.Connect("c1")

	err := s.registry.HandleMessage("c1", []byte(`{"type":"fly"}`))
	s.ErrorIs(err, model.ErrUnknownMessage)

	env, ok := s.sender.Last("c1", protocol.TypeError)
	s.Require().True(ok)
	payload, err := protocol.DecodePayload[protocol.ErrorPayload](env)
	s.Require().NoError(err)
	s.Equal(model.ErrUnknownMessage.Error(), payload.Message)
}

func (s *RegistrySuite) TestHandleMessageInvalidGridKeepsOtherFields() {
	s.join("c1", "Alice")

	err := s.registry.HandleMessage("c1", []byte(`{"type":"gameState","payload":{"grid":[[1]],"score":10}}`))
	s.NoError(err)

	session, _ := s.registry.Session("c1")
	s.Equal(10, session.Score)
	s.True(session.Grid.IsEmpty())
	s.Empty(s.sender.OfType("c1", protocol.TypeError))
}

func (s *RegistrySuite) TestHandleMessageGameOverWithInvalidGridIsRecorded() {
	s.random.QueueUUID("p-alice")
	s.join("c1", "Alice")
	s.setScore("c1", 500)

	rows := make([]string, 19)
	for i := range rows {
		rows[i] = "[0,0,0,0,0,0,0,0,0,0]"
	}
	msg := `{"type":"gameOver","payload":{"score":900,"status":"gameover","grid":[` + strings.Join(rows, ",") + `]}}`

	s.Require().NoError(s.registry.HandleMessage("c1", []byte(msg)))
	s.registry.Wait()

	session, _ := s.registry.Session("c1")
	s.Equal(model.StatusGameOver, session.Status)
	s.Equal(900, session.Score)

	stats, err := s.store.GetPlayerStats(s.ctx, "p-alice")
	s.Require().NoError(err)
	s.Equal(900, stats.HighScore)
	s.Equal(1, stats.TotalGames)
}

func (s *RegistrySuite) TestHandleMessageGravityRejectionIsSilent() {
	s.join("c1", "Alice")
	s.join("c2", "Bob")

	err := s.registry.HandleMessage("c2", []byte(`{"type":"updateGravity","payload":{"gravityEnabled":false}}`))
	s.ErrorIs(err, model.ErrNotFirstPlayer)
	s.Empty(s.sender.OfType("c2", protocol.TypeError))
	s.True(s.registry.State().GravityEnabled)
}

func (s *RegistrySuite) TestHandleMessageBeforeJoinIsSilent() {
	s.registry.Connect("c1")

	err := s.registry.HandleMessage("c1", []byte(`{"type":"restartGame"}`))
	s.ErrorIs(err, model.ErrNotJoined)
	s.Empty(s.sender.OfType("c1", protocol.TypeError))
}

// failingHistory is a history store whose every call fails
type failingHistory struct{}

var errStoreDown = errors.New("store down")

func (failingHistory) SavePlayer(context.Context, model.PlayerResult) (model.SavePlayerResult, error) {
	return model.SavePlayerResult{}, errStoreDown
}

func (failingHistory) SaveGameSession(context.Context, model.SessionResult) (int64, error) {
	return 0, errStoreDown
}

func (failingHistory) GetTopPlayers(context.Context, int) ([]model.PlayerStats, error) {
	return nil, errStoreDown
}

func (failingHistory) GetRecentSessions(context.Context, int) ([]model.GameSession, error) {
	return nil, errStoreDown
}

func (failingHistory) GetPlayerStats(context.Context, model.PlayerID) (*model.PlayerStats, error) {
	return nil, errStoreDown
}

func (failingHistory) Close() error { return nil }

func (s *RegistrySuite) TestHistoryFailuresDoNotBreakRoom() {
	registry := NewRegistry("main", DefaultConfig(), s.sender, failingHistory{}, s.clock, s.random, testutil.NopLogger())
	registry.Connect("c1")
	s.Require().NoError(registry.Join("c1", protocol.JoinGamePayload{Name: "Alice"}))
	s.Require().NoError(registry.GameOver("c1", model.Snapshot{Score: 100}))

	registry.Dashboard("c1")
	registry.Wait()

	env, ok := s.sender.Last("c1", protocol.TypeDashboardData)
	s.Require().True(ok)
	dash, err := protocol.DecodePayload[protocol.DashboardPayload](env)
	s.Require().NoError(err)
	s.Len(dash.AllPlayers, 1)
	s.Empty(dash.TopPlayersAllTime)
}
