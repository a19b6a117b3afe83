package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRanked(id string, score int, joined time.Time, seq uint64) *PlayerSession {
	p := NewPlayerSession(PlayerID(id), id, ConnID("c-"+id), joined)
	p.Score = score
	p.SetSeq(seq)
	return p
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	sessions := []*PlayerSession{
		newRanked("a", 300, joinTime, 1),
		newRanked("b", 1500, joinTime, 2),
		newRanked("c", 500, joinTime, 3),
	}

	ranking := Rank(sessions, DefaultTopN)

	require.Len(t, ranking.AllPlayers, 3)
	assert.Equal(t, []int{1500, 500, 300}, []int{
		ranking.AllPlayers[0].Score,
		ranking.AllPlayers[1].Score,
		ranking.AllPlayers[2].Score,
	})
	assert.Equal(t, ranking.AllPlayers, ranking.TopPlayers)
}

func TestRankTopNIsPrefix(t *testing.T) {
	var sessions []*PlayerSession
	for i := 0; i < 8; i++ {
		sessions = append(sessions, newRanked(fmt.Sprintf("p%d", i), i*100, joinTime, uint64(i)))
	}

	ranking := Rank(sessions, DefaultTopN)

	require.Len(t, ranking.TopPlayers, DefaultTopN)
	require.Len(t, ranking.AllPlayers, 8)
	assert.Equal(t, ranking.AllPlayers[:DefaultTopN], ranking.TopPlayers)
	assert.Equal(t, PlayerID("p7"), ranking.TopPlayers[0].ID)
}

func TestRankTiesPreferEarliestJoin(t *testing.T) {
	sessions := []*PlayerSession{
		newRanked("late", 100, joinTime.Add(time.Minute), 1),
		newRanked("early", 100, joinTime, 2),
	}

	ranking := Rank(sessions, DefaultTopN)

	assert.Equal(t, PlayerID("early"), ranking.AllPlayers[0].ID)
	assert.Equal(t, PlayerID("late"), ranking.AllPlayers[1].ID)
}

func TestRankTiesFallBackToInsertionOrder(t *testing.T) {
	sessions := []*PlayerSession{
		newRanked("second", 100, joinTime, 2),
		newRanked("first", 100, joinTime, 1),
	}

	ranking := Rank(sessions, DefaultTopN)

	assert.Equal(t, PlayerID("first"), ranking.AllPlayers[0].ID)
}

func TestRankEmpty(t *testing.T) {
	ranking := Rank(nil, DefaultTopN)

	assert.NotNil(t, ranking.TopPlayers)
	assert.NotNil(t, ranking.AllPlayers)
	assert.Empty(t, ranking.AllPlayers)
}

func TestRankDoesNotReorderInput(t *testing.T) {
	sessions := []*PlayerSession{
		newRanked("a", 1, joinTime, 1),
		newRanked("b", 2, joinTime, 2),
	}

	Rank(sessions, DefaultTopN)

	assert.Equal(t, PlayerID("a"), sessions[0].ID)
}
