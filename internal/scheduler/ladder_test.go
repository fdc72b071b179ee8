package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsForWinByDepth(t *testing.T) {
	h := hierarchy{courts: []int{1, 2, 3}}
	assert.Equal(t, 6, h.pointsForWin(0), "king court pays the most")
	assert.Equal(t, 4, h.pointsForWin(1))
	assert.Equal(t, 2, h.pointsForWin(2))
}

func TestPromoteRelegateMovesWinnersUpLosersDown(t *testing.T) {
	e := testEngine()
	h := hierarchy{name: "test", courts: []int{1, 2}, capacity: 2, quota: 1}

	results := []ladderResult{
		{en: entity{id: "king-w"}, lastCourt: 0, won: true},
		{en: entity{id: "king-l"}, lastCourt: 0, won: false},
		{en: entity{id: "low-w"}, lastCourt: 1, won: true},
		{en: entity{id: "low-l"}, lastCourt: 1, won: false},
	}

	out := e.promoteRelegate(results, h)
	require.Len(t, out, 2)

	assert.ElementsMatch(t, []string{"king-w", "low-w"}, entityIDs(out[0]), "winner stays, challenger rises")
	assert.ElementsMatch(t, []string{"king-l", "low-l"}, entityIDs(out[1]), "loser drops, bottom loser stays")
}

func TestPromoteRelegateHonoursQuota(t *testing.T) {
	e := testEngine()
	h := hierarchy{name: "test", courts: []int{1, 2}, capacity: 4, quota: 2}

	results := []ladderResult{
		{en: entity{id: "w1"}, lastCourt: 0, won: true},
		{en: entity{id: "w2"}, lastCourt: 0, won: true},
		{en: entity{id: "l1"}, lastCourt: 0, won: false},
		{en: entity{id: "l2"}, lastCourt: 0, won: false},
		{en: entity{id: "c1"}, lastCourt: 1, won: true},
		{en: entity{id: "c2"}, lastCourt: 1, won: true},
		{en: entity{id: "c3"}, lastCourt: 1, won: false},
		{en: entity{id: "c4"}, lastCourt: 1, won: false},
	}

	out := e.promoteRelegate(results, h)
	require.Len(t, out, 2)
	assert.ElementsMatch(t, []string{"w1", "w2", "c1", "c2"}, entityIDs(out[0]),
		"king keeps its winners and promotes the quota of challengers")
	assert.ElementsMatch(t, []string{"l1", "l2", "c3", "c4"}, entityIDs(out[1]),
		"relegated losers join the stayers below")
}

func TestPromoteRelegateBackfillsNewEntrants(t *testing.T) {
	e := testEngine()
	h := hierarchy{name: "test", courts: []int{1}, capacity: 4, quota: 2}

	results := []ladderResult{
		{en: entity{id: "w1"}, lastCourt: 0, won: true},
		{en: entity{id: "w2"}, lastCourt: 0, won: true},
		{en: entity{id: "new1"}, lastCourt: -1},
		{en: entity{id: "new2"}, lastCourt: -1},
	}

	out := e.promoteRelegate(results, h)
	require.Len(t, out, 1)
	assert.ElementsMatch(t, []string{"w1", "w2", "new1", "new2"}, entityIDs(out[0]))
}

func TestPromoteRelegateNewEntrantsNeverOutrankPromotions(t *testing.T) {
	e := testEngine()
	h := hierarchy{name: "test", courts: []int{1, 2}, capacity: 2, quota: 1}

	results := []ladderResult{
		{en: entity{id: "king-w"}, lastCourt: 0, won: true},
		{en: entity{id: "king-l"}, lastCourt: 0, won: false},
		{en: entity{id: "low-w"}, lastCourt: 1, won: true},
		{en: entity{id: "low-l"}, lastCourt: 1, won: false},
		{en: entity{id: "new1"}, lastCourt: -1},
		{en: entity{id: "new2"}, lastCourt: -1},
	}

	out := e.promoteRelegate(results, h)
	require.Len(t, out, 2)
	assert.ElementsMatch(t, []string{"king-w", "low-w"}, entityIDs(out[0]),
		"promoted winner takes the king seat, not a fresh entrant")
	assert.ElementsMatch(t, []string{"king-l", "low-l"}, entityIDs(out[1]))
}

func TestLadderRoundZeroCoversAllCourts(t *testing.T) {
	e := testEngine()
	members := entitiesWithRatings(3.0, 3.1, 3.2, 3.3, 3.4, 3.5, 3.6, 3.7)
	h := hierarchy{name: "3.0-4.0", courts: []int{1, 2}, capacity: 4, quota: 2}

	stats := Stats{}
	matches := e.assignLadderRound(h, members, nil, stats, 0, FormatDoubles, false)
	require.Len(t, matches, 2)

	seen := map[string]bool{}
	for _, m := range matches {
		require.Len(t, m.Side1, 2)
		require.Len(t, m.Side2, 2)
		for _, id := range append(append([]string{}, m.Side1...), m.Side2...) {
			assert.False(t, seen[id], "entity %s on two courts", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 8)

	for _, en := range members {
		st := stats.Peek(en.id)
		require.NotNil(t, st)
		assert.Len(t, st.CourtHistory, 1)
	}
}

func TestLadderSecondRoundUsesResults(t *testing.T) {
	e := testEngine()
	members := entitiesWithRatings(3.0, 3.1, 3.2, 3.3, 3.4, 3.5, 3.6, 3.7)
	h := hierarchy{name: "3.0-4.0", courts: []int{1, 2}, capacity: 4, quota: 2}

	stats := Stats{}
	first := e.assignLadderRound(h, members, nil, stats, 0, FormatDoubles, false)
	require.Len(t, first, 2)

	// Score both matches: side 1 wins everywhere.
	for _, m := range first {
		m.Score = &Score{Side1: 6, Side2: 2}
		m.Winner = WinnerSide1
		m.Status = StatusCompleted
	}
	history := []Round{{Index: 0, Matches: first}}

	second := e.assignLadderRound(h, members, history, stats, 1, FormatDoubles, false)
	require.Len(t, second, 2)

	var king *Match
	for _, m := range second {
		if m.LadderIndex == 0 {
			king = m
		}
	}
	require.NotNil(t, king)

	// The king court of round two holds the king winners plus the promoted
	// winners from below.
	kingWinners := first[0].Side1
	lowWinners := first[1].Side1
	want := append(append([]string{}, kingWinners...), lowWinners...)
	got := append(append([]string{}, king.Side1...), king.Side2...)
	assert.ElementsMatch(t, want, got)
}

func TestLadderReady(t *testing.T) {
	pending := Round{Matches: []*Match{{Status: StatusPending}}}
	done := Round{Matches: []*Match{{Status: StatusCompleted}}}

	assert.True(t, ladderReady(nil))
	assert.True(t, ladderReady([]Round{done}))
	assert.False(t, ladderReady([]Round{done, pending}))
}
