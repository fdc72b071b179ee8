package scheduler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestStatsGetCreatesLazily(t *testing.T) {
	stats := Stats{}
	e := stats.Get("p1", 3)
	assert.Equal(t, -1, e.LastPlayedRound)
	assert.Equal(t, -1, e.CurrentCourt)
	assert.Equal(t, 3, e.FirstRound)
	assert.NotNil(t, e.Teammates)
	assert.NotNil(t, e.Opponents)

	assert.Same(t, e, stats.Get("p1", 9), "second lookup must return the same entry")
}

func TestStatsCloneIsDeep(t *testing.T) {
	stats := Stats{}
	e := stats.Get("p1", 0)
	e.Teammates["p2"] = 1
	e.CourtHistory = []int{0, 1}

	clone := stats.Clone()
	clone.Get("p1", 0).Teammates["p2"] = 9
	clone.Get("p1", 0).CourtHistory[0] = 5
	clone.Get("p1", 0).RoundsPlayed = 4

	assert.Equal(t, 1, e.Teammates["p2"])
	assert.Equal(t, 0, e.CourtHistory[0])
	assert.Equal(t, 0, e.RoundsPlayed)
}

func TestStatsNormalizeAfterRoundTrip(t *testing.T) {
	stats := Stats{}
	stats.Get("p1", 0)

	// A JSON round-trip drops the distinction between empty and nil maps
	// and zeroes sentinel fields of fresh entries.
	blob, err := json.Marshal(Stats{"p2": {}})
	require.NoError(t, err)
	var restored Stats
	require.NoError(t, json.Unmarshal(blob, &restored))

	restored.Normalize()
	e := restored["p2"]
	require.NotNil(t, e)
	assert.NotNil(t, e.Teammates)
	assert.NotNil(t, e.Opponents)
	assert.Equal(t, -1, e.LastPlayedRound)
	assert.Equal(t, -1, e.CurrentCourt)
}

func TestStatsMsgpackRoundTrip(t *testing.T) {
	stats := Stats{}
	e := stats.Get("p1", 2)
	e.RoundsPlayed = 3
	e.Teammates["p2"] = 2
	e.CourtHistory = []int{0, 0, 1}
	e.TotalPoints = 12

	blob, err := msgpack.Marshal(stats)
	require.NoError(t, err)

	var restored Stats
	require.NoError(t, msgpack.Unmarshal(blob, &restored))
	restored.Normalize()

	got := restored["p1"]
	require.NotNil(t, got)
	assert.Equal(t, 3, got.RoundsPlayed)
	assert.Equal(t, 2, got.Teammates["p2"])
	assert.Equal(t, []int{0, 0, 1}, got.CourtHistory)
	assert.Equal(t, 12, got.TotalPoints)
	assert.Equal(t, 2, got.FirstRound)
}
