package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTeamsMinimizesRatingGap(t *testing.T) {
	e := testEngine()
	group := entitiesWithRatings(3.0, 3.5, 4.0, 4.5)

	side1, side2 := e.splitTeams(group, Stats{}, false)
	require.Len(t, side1, 2)
	require.Len(t, side2, 2)

	// Strongest pairs with weakest: 3.0+4.5 vs 3.5+4.0 has zero gap.
	gap := (side1[0].rating + side1[1].rating) - (side2[0].rating + side2[1].rating)
	assert.InDelta(t, 0, gap, 1e-9)
}

func TestSplitTeamsAvoidsRepeatPartners(t *testing.T) {
	e := testEngine()
	group := entitiesWithRatings(3.0, 3.0, 3.0, 3.0)

	stats := Stats{}
	// a and b have partnered often; the split should separate them even
	// though every partition has the same rating gap.
	stats.Get("a", 0).Teammates["b"] = 5
	stats.Get("b", 0).Teammates["a"] = 5

	side1, side2 := e.splitTeams(group, stats, false)
	together := func(side []entity) bool {
		return containsEntity(side, "a") && containsEntity(side, "b")
	}
	assert.False(t, together(side1) || together(side2), "frequent partners should be split up")
}

func TestSplitTeamsPrefersMixedSides(t *testing.T) {
	e := testEngine()
	group := []entity{
		{id: "m1", rating: 3.0, gender: GenderMale},
		{id: "m2", rating: 3.0, gender: GenderMale},
		{id: "f1", rating: 3.0, gender: GenderFemale},
		{id: "f2", rating: 3.0, gender: GenderFemale},
	}

	side1, side2 := e.splitTeams(group, Stats{}, true)
	mixed := func(side []entity) bool { return side[0].gender != side[1].gender }
	assert.True(t, mixed(side1))
	assert.True(t, mixed(side2))
}

func TestBestGroupOfFourFavoursCloseRatings(t *testing.T) {
	e := testEngine()
	// Four clustered at 3.x, four clustered at 5.x: the extracted group
	// should never straddle the two clusters.
	pool := entitiesWithRatings(3.0, 3.1, 3.2, 3.3, 5.0, 5.1, 5.2, 5.3)

	group, remaining := e.bestGroupOfFour(pool, Stats{}, 0)
	require.Len(t, group, 4)
	require.Len(t, remaining, 4)

	lo, hi := tierSpan(group)
	assert.LessOrEqual(t, hi-lo, 1, "group straddles skill clusters: %v", entityIDs(group))
}

func TestPairSinglesStaysWithinGender(t *testing.T) {
	e := testEngine()
	pool := []entity{
		{id: "m1", rating: 3.0, gender: GenderMale},
		{id: "f1", rating: 3.0, gender: GenderFemale},
		{id: "m2", rating: 3.4, gender: GenderMale},
		{id: "m3", rating: 3.1, gender: GenderMale},
	}

	matches, excluded := e.pairSingles(pool, Stats{}, []int{1, 2})
	require.Len(t, matches, 1)

	// m1 faces the closest-rated man; the lone woman sits out rather than
	// crossing genders.
	assert.Equal(t, []string{"m1"}, matches[0].Side1)
	assert.Equal(t, []string{"m3"}, matches[0].Side2)

	ids := entityIDs(excluded)
	assert.Contains(t, ids, "f1")
}

func TestPairTeamsScoresOpponents(t *testing.T) {
	e := testEngine()
	pool := []entity{
		{id: "t1", rating: 3.0, category: CategoryMaleMale, team: true},
		{id: "t2", rating: 4.5, category: CategoryMaleMale, team: true},
		{id: "t3", rating: 3.1, category: CategoryMaleMale, team: true},
		{id: "t4", rating: 4.4, category: CategoryMaleMale, team: true},
	}

	matches, excluded := e.pairTeams(pool, Stats{}, 0, []int{1, 2})
	require.Len(t, matches, 2)
	assert.Empty(t, excluded)

	// With three candidates on the board, t1 takes the closest-rated
	// opponent; the remaining two pair directly.
	assert.Equal(t, []string{"t1"}, matches[0].Side1)
	assert.Equal(t, []string{"t3"}, matches[0].Side2)
	assert.Equal(t, []string{"t2"}, matches[1].Side1)
	assert.Equal(t, []string{"t4"}, matches[1].Side2)
}

func TestNewMatchCarriesRatingDiff(t *testing.T) {
	e := testEngine()
	m := e.newMatch(FormatDoubles, 1, entitiesWithRatings(3.0, 4.0), entitiesWithRatings(3.5, 3.7)[0:2])
	assert.InDelta(t, 0.1, m.Diff, 1e-9)
	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, -1, m.LadderIndex)
	assert.NotEmpty(t, m.ID)
}
