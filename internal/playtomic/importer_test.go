package playtomic_test

import (
	"testing"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/playtomic"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportPlayersDeduplicatesAndClamps(t *testing.T) {
	mockClient := playtomic.NewMockClient()
	mockClient.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		assert.Equal(t, []string{"tenant-1"}, params.TenantIDs)
		return []playtomic.MatchSummary{{MatchID: "m1"}, {MatchID: "m2"}}, nil
	}
	mockClient.GetSpecificMatchFunc = func(matchID string) (playtomic.PadelMatch, error) {
		return playtomic.PadelMatch{
			MatchID: matchID,
			Teams: []playtomic.Team{
				{ID: "t1", Players: []playtomic.Player{
					{UserID: "p1", Name: "Alice", Level: 3.4},
					{UserID: "p2", Name: "Bob", Level: 7.5},
				}},
				{ID: "t2", Players: []playtomic.Player{
					{UserID: "p3", Name: "Carol", Level: 0},
				}},
			},
		}, nil
	}

	mockStore := club.NewMock()
	mockStore.GetAllPlayersFunc = func() ([]club.PlayerInfo, error) {
		return []club.PlayerInfo{
			{ID: "p1", Name: "Alice", Rating: 3.0, Gender: scheduler.GenderFemale},
		}, nil
	}

	importer := playtomic.NewImporter(mockClient, mockStore, "tenant-1")
	n, err := importer.ImportPlayers(time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, mockStore.UpsertPlayersCalls, 1)
	byID := map[string]club.PlayerInfo{}
	for _, p := range mockStore.UpsertPlayersCalls[0] {
		byID[p.ID] = p
	}

	// Known players keep their gender, new ones default.
	assert.Equal(t, scheduler.GenderFemale, byID["p1"].Gender)
	assert.Equal(t, scheduler.GenderMale, byID["p2"].Gender)

	// Levels outside the scheduler's range are clamped.
	assert.Equal(t, 3.4, byID["p1"].Rating)
	assert.Equal(t, 6.0, byID["p2"].Rating)
	assert.Equal(t, 2.0, byID["p3"].Rating)
}

func TestImportPlayersSkipsFailedMatches(t *testing.T) {
	mockClient := playtomic.NewMockClient()
	mockClient.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return []playtomic.MatchSummary{{MatchID: "m1"}}, nil
	}
	// Default GetSpecificMatchFunc returns an empty match with no players.

	mockStore := club.NewMock()
	importer := playtomic.NewImporter(mockClient, mockStore, "tenant-1")

	n, err := importer.ImportPlayers(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, mockStore.UpsertPlayersCalls)
}
