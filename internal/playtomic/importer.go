package playtomic

import (
	"fmt"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
)

const (
	minRating = 2.0
	maxRating = 6.0
)

// Importer pulls recent matches for a tenant and folds their players into
// the local roster. Ratings come from Playtomic level values clamped to the
// range the scheduler works with.
type Importer struct {
	client   PlaytomicClient
	store    club.ClubStore
	tenantID string
}

// NewImporter creates a roster importer for the given tenant.
func NewImporter(client PlaytomicClient, store club.ClubStore, tenantID string) *Importer {
	return &Importer{
		client:   client,
		store:    store,
		tenantID: tenantID,
	}
}

// ImportPlayers fetches matches since the given time and upserts every
// player seen in them. Gender is not part of the Playtomic profile, so
// players already in the roster keep theirs and new players default to male
// until corrected. Returns the number of players upserted.
func (i *Importer) ImportPlayers(since time.Time) (int, error) {
	summaries, err := i.client.GetMatches(&SearchMatchesParams{
		SportID:       "PADEL",
		HasPlayers:    true,
		Sort:          "start_date,DESC",
		TenantIDs:     []string{i.tenantID},
		FromStartDate: since.Format("2006-01-02T15:04:05"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to search matches: %w", err)
	}

	seen := map[string]Player{}
	for _, summary := range summaries {
		match, err := i.client.GetSpecificMatch(summary.MatchID)
		if err != nil {
			log.Warn("Skipping match during import", "matchID", summary.MatchID, "error", err)
			continue
		}
		for _, team := range match.Teams {
			for _, p := range team.Players {
				existing, ok := seen[p.UserID]
				if !ok || p.Level > existing.Level {
					seen[p.UserID] = p
				}
			}
		}
	}
	if len(seen) == 0 {
		log.Info("No players found to import", "tenant", i.tenantID)
		return 0, nil
	}

	genders := map[string]scheduler.Gender{}
	existing, err := i.store.GetAllPlayers()
	if err != nil {
		return 0, fmt.Errorf("failed to load roster: %w", err)
	}
	for _, p := range existing {
		genders[p.ID] = p.Gender
	}

	var infos []club.PlayerInfo
	for _, p := range seen {
		gender, known := genders[p.UserID]
		if !known {
			gender = scheduler.GenderMale
		}
		infos = append(infos, club.PlayerInfo{
			ID:     p.UserID,
			Name:   p.Name,
			Rating: clampRating(p.Level),
			Gender: gender,
		})
	}
	if err := i.store.UpsertPlayers(infos); err != nil {
		return 0, fmt.Errorf("failed to upsert imported players: %w", err)
	}
	log.Info("Imported players", "count", len(infos), "tenant", i.tenantID)
	return len(infos), nil
}

func clampRating(level float64) float64 {
	if level < minRating {
		return minRating
	}
	if level > maxRating {
		return maxRating
	}
	return level
}
