package notifier

import (
	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly generated rounds
	SendRoundLineup(session *club.Session, round *scheduler.Round, names map[string]string, sitting []string, dryRun bool) error
	// For completed matches
	SendMatchResult(match *scheduler.Match, names map[string]string, dryRun bool) error
	// For session leaderboards
	SendStandings(standings []club.Standing, dryRun bool) error

	// For formatting responses for slash commands
	FormatStandingsResponse(standings []club.Standing) (any, error)
}
