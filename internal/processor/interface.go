package processor

import (
	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/notifier"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetSession(sessionID string) (*club.Session, error)
	GetAllPlayers() ([]club.PlayerInfo, error)
	GetTeams(sessionID string) ([]scheduler.Team, error)
	GetStats(sessionID string) (scheduler.Stats, error)
	GetRounds(sessionID string) ([]scheduler.Round, error)
	SaveRound(sessionID string, round *scheduler.Round, stats scheduler.Stats) error
	GetMatch(matchID string) (*scheduler.Match, string, error)
	UpdateMatch(sessionID string, match *scheduler.Match, stats scheduler.Stats) error
	GetStandings(sessionID string) ([]club.Standing, error)
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
