package club

import "github.com/KilvingtonDigital/SmashBoard/internal/scheduler"

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	// Roster
	AddPlayer(playerID, name string, rating float64, gender scheduler.Gender)
	UpsertPlayers(players []PlayerInfo) error
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	SetPresence(playerID string, present bool) error
	IsKnownPlayer(playerID string) bool

	// Fixed teams (teamed-doubles)
	UpsertTeams(sessionID string, teams []scheduler.Team) error
	GetTeams(sessionID string) ([]scheduler.Team, error)

	// Sessions
	CreateSession(session *Session) error
	GetSession(sessionID string) (*Session, error)

	// Rounds and matches
	SaveRound(sessionID string, round *scheduler.Round, stats scheduler.Stats) error
	GetRounds(sessionID string) ([]scheduler.Round, error)
	GetMatch(matchID string) (*scheduler.Match, string, error)
	UpdateMatch(sessionID string, match *scheduler.Match, stats scheduler.Stats) error

	// Stats
	GetStats(sessionID string) (scheduler.Stats, error)
	GetStandings(sessionID string) ([]Standing, error)

	Clear()
}
