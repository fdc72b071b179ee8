package club

import (
	"database/sql"
	"sync"

	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a roster entry in the store.
type PlayerInfo struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Rating  float64          `json:"rating"`
	Gender  scheduler.Gender `json:"gender"`
	Present bool             `json:"present"`
}

// Session is one scheduling session: a court budget, a format configuration
// and the accumulated rounds and stats.
type Session struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	CreatedAt        int64                      `json:"created_at"`
	Courts           int                        `json:"courts"`
	MatchFormat      scheduler.MatchFormat      `json:"match_format"`
	TournamentFormat scheduler.TournamentFormat `json:"tournament_format"`
	SkillSeparation  bool                       `json:"skill_separation"`
	PreferMixed      bool                       `json:"prefer_mixed"`
	RestInterval     int                        `json:"rest_interval"`
	RoundCount       int                        `json:"round_count"`
}

// Standing is one row of the session leaderboard, ladder fields included.
type Standing struct {
	EntityID     string `json:"entity_id"`
	Name         string `json:"name"`
	RoundsPlayed int    `json:"rounds_played"`
	RoundsSatOut int    `json:"rounds_sat_out"`
	TotalPoints  int    `json:"total_points"`
	Court1Wins   int    `json:"court1_wins"`
}
