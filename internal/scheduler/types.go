package scheduler

import (
	"math/rand"
	"time"
)

// Gender of a player.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// GenderCategory classifies a fixed team by the genders of its members.
type GenderCategory string

const (
	CategoryMaleMale     GenderCategory = "MALE_MALE"
	CategoryFemaleFemale GenderCategory = "FEMALE_FEMALE"
	CategoryMixed        GenderCategory = "MIXED"
)

// MatchFormat is the on-court format of a single match.
type MatchFormat string

const (
	FormatSingles       MatchFormat = "SINGLES"
	FormatDoubles       MatchFormat = "DOUBLES"
	FormatTeamedDoubles MatchFormat = "TEAMED_DOUBLES"
)

// TournamentFormat is the session-level format driving court assignment.
type TournamentFormat string

const (
	TournamentOpenPlay    TournamentFormat = "OPEN_PLAY"
	TournamentKingOfCourt TournamentFormat = "KING_OF_COURT"
)

// MatchStatus is the lifecycle state of a match. The only transition is
// pending -> completed.
type MatchStatus string

const (
	StatusPending   MatchStatus = "PENDING"
	StatusCompleted MatchStatus = "COMPLETED"
)

// Winner identifies the winning side of a completed match.
type Winner string

const (
	WinnerSide1 Winner = "side1"
	WinnerSide2 Winner = "side2"
	WinnerNone  Winner = ""
)

// Player is a roster entry. The engine treats it as read-only input; all
// derived state lives in Stats keyed by ID.
type Player struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"` // roughly 2.0 - 6.0
	Gender  Gender  `json:"gender"`
	Present bool    `json:"present"`
}

// Team is a fixed pair for the teamed-doubles format. Immutable once matches
// reference it by ID.
type Team struct {
	ID        string         `json:"id"`
	Players   [2]Player      `json:"players"`
	Category  GenderCategory `json:"gender_category"`
	AvgRating float64        `json:"avg_rating"`
}

// NewTeam builds a team with its derived category and average rating.
func NewTeam(id string, a, b Player) Team {
	cat := CategoryMixed
	switch {
	case a.Gender == GenderMale && b.Gender == GenderMale:
		cat = CategoryMaleMale
	case a.Gender == GenderFemale && b.Gender == GenderFemale:
		cat = CategoryFemaleFemale
	}
	return Team{
		ID:        id,
		Players:   [2]Player{a, b},
		Category:  cat,
		AvgRating: (a.Rating + b.Rating) / 2,
	}
}

// Score holds the entered score of a match, one value per side. The unit
// (games, points) is up to the session; the engine only checks consistency
// with the declared winner.
type Score struct {
	Side1 int `json:"side1"`
	Side2 int `json:"side2"`
}

// Match is one court assignment within a round. Sides hold entity IDs:
// player IDs for singles/doubles, team IDs for teamed formats.
type Match struct {
	ID           string      `json:"id"`
	Court        int         `json:"court"`       // 1-based
	RoundIndex   int         `json:"round_index"` // round this match was generated in
	Format       MatchFormat `json:"format"`
	Side1        []string    `json:"side1"`
	Side2        []string    `json:"side2"`
	Status       MatchStatus `json:"status"`
	Score        *Score      `json:"score,omitempty"`
	Winner       Winner      `json:"winner,omitempty"`
	Diff         float64     `json:"diff"` // rating gap between the two sides
	CourtLevel   string      `json:"court_level,omitempty"`
	PointsForWin int         `json:"points_for_win,omitempty"` // ladder only
	LadderIndex  int         `json:"ladder_index"`             // 0 = king court, -1 outside ladder play
}

// HasEntity reports whether the given entity plays on either side.
func (m *Match) HasEntity(id string) bool {
	for _, s := range m.Side1 {
		if s == id {
			return true
		}
	}
	for _, s := range m.Side2 {
		if s == id {
			return true
		}
	}
	return false
}

// Round is the output of one engine invocation.
type Round struct {
	Index   int      `json:"index"`
	Matches []*Match `json:"matches"`
}

// Input carries everything one round generation needs. The engine never
// mutates Input; updated stats are returned as a fresh value.
type Input struct {
	Players          []Player
	Teams            []Team
	Courts           int
	RoundIndex       int
	Stats            Stats
	History          []Round
	MatchFormat      MatchFormat
	TournamentFormat TournamentFormat
	SkillSeparation  bool
	PreferMixed      bool
	RestInterval     int
}

// entity is the engine's internal unit of scheduling: a player, or a fixed
// team reduced to its average rating. All heuristics operate on entities so
// the same selector/bucketizer serves every format.
type entity struct {
	id       string
	name     string
	rating   float64
	gender   Gender
	category GenderCategory
	team     bool
	members  []string
}

func playerEntity(p Player) entity {
	return entity{id: p.ID, name: p.Name, rating: p.Rating, gender: p.Gender, members: []string{p.ID}}
}

func teamEntity(t Team) entity {
	return entity{
		id:       t.ID,
		name:     t.Players[0].Name + "/" + t.Players[1].Name,
		rating:   t.AvgRating,
		category: t.Category,
		team:     true,
		members:  []string{t.Players[0].ID, t.Players[1].ID},
	}
}

// Engine generates rounds. Randomness is confined to the injected source so
// runs are reproducible under a fixed seed.
type Engine struct {
	rng   *rand.Rand
	trace TraceSink
}

// New creates an engine. A nil rng gets a time-seeded source; a nil trace
// sink falls back to the package logger.
func New(rng *rand.Rand, trace TraceSink) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if trace == nil {
		trace = LogSink{}
	}
	return &Engine{rng: rng, trace: trace}
}
