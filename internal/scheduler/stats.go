package scheduler

// StatsEntry tracks everything the heuristics need to know about one entity
// (player or team). Entries are created lazily on first appearance and never
// deleted, so historical reporting survives roster changes.
//
// RoundsSatOut is cumulative and never resets on play. Resetting it caused
// repeated-sit-out regressions in earlier versions of the heuristics; the
// trade-off is that a chronically overdue entity keeps elevated priority for
// a while after it finally plays.
type StatsEntry struct {
	RoundsPlayed       int            `json:"rounds_played" msgpack:"rounds_played"`
	RoundsSatOut       int            `json:"rounds_sat_out" msgpack:"rounds_sat_out"`
	LastPlayedRound    int            `json:"last_played_round" msgpack:"last_played_round"` // -1 until first play
	ConsecutivePlayed  int            `json:"consecutive_played" msgpack:"consecutive_played"`
	FirstRound         int            `json:"first_round" msgpack:"first_round"` // round index at first appearance
	Teammates          map[string]int `json:"teammates" msgpack:"teammates"`
	Opponents          map[string]int `json:"opponents" msgpack:"opponents"`
	CurrentCourt       int            `json:"current_court" msgpack:"current_court"` // ladder; -1 when unassigned
	CourtHistory       []int          `json:"court_history" msgpack:"court_history"`
	TotalPoints        int            `json:"total_points" msgpack:"total_points"`
	Court1Wins         int            `json:"court1_wins" msgpack:"court1_wins"`
}

// Stats maps entity ID to its entry.
type Stats map[string]*StatsEntry

// Get returns the entry for id, creating it on first appearance. roundIdx is
// recorded as the entity's first round so fairness recounts know when it
// became eligible.
func (s Stats) Get(id string, roundIdx int) *StatsEntry {
	e, ok := s[id]
	if !ok {
		e = &StatsEntry{
			LastPlayedRound: -1,
			FirstRound:      roundIdx,
			CurrentCourt:    -1,
			Teammates:       map[string]int{},
			Opponents:       map[string]int{},
		}
		s[id] = e
	}
	return e
}

// Peek returns the entry for id without creating one.
func (s Stats) Peek(id string) *StatsEntry {
	return s[id]
}

// Clone deep-copies the stats so the engine never aliases caller-owned
// state across invocations.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for id, e := range s {
		c := *e
		c.Teammates = make(map[string]int, len(e.Teammates))
		for k, v := range e.Teammates {
			c.Teammates[k] = v
		}
		c.Opponents = make(map[string]int, len(e.Opponents))
		for k, v := range e.Opponents {
			c.Opponents[k] = v
		}
		c.CourtHistory = append([]int(nil), e.CourtHistory...)
		out[id] = &c
	}
	return out
}

// Normalize repairs entries that round-tripped through a plain key/value
// serialization: nil history maps become empty maps and sentinel fields get
// their zero-state values. Callers at the persistence boundary run this once
// on read; the engine itself assumes normalized input.
func (s Stats) Normalize() {
	for _, e := range s {
		if e.Teammates == nil {
			e.Teammates = map[string]int{}
		}
		if e.Opponents == nil {
			e.Opponents = map[string]int{}
		}
		if e.LastPlayedRound == 0 && e.RoundsPlayed == 0 {
			e.LastPlayedRound = -1
		}
		if e.CurrentCourt == 0 && len(e.CourtHistory) == 0 {
			e.CurrentCourt = -1
		}
	}
}

func (e *StatsEntry) teammateCount(id string) int {
	if e == nil {
		return 0
	}
	return e.Teammates[id]
}

func (e *StatsEntry) opponentCount(id string) int {
	if e == nil {
		return 0
	}
	return e.Opponents[id]
}
