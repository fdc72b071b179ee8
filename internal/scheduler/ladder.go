package scheduler

import "sort"

// Promotion/relegation quotas per court and round.
const (
	ladderPlayerQuota = 2 // individuals moving between adjacent courts
	ladderTeamQuota   = 1 // fixed teams moving between adjacent courts
)

// hierarchy is one ranked stack of courts, optionally scoped to a skill or
// gender group. Court index 0 is the King court.
type hierarchy struct {
	name     string
	courts   []int // global 1-based court numbers, best first
	capacity int   // entities per court: 4 individuals or 2 teams
	quota    int
}

// pointsForWin yields the point value of a win on the given court of the
// hierarchy: the King court pays depth*2, the bottom court pays 2.
func (h *hierarchy) pointsForWin(courtIdx int) int {
	return (len(h.courts) - courtIdx) * 2
}

// ladderResult is an entity's standing from the previous ladder round.
type ladderResult struct {
	en        entity
	lastCourt int // index within the hierarchy; -1 when never assigned
	won       bool
	points    int
}

// assignLadderRound places hierarchy members on courts. Round 0 deals a
// random shuffle; later rounds promote winners and relegate losers between
// adjacent courts under the per-court quota, then backfill.
func (e *Engine) assignLadderRound(h hierarchy, members []entity, history []Round, stats Stats, roundIdx int, format MatchFormat, preferMixed bool) []*Match {
	slots := len(h.courts) * h.capacity

	// Participation first: anyone beyond the court budget sits out by the
	// standard fairness priority before hierarchy placement happens.
	participants := members
	if len(members) > slots {
		participants, _ = e.selectForRound(members, stats, slots, roundIdx)
	}

	results := make([]ladderResult, len(participants))
	seeded := false
	for i, en := range participants {
		st := stats.Get(en.id, roundIdx)
		lr := ladderResult{en: en, lastCourt: -1, points: st.TotalPoints}
		if len(st.CourtHistory) > 0 {
			lr.lastCourt = st.CourtHistory[len(st.CourtHistory)-1]
			lr.won = e.wonLastMatch(en.id, history)
			seeded = true
		}
		results[i] = lr
	}

	var courtMembers [][]entity
	if !seeded {
		courtMembers = e.shuffleOntoCourts(participants, h)
	} else {
		courtMembers = e.promoteRelegate(results, h)
	}

	var matches []*Match
	for idx, group := range courtMembers {
		if len(group) < h.capacity {
			e.trace.Warn("ladder court short of players", "hierarchy", h.name, "court", h.courts[idx], "count", len(group))
			continue
		}
		var side1, side2 []entity
		if h.capacity == 4 {
			side1, side2 = e.splitTeams(group, stats, preferMixed)
		} else {
			side1, side2 = group[:1], group[1:2]
		}
		m := e.newMatch(format, h.courts[idx], side1, side2)
		m.LadderIndex = idx
		m.PointsForWin = h.pointsForWin(idx)
		m.CourtLevel = h.name
		matches = append(matches, m)

		for _, en := range group {
			st := stats.Get(en.id, roundIdx)
			st.CurrentCourt = idx
			st.CourtHistory = append(st.CourtHistory, idx)
		}
	}
	return matches
}

// shuffleOntoCourts deals a random opening-round spread across the courts.
func (e *Engine) shuffleOntoCourts(participants []entity, h hierarchy) [][]entity {
	shuffled := append([]entity(nil), participants...)
	e.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	out := make([][]entity, len(h.courts))
	for i := range h.courts {
		lo := i * h.capacity
		hi := lo + h.capacity
		if lo >= len(shuffled) {
			break
		}
		if hi > len(shuffled) {
			hi = len(shuffled)
		}
		out[i] = shuffled[lo:hi]
	}
	return out
}

// promoteRelegate fills each court top to bottom: staying winners, losers
// dropping from above, winners rising from below, staying losers, then
// priority-ordered backfill.
func (e *Engine) promoteRelegate(results []ladderResult, h hierarchy) [][]entity {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		la, lb := a.lastCourt, b.lastCourt
		if la < 0 {
			la = len(h.courts)
		}
		if lb < 0 {
			lb = len(h.courts)
		}
		if la != lb {
			return la < lb
		}
		if a.won != b.won {
			return a.won
		}
		return a.points > b.points
	})

	assigned := make(map[string]bool)
	out := make([][]entity, len(h.courts))

	take := func(court int, pred func(ladderResult) bool, limit int) {
		for _, r := range results {
			if limit == 0 || len(out[court]) >= h.capacity {
				return
			}
			if assigned[r.en.id] || !pred(r) {
				continue
			}
			out[court] = append(out[court], r.en)
			assigned[r.en.id] = true
			if limit > 0 {
				limit--
			}
		}
	}

	for c := 0; c < len(h.courts); c++ {
		court := c
		// Winners defending this court.
		take(court, func(r ladderResult) bool { return r.lastCourt == court && r.won }, -1)
		// Losers relegated from the court above. Never-assigned members carry
		// lastCourt -1 and must not ride this rule onto the top court; they
		// only enter via the final backfill.
		take(court, func(r ladderResult) bool { return r.lastCourt >= 0 && r.lastCourt == court-1 && !r.won }, h.quota)
		// Winners promoted from the court below.
		take(court, func(r ladderResult) bool { return r.lastCourt == court+1 && r.won }, h.quota)
		// Losers staying on this court.
		take(court, func(r ladderResult) bool { return r.lastCourt == court && !r.won }, -1)
		// Backfill in priority order: new entrants and anyone left over.
		take(court, func(r ladderResult) bool { return true }, -1)
	}
	return out
}

// wonLastMatch scans history backward for the entity's most recent completed
// match and reports whether it was on the winning side.
func (e *Engine) wonLastMatch(id string, history []Round) bool {
	for r := len(history) - 1; r >= 0; r-- {
		for _, m := range history[r].Matches {
			if m.Status != StatusCompleted || !m.HasEntity(id) {
				continue
			}
			switch m.Winner {
			case WinnerSide1:
				return containsID(m.Side1, id)
			case WinnerSide2:
				return containsID(m.Side2, id)
			}
			return false
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ladderReady reports whether the previous round is fully scored. Ladder
// movement depends on every result, so generation is blocked until all
// courts report in.
func ladderReady(history []Round) bool {
	if len(history) == 0 {
		return true
	}
	last := history[len(history)-1]
	for _, m := range last.Matches {
		if m.Status != StatusCompleted {
			return false
		}
	}
	return true
}
