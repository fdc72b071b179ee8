package scheduler

import (
	"math"

	"github.com/google/uuid"
)

// groupSearchAttempts bounds the randomized local search for a foursome.
const groupSearchAttempts = 20

// bestGroupOfFour extracts the lowest-penalty foursome from pool via bounded
// randomized search: each attempt grows a group greedily from a random seed,
// scoring candidates on variety and skill compatibility and picking uniformly
// among the top three. Returns the group and the remaining pool.
func (e *Engine) bestGroupOfFour(pool []entity, stats Stats, roundIdx int) ([]entity, []entity) {
	if len(pool) < 4 {
		return nil, pool
	}
	if len(pool) == 4 {
		group := append([]entity(nil), pool...)
		return group, nil
	}

	var best []entity
	bestPenalty := math.Inf(1)

	for attempt := 0; attempt < groupSearchAttempts; attempt++ {
		group := e.growGroup(pool, stats, roundIdx)
		p := e.groupPenalty(group, stats)
		if p < bestPenalty {
			bestPenalty = p
			best = group
		}
	}

	e.trace.Decision("group chosen", "penalty", bestPenalty, "members", entityIDs(best))

	remaining := pool[:0:0]
	inGroup := make(map[string]bool, 4)
	for _, g := range best {
		inGroup[g.id] = true
	}
	for _, en := range pool {
		if !inGroup[en.id] {
			remaining = append(remaining, en)
		}
	}
	return best, remaining
}

// growGroup builds one candidate foursome greedily from a random seed.
func (e *Engine) growGroup(pool []entity, stats Stats, roundIdx int) []entity {
	group := []entity{pool[e.rng.Intn(len(pool))]}

	for len(group) < 4 {
		type scored struct {
			en entity
			s  float64
		}
		var candidates []scored
		for _, en := range pool {
			if containsEntity(group, en.id) {
				continue
			}
			s := 0.0
			compatible := true
			for _, g := range group {
				// Variety: the fewer past pairings, the better.
				s += 30.0 / float64(1+stats.Get(g.id, roundIdx).teammateCount(en.id))
				if absInt(tierOf(g.rating)-tierOf(en.rating)) > 1 {
					compatible = false
				}
			}
			if compatible {
				s += 15
			}
			s += e.rng.Float64() * 5
			candidates = append(candidates, scored{en, s})
		}
		// Pick uniformly among the top 3 scored candidates.
		top := 3
		if top > len(candidates) {
			top = len(candidates)
		}
		for i := 0; i < top; i++ {
			maxIdx := i
			for j := i + 1; j < len(candidates); j++ {
				if candidates[j].s > candidates[maxIdx].s {
					maxIdx = j
				}
			}
			candidates[i], candidates[maxIdx] = candidates[maxIdx], candidates[i]
		}
		group = append(group, candidates[e.rng.Intn(top)].en)
	}
	return group
}

// groupPenalty scores a completed foursome: rating spread, repeat pairings
// and tier spread all count against it.
func (e *Engine) groupPenalty(group []entity, stats Stats) float64 {
	lo, hi := group[0].rating, group[0].rating
	for _, g := range group[1:] {
		if g.rating < lo {
			lo = g.rating
		}
		if g.rating > hi {
			hi = g.rating
		}
	}
	penalty := (hi - lo) * 2

	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if st := stats.Peek(group[i].id); st != nil {
				penalty += float64(st.teammateCount(group[j].id) * 10)
			}
		}
	}

	tLo, tHi := tierSpan(group)
	switch tHi - tLo {
	case 0:
	case 1:
		penalty += 5
	default:
		penalty += 25
	}
	return penalty
}

// splitTeams enumerates the three 2-vs-2 partitions of a foursome and keeps
// the one minimizing rating gap and repeat pairings. When the mixed
// preference is on, mixed-gender sides earn a strong discount.
func (e *Engine) splitTeams(group []entity, stats Stats, preferMixed bool) (side1, side2 []entity) {
	partitions := [3][2][2]int{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}

	bestScore := math.Inf(1)
	var best [2][2]int
	for _, p := range partitions {
		s1 := [2]entity{group[p[0][0]], group[p[0][1]]}
		s2 := [2]entity{group[p[1][0]], group[p[1][1]]}

		gap := math.Abs((s1[0].rating + s1[1].rating) - (s2[0].rating + s2[1].rating))
		score := gap * 10
		score += float64(pairHistory(s1, stats)+pairHistory(s2, stats)) * 15
		for _, side := range [][2]entity{s1, s2} {
			if tierOf(side[0].rating) == tierOf(side[1].rating) {
				score -= 3
			}
			if preferMixed && side[0].gender != side[1].gender {
				score -= 40
			}
		}
		if score < bestScore {
			bestScore = score
			best = p
		}
	}

	side1 = []entity{group[best[0][0]], group[best[0][1]]}
	side2 = []entity{group[best[1][0]], group[best[1][1]]}
	return side1, side2
}

func pairHistory(side [2]entity, stats Stats) int {
	if st := stats.Peek(side[0].id); st != nil {
		return st.teammateCount(side[1].id)
	}
	return 0
}

// pairSingles matches entities against the closest-rated opponent of the
// same gender, in priority order. An entity with no same-gender candidate is
// excluded from the round rather than paired across genders.
func (e *Engine) pairSingles(pool []entity, stats Stats, courts []int) (matches []*Match, excluded []entity) {
	remaining := append([]entity(nil), pool...)
	courtIdx := 0

	for len(remaining) >= 2 && courtIdx < len(courts) {
		first := remaining[0]
		remaining = remaining[1:]

		bestIdx := -1
		bestGap := math.Inf(1)
		for i, cand := range remaining {
			if cand.gender != first.gender {
				continue
			}
			gap := math.Abs(cand.rating - first.rating)
			if gap < bestGap {
				bestGap = gap
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			e.trace.Warn("no same-gender opponent, sitting out", "entity", first.id)
			excluded = append(excluded, first)
			continue
		}

		opp := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		matches = append(matches, e.newMatch(FormatSingles, courts[courtIdx], []entity{first}, []entity{opp}))
		courtIdx++
	}

	excluded = append(excluded, remaining...)
	return matches, excluded
}

// pairTeams matches fixed teams within the same gender category. With three
// or more candidates the top-priority team's opponent is scored on rating
// gap, repeat matchups and a small boost for teams with fewer rounds played;
// with exactly two they pair directly.
func (e *Engine) pairTeams(pool []entity, stats Stats, roundIdx int, courts []int) (matches []*Match, excluded []entity) {
	byCategory := map[GenderCategory][]entity{}
	for _, en := range pool {
		byCategory[en.category] = append(byCategory[en.category], en)
	}

	courtIdx := 0
	for _, cat := range []GenderCategory{CategoryMaleMale, CategoryFemaleFemale, CategoryMixed} {
		remaining := byCategory[cat]
		for len(remaining) >= 2 && courtIdx < len(courts) {
			if len(remaining) == 2 {
				matches = append(matches, e.newMatch(FormatTeamedDoubles, courts[courtIdx], remaining[:1], remaining[1:2]))
				courtIdx++
				remaining = nil
				break
			}

			top := remaining[0]
			rest := remaining[1:]
			bestIdx := 0
			bestScore := math.Inf(1)
			for i, opp := range rest {
				st := stats.Get(opp.id, roundIdx)
				score := math.Abs(top.rating-opp.rating) * 10
				score += float64(stats.Get(top.id, roundIdx).opponentCount(opp.id) * 20)
				score -= float64((5 - st.RoundsPlayed) * 2)
				if score < bestScore {
					bestScore = score
					bestIdx = i
				}
			}
			opp := rest[bestIdx]
			remaining = append(rest[:bestIdx], rest[bestIdx+1:]...)
			matches = append(matches, e.newMatch(FormatTeamedDoubles, courts[courtIdx], []entity{top}, []entity{opp}))
			courtIdx++
		}
		excluded = append(excluded, remaining...)
	}
	return matches, excluded
}

// newMatch assembles a pending match from two sides.
func (e *Engine) newMatch(format MatchFormat, court int, side1, side2 []entity) *Match {
	return &Match{
		ID:          uuid.New().String(),
		Court:       court,
		Format:      format,
		Side1:       entityIDs(side1),
		Side2:       entityIDs(side2),
		Status:      StatusPending,
		Diff:        sideGap(side1, side2),
		LadderIndex: -1,
	}
}

func sideGap(side1, side2 []entity) float64 {
	return math.Abs(avgRating(side1) - avgRating(side2))
}

func avgRating(side []entity) float64 {
	if len(side) == 0 {
		return 0
	}
	total := 0.0
	for _, en := range side {
		total += en.rating
	}
	return total / float64(len(side))
}

func entityIDs(ens []entity) []string {
	ids := make([]string, len(ens))
	for i, en := range ens {
		ids[i] = en.id
	}
	return ids
}

func containsEntity(ens []entity, id string) bool {
	for _, en := range ens {
		if en.id == id {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
