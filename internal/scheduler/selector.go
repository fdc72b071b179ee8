package scheduler

import "sort"

// Priority weights. Sat-out dominates so nobody rides the bench twice while
// others rest; the never-played bonus outranks recency; catch-up nudges
// late joiners toward the average.
const (
	weightSatOut     = 500
	weightSinceLast  = 200
	bonusNeverPlayed = 1000
	weightCatchup    = 100
	restPenalty      = 2000
)

// priority computes the standard fairness score for one entity. avgPlayed is
// the mean rounds played across the population under selection.
func (e *Engine) priority(en entity, stats Stats, roundIdx int, avgPlayed float64) float64 {
	st := stats.Get(en.id, roundIdx)
	score := float64(st.RoundsSatOut * weightSatOut)
	if st.LastPlayedRound < 0 {
		score += bonusNeverPlayed
	} else {
		score += float64((roundIdx - st.LastPlayedRound) * weightSinceLast)
	}
	score += (avgPlayed - float64(st.RoundsPlayed)) * weightCatchup
	score += e.rng.Float64() // jitter for tie-breaking only
	return score
}

func avgRoundsPlayed(pool []entity, stats Stats, roundIdx int) float64 {
	if len(pool) == 0 {
		return 0
	}
	total := 0
	for _, en := range pool {
		total += stats.Get(en.id, roundIdx).RoundsPlayed
	}
	return float64(total) / float64(len(pool))
}

// sortByPriority orders pool by fairness priority, highest first.
func (e *Engine) sortByPriority(pool []entity, stats Stats, roundIdx int) []entity {
	avg := avgRoundsPlayed(pool, stats, roundIdx)
	type scored struct {
		en entity
		p  float64
	}
	ss := make([]scored, len(pool))
	for i, en := range pool {
		ss[i] = scored{en, e.priority(en, stats, roundIdx, avg)}
	}
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].p > ss[j].p })
	out := make([]entity, len(ss))
	for i, s := range ss {
		out[i] = s.en
	}
	return out
}

// selectForRound picks at most slots entities to play this round by fairness
// priority; everyone else in the pool sits out.
func (e *Engine) selectForRound(pool []entity, stats Stats, slots, roundIdx int) (selected, sitting []entity) {
	ordered := e.sortByPriority(pool, stats, roundIdx)
	if slots > len(ordered) {
		slots = len(ordered)
	}
	selected = ordered[:slots]
	sitting = ordered[slots:]
	for _, en := range selected {
		e.trace.Decision("selected to play", "entity", en.id, "round", roundIdx)
	}
	for _, en := range sitting {
		e.trace.Decision("sitting out", "entity", en.id, "round", roundIdx)
	}
	return selected, sitting
}

// selectForRoundMixed is the gender-aware variant used by regular doubles
// when the mixed preference is on. Up to half the slots are reserved for
// women first, with a soft rest penalty once someone has played restInterval
// rounds back to back. The penalty is soft on purpose: a very overdue player
// overrides it through the sat-out weight.
func (e *Engine) selectForRoundMixed(pool []entity, stats Stats, slots, roundIdx, restInterval int) (selected, sitting []entity) {
	var females, males []entity
	for _, en := range pool {
		if en.gender == GenderFemale {
			females = append(females, en)
		} else {
			males = append(males, en)
		}
	}

	avg := avgRoundsPlayed(pool, stats, roundIdx)

	type scored struct {
		en entity
		p  float64
	}
	scoreSubset := func(subset []entity, rest bool) []scored {
		ss := make([]scored, len(subset))
		for i, en := range subset {
			p := e.priority(en, stats, roundIdx, avg)
			if rest && restInterval > 0 && stats.Get(en.id, roundIdx).ConsecutivePlayed >= restInterval {
				p -= restPenalty
				e.trace.Decision("rest penalty applied", "entity", en.id, "consecutive", stats.Get(en.id, roundIdx).ConsecutivePlayed)
			}
			ss[i] = scored{en, p}
		}
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].p > ss[j].p })
		return ss
	}

	reserve := len(females)
	if half := slots / 2; reserve > half {
		reserve = half
	}

	taken := make(map[string]bool)
	for _, s := range scoreSubset(females, true) {
		if len(selected) >= reserve {
			break
		}
		selected = append(selected, s.en)
		taken[s.en.id] = true
	}
	for _, s := range scoreSubset(males, false) {
		if len(selected) >= slots {
			break
		}
		selected = append(selected, s.en)
		taken[s.en.id] = true
	}
	// Backfill from anyone left, regardless of gender.
	if len(selected) < slots {
		var rest []entity
		for _, en := range pool {
			if !taken[en.id] {
				rest = append(rest, en)
			}
		}
		for _, s := range scoreSubset(rest, false) {
			if len(selected) >= slots {
				break
			}
			selected = append(selected, s.en)
			taken[s.en.id] = true
		}
	}

	for _, en := range pool {
		if !taken[en.id] {
			sitting = append(sitting, en)
		}
	}
	return selected, sitting
}
