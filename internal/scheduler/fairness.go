package scheduler

import (
	"math"
	"sort"
)

// fairnessMaxGap is the widest rating gap a sweep substitution may introduce.
const fairnessMaxGap = 0.5

// fairnessSweep is the post-generation repair pass for regular doubles. It
// recounts sat-out totals from the full round history (running counters can
// drift), finds sitting entities already above the population average and
// swaps each into an active match in place of a close-rated participant with
// a strictly lower sat-out count. A sweep with no eligible swap is a no-op.
func (e *Engine) fairnessSweep(matches []*Match, present []entity, sitting []entity, history []Round, stats Stats, roundIdx int, preferMixed bool) []entity {
	if len(matches) == 0 || len(sitting) == 0 {
		return sitting
	}

	satOut := e.recountSatOut(present, history, stats, roundIdx)

	total := 0
	for _, en := range present {
		total += satOut[en.id]
	}
	avg := float64(total) / float64(len(present))

	var overdue []entity
	for _, en := range sitting {
		if float64(satOut[en.id]) > avg {
			overdue = append(overdue, en)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return satOut[overdue[i].id] > satOut[overdue[j].id]
	})

	byID := make(map[string]entity, len(present))
	for _, en := range present {
		byID[en.id] = en
	}

	stillSitting := append([]entity(nil), sitting...)
	for _, cand := range overdue {
		var bestMatch *Match
		bestSlot := ""
		bestScore := math.Inf(1)

		for _, m := range matches {
			for _, pid := range append(append([]string(nil), m.Side1...), m.Side2...) {
				p, ok := byID[pid]
				if !ok {
					continue
				}
				gap := math.Abs(p.rating - cand.rating)
				if gap > fairnessMaxGap {
					continue
				}
				if satOut[pid] >= satOut[cand.id] {
					continue
				}
				score := gap*10 + float64(satOut[pid])
				if score < bestScore {
					bestScore = score
					bestMatch = m
					bestSlot = pid
				}
			}
		}

		if bestMatch == nil {
			continue
		}

		e.trace.Decision(DecisionFairnessSwap, "in", cand.id, "out", bestSlot, "court", bestMatch.Court, "sat_out", satOut[cand.id])

		// Rebuild the foursome with the substitution and re-run the split so
		// both sides stay balanced.
		var group []entity
		for _, pid := range append(append([]string(nil), bestMatch.Side1...), bestMatch.Side2...) {
			if pid == bestSlot {
				group = append(group, cand)
			} else {
				group = append(group, byID[pid])
			}
		}
		side1, side2 := e.splitTeams(group, stats, preferMixed)
		bestMatch.Side1 = entityIDs(side1)
		bestMatch.Side2 = entityIDs(side2)
		bestMatch.Diff = sideGap(side1, side2)

		for i, en := range stillSitting {
			if en.id == cand.id {
				stillSitting = append(stillSitting[:i], stillSitting[i+1:]...)
				break
			}
		}
		stillSitting = append(stillSitting, byID[bestSlot])
	}

	return stillSitting
}

// recountSatOut rebuilds ground-truth sat-out counts from round history,
// counting only rounds since each entity first became eligible.
func (e *Engine) recountSatOut(present []entity, history []Round, stats Stats, roundIdx int) map[string]int {
	counts := make(map[string]int, len(present))
	for _, en := range present {
		first := stats.Get(en.id, roundIdx).FirstRound
		n := 0
		for _, r := range history {
			if r.Index < first {
				continue
			}
			played := false
			for _, m := range r.Matches {
				if m.HasEntity(en.id) {
					played = true
					break
				}
			}
			if !played {
				n++
			}
		}
		counts[en.id] = n
	}
	return counts
}
