package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughEntities rejects generation below the format minimum.
	ErrNotEnoughEntities = errors.New("not enough present entities for format")
	// ErrUnknownFormat rejects an unrecognized format configuration.
	ErrUnknownFormat = errors.New("unknown format configuration")
	// ErrCourtsNotReady blocks a ladder round while results are outstanding.
	ErrCourtsNotReady = errors.New("previous ladder round has unscored matches")
	// ErrMatchNotPending rejects completion of an already-completed match.
	ErrMatchNotPending = errors.New("match is not pending")
	// ErrScoreWinnerMismatch rejects a declared winner that contradicts the
	// entered score. The match stays pending; no silent override.
	ErrScoreWinnerMismatch = errors.New("declared winner contradicts score")
)

// GenerateRound runs one scheduling pass for the configured formats and
// returns the generated round together with a fresh updated stats value.
// Input stats are never mutated.
func (e *Engine) GenerateRound(in Input) (*Round, Stats, error) {
	stats := in.Stats
	if stats == nil {
		stats = Stats{}
	}
	stats = stats.Clone()

	var round *Round
	var err error
	switch in.TournamentFormat {
	case TournamentOpenPlay, "":
		switch in.MatchFormat {
		case FormatSingles:
			round, err = e.generateSingles(in, stats)
		case FormatDoubles:
			round, err = e.generateDoubles(in, stats)
		case FormatTeamedDoubles:
			round, err = e.generateTeamed(in, stats)
		default:
			return nil, nil, fmt.Errorf("%w: match format %q", ErrUnknownFormat, in.MatchFormat)
		}
	case TournamentKingOfCourt:
		switch in.MatchFormat {
		case FormatDoubles:
			round, err = e.generateLadder(in, stats, false)
		case FormatTeamedDoubles:
			round, err = e.generateLadder(in, stats, true)
		default:
			return nil, nil, fmt.Errorf("%w: match format %q for ladder", ErrUnknownFormat, in.MatchFormat)
		}
	default:
		return nil, nil, fmt.Errorf("%w: tournament format %q", ErrUnknownFormat, in.TournamentFormat)
	}
	if err != nil {
		return nil, nil, err
	}
	return round, stats, nil
}

// presentPlayers filters the roster to entities eligible this round.
func presentPlayers(players []Player) []entity {
	var out []entity
	for _, p := range players {
		if p.Present {
			out = append(out, playerEntity(p))
		}
	}
	return out
}

func presentTeams(teams []Team) []entity {
	out := make([]entity, 0, len(teams))
	for _, t := range teams {
		if t.Players[0].Present && t.Players[1].Present {
			out = append(out, teamEntity(t))
		}
	}
	return out
}

// generateDoubles is the regular doubles flow: bucketize, select, form
// foursomes, split sides, then run the fairness sweep before bookkeeping.
func (e *Engine) generateDoubles(in Input, stats Stats) (*Round, error) {
	pool := presentPlayers(in.Players)
	if len(pool) < 4 {
		return nil, fmt.Errorf("%w: doubles needs 4 players, have %d", ErrNotEnoughEntities, len(pool))
	}

	buckets := e.bucketsFor(pool, in.SkillSeparation)
	courtsPer := allocateCourts(buckets, in.Courts, 4)

	round := &Round{Index: in.RoundIndex}
	var sitting []entity
	court := 1
	for bi, b := range buckets {
		slots := courtsPer[bi] * 4
		var selected, rest []entity
		if in.PreferMixed {
			selected, rest = e.selectForRoundMixed(b.entities, stats, slots, in.RoundIndex, in.RestInterval)
		} else {
			selected, rest = e.selectForRound(b.entities, stats, slots, in.RoundIndex)
		}
		sitting = append(sitting, rest...)

		remaining := selected
		for c := 0; c < courtsPer[bi] && len(remaining) >= 4; c++ {
			var group []entity
			group, remaining = e.bestGroupOfFour(remaining, stats, in.RoundIndex)
			side1, side2 := e.splitTeams(group, stats, in.PreferMixed)
			m := e.newMatch(FormatDoubles, court, side1, side2)
			m.CourtLevel = b.name
			round.Matches = append(round.Matches, m)
			court++
		}
		// A short tail that never filled a court sits out after all.
		sitting = append(sitting, remaining...)
	}

	sitting = e.fairnessSweep(round.Matches, pool, sitting, in.History, stats, in.RoundIndex, in.PreferMixed)
	e.trace.Decision("doubles round generated", "matches", len(round.Matches), "sitting", len(sitting))
	e.applyRoundStats(round, pool, stats, in.RoundIndex)
	return round, nil
}

func (e *Engine) generateSingles(in Input, stats Stats) (*Round, error) {
	pool := presentPlayers(in.Players)
	if len(pool) < 2 {
		return nil, fmt.Errorf("%w: singles needs 2 players, have %d", ErrNotEnoughEntities, len(pool))
	}

	buckets := e.bucketsFor(pool, in.SkillSeparation)
	courtsPer := allocateCourts(buckets, in.Courts, 2)

	round := &Round{Index: in.RoundIndex}
	court := 1
	for bi, b := range buckets {
		slots := courtsPer[bi] * 2
		selected, _ := e.selectForRound(b.entities, stats, slots, in.RoundIndex)

		courts := make([]int, courtsPer[bi])
		for i := range courts {
			courts[i] = court + i
		}
		matches, _ := e.pairSingles(selected, stats, courts)
		for _, m := range matches {
			m.CourtLevel = b.name
		}
		round.Matches = append(round.Matches, matches...)
		court += len(matches)
	}

	e.applyRoundStats(round, pool, stats, in.RoundIndex)
	return round, nil
}

func (e *Engine) generateTeamed(in Input, stats Stats) (*Round, error) {
	pool := presentTeams(in.Teams)
	if len(pool) < 2 {
		return nil, fmt.Errorf("%w: teamed doubles needs 2 teams, have %d", ErrNotEnoughEntities, len(pool))
	}

	buckets := e.bucketsFor(pool, in.SkillSeparation)
	courtsPer := allocateCourts(buckets, in.Courts, 2)

	round := &Round{Index: in.RoundIndex}
	court := 1
	for bi, b := range buckets {
		slots := courtsPer[bi] * 2
		selected, _ := e.selectForRound(b.entities, stats, slots, in.RoundIndex)
		ordered := selected // already in priority order

		courts := make([]int, courtsPer[bi])
		for i := range courts {
			courts[i] = court + i
		}
		matches, _ := e.pairTeams(ordered, stats, in.RoundIndex, courts)
		for _, m := range matches {
			m.CourtLevel = b.name
		}
		round.Matches = append(round.Matches, matches...)
		court += len(matches)
	}

	e.applyRoundStats(round, pool, stats, in.RoundIndex)
	return round, nil
}

// generateLadder drives the King of Court formats. Hierarchies follow the
// skill buckets (individuals) or gender categories (teams).
func (e *Engine) generateLadder(in Input, stats Stats, teams bool) (*Round, error) {
	if !ladderReady(in.History) {
		return nil, ErrCourtsNotReady
	}

	var pool []entity
	var capacity, quota, minimum int
	var format MatchFormat
	if teams {
		pool = presentTeams(in.Teams)
		capacity, quota, minimum = 2, ladderTeamQuota, 2
		format = FormatTeamedDoubles
	} else {
		pool = presentPlayers(in.Players)
		capacity, quota, minimum = 4, ladderPlayerQuota, 4
		format = FormatDoubles
	}
	if len(pool) < minimum {
		return nil, fmt.Errorf("%w: ladder needs %d entities, have %d", ErrNotEnoughEntities, minimum, len(pool))
	}

	buckets := e.bucketsFor(pool, in.SkillSeparation)
	courtsPer := allocateCourts(buckets, in.Courts, capacity)

	round := &Round{Index: in.RoundIndex}
	court := 1
	for bi, b := range buckets {
		if courtsPer[bi] == 0 {
			continue
		}
		courts := make([]int, courtsPer[bi])
		for i := range courts {
			courts[i] = court + i
		}
		court += courtsPer[bi]

		h := hierarchy{name: b.name, courts: courts, capacity: capacity, quota: quota}
		matches := e.assignLadderRound(h, b.entities, in.History, stats, in.RoundIndex, format, in.PreferMixed)
		round.Matches = append(round.Matches, matches...)
	}

	e.applyRoundStats(round, pool, stats, in.RoundIndex)
	return round, nil
}

// bucketsFor returns skill buckets when separation is on, otherwise a single
// mixed bucket over the whole pool.
func (e *Engine) bucketsFor(pool []entity, skillSeparation bool) []bucket {
	if skillSeparation {
		return e.bucketize(pool, defaultMinBucketSize)
	}
	return []bucket{{name: "mixed", min: skillTiers[0].Min, max: skillTiers[len(skillTiers)-1].Max, entities: pool, mixed: true}}
}

// allocateCourts splits the court budget across buckets proportionally to
// size, capped by how many full matches each bucket can actually field.
func allocateCourts(buckets []bucket, courts, perCourt int) []int {
	out := make([]int, len(buckets))
	if courts <= 0 || len(buckets) == 0 {
		return out
	}
	total := 0
	for _, b := range buckets {
		total += len(b.entities)
	}
	if total == 0 {
		return out
	}

	remaining := courts
	for i, b := range buckets {
		share := courts * len(b.entities) / total
		if share < 1 && len(b.entities) >= perCourt {
			share = 1
		}
		if fill := len(b.entities) / perCourt; share > fill {
			share = fill
		}
		if share > remaining {
			share = remaining
		}
		out[i] = share
		remaining -= share
	}
	// Hand leftover courts to buckets that can still fill them.
	for i, b := range buckets {
		for remaining > 0 && (out[i]+1)*perCourt <= len(b.entities) {
			out[i]++
			remaining--
		}
	}
	return out
}

// applyRoundStats is the selection bookkeeping: every present entity either
// played or sat out, so roundsPlayed + roundsSatOut tracks the number of
// rounds generated since first eligibility.
func (e *Engine) applyRoundStats(round *Round, present []entity, stats Stats, roundIdx int) {
	played := make(map[string]bool)
	for _, m := range round.Matches {
		m.RoundIndex = roundIdx
		for _, sides := range [][]string{m.Side1, m.Side2} {
			for _, id := range sides {
				played[id] = true
			}
		}
		e.recordHistory(m, stats, roundIdx)
	}

	for _, en := range present {
		st := stats.Get(en.id, roundIdx)
		if played[en.id] {
			st.RoundsPlayed++
			st.LastPlayedRound = roundIdx
			st.ConsecutivePlayed++
		} else {
			st.RoundsSatOut++
			st.ConsecutivePlayed = 0
		}
	}
}

// recordHistory updates teammate and opponent maps for one match.
func (e *Engine) recordHistory(m *Match, stats Stats, roundIdx int) {
	for _, side := range [][]string{m.Side1, m.Side2} {
		for i := 0; i < len(side); i++ {
			for j := i + 1; j < len(side); j++ {
				stats.Get(side[i], roundIdx).Teammates[side[j]]++
				stats.Get(side[j], roundIdx).Teammates[side[i]]++
			}
		}
	}
	for _, a := range m.Side1 {
		for _, b := range m.Side2 {
			stats.Get(a, roundIdx).Opponents[b]++
			stats.Get(b, roundIdx).Opponents[a]++
		}
	}
}

// CompleteMatch transitions a pending match to completed and accrues ladder
// points for the winning side. The transition is one-way; a winner that
// contradicts the score is rejected and the match stays pending.
func (e *Engine) CompleteMatch(m *Match, score Score, winner Winner, stats Stats) (Stats, error) {
	if m.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotPending, m.ID)
	}
	switch winner {
	case WinnerSide1:
		if score.Side1 <= score.Side2 {
			return nil, fmt.Errorf("%w: side1 declared with score %d-%d", ErrScoreWinnerMismatch, score.Side1, score.Side2)
		}
	case WinnerSide2:
		if score.Side2 <= score.Side1 {
			return nil, fmt.Errorf("%w: side2 declared with score %d-%d", ErrScoreWinnerMismatch, score.Side1, score.Side2)
		}
	default:
		return nil, fmt.Errorf("%w: no winner declared", ErrScoreWinnerMismatch)
	}

	if stats == nil {
		stats = Stats{}
	}
	stats = stats.Clone()

	m.Score = &Score{Side1: score.Side1, Side2: score.Side2}
	m.Winner = winner
	m.Status = StatusCompleted

	if m.PointsForWin > 0 {
		winning := m.Side1
		if winner == WinnerSide2 {
			winning = m.Side2
		}
		for _, id := range winning {
			st := stats.Get(id, m.RoundIndex)
			st.TotalPoints += m.PointsForWin
			if m.LadderIndex == 0 {
				st.Court1Wins++
			}
		}
		e.trace.Decision("ladder points awarded", "match", m.ID, "points", m.PointsForWin, "king_court", m.LadderIndex == 0)
	}
	return stats, nil
}
