package processor

import (
	"fmt"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/pubsub"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// GenerateRound runs one round generation for a session and persists the
// result. In dry-run mode the engine still runs but nothing is saved or
// published.
func (p *Processor) GenerateRound(sessionID string, dryRun bool) (*scheduler.Round, error) {
	startTime := time.Now()

	sess, err := p.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	players, err := p.store.GetAllPlayers()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	var teams []scheduler.Team
	if sess.MatchFormat == scheduler.FormatTeamedDoubles {
		teams, err = p.store.GetTeams(sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load teams: %w", err)
		}
	}

	stats, err := p.store.GetStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	history, err := p.store.GetRounds(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round history: %w", err)
	}

	in := scheduler.Input{
		Players:          toSchedulerPlayers(players),
		Teams:            teams,
		Courts:           sess.Courts,
		RoundIndex:       sess.RoundCount,
		Stats:            stats,
		History:          history,
		MatchFormat:      sess.MatchFormat,
		TournamentFormat: sess.TournamentFormat,
		SkillSeparation:  sess.SkillSeparation,
		PreferMixed:      sess.PreferMixed,
		RestInterval:     sess.RestInterval,
	}

	sink := &scheduler.CaptureSink{}
	engine := scheduler.New(nil, sink)

	round, newStats, err := engine.GenerateRound(in)
	if err != nil {
		return nil, fmt.Errorf("failed to generate round: %w", err)
	}

	swaps := 0
	for _, d := range sink.Decisions {
		if d.Msg == scheduler.DecisionFairnessSwap {
			swaps++
		}
	}

	if !dryRun {
		if err := p.store.SaveRound(sessionID, round, newStats); err != nil {
			return nil, fmt.Errorf("failed to save round: %w", err)
		}
	}

	p.metrics.IncRoundsGenerated()
	p.metrics.IncMatchesCreated(len(round.Matches))
	p.metrics.IncFairnessSwaps(swaps)
	p.metrics.ObserveGenerationDuration(time.Since(startTime).Seconds())

	names := p.displayNames(players, teams)
	sitting := sittingOut(round, players, teams, sess.MatchFormat)
	if err := p.notifier.SendRoundLineup(sess, round, names, sitting, dryRun); err != nil {
		log.Error("Failed to send round lineup", "error", err, "session", sessionID)
	}

	if !dryRun {
		event := pubsub.RoundGeneratedEvent{
			SessionID:  sessionID,
			RoundIndex: round.Index,
			Matches:    len(round.Matches),
			Sitting:    len(sitting),
		}
		if err := p.pubsub.SendMessage(pubsub.EventRoundGenerated, event); err != nil {
			log.Error("Failed to publish round event", "error", err, "session", sessionID)
		}
	}

	log.Info("Round generated", "session", sessionID, "round", round.Index, "matches", len(round.Matches), "swaps", swaps, "dry_run", dryRun)
	return round, nil
}

// CompleteMatch records a result for a pending match. Validation failures
// bump the rejection counter and are returned to the caller untouched so
// the HTTP layer can map them to status codes.
func (p *Processor) CompleteMatch(matchID string, score scheduler.Score, winner scheduler.Winner, dryRun bool) (*scheduler.Match, error) {
	match, sessionID, err := p.store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	stats, err := p.store.GetStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	engine := scheduler.New(nil, nil)
	newStats, err := engine.CompleteMatch(match, score, winner, stats)
	if err != nil {
		p.metrics.IncCompletionsRejected()
		return nil, err
	}

	if !dryRun {
		if err := p.store.UpdateMatch(sessionID, match, newStats); err != nil {
			return nil, fmt.Errorf("failed to save match result: %w", err)
		}
	}

	players, err := p.store.GetAllPlayers()
	if err != nil {
		log.Error("Failed to load roster for result notification", "error", err)
		players = nil
	}
	if err := p.notifier.SendMatchResult(match, p.displayNames(players, nil), dryRun); err != nil {
		log.Error("Failed to send match result", "error", err, "match", matchID)
	}

	if !dryRun {
		event := pubsub.MatchCompletedEvent{
			SessionID:  sessionID,
			MatchID:    matchID,
			Winner:     string(winner),
			ScoreSide1: score.Side1,
			ScoreSide2: score.Side2,
			KingCourt:  match.LadderIndex == 0,
		}
		if err := p.pubsub.SendMessage(pubsub.EventMatchCompleted, event); err != nil {
			log.Error("Failed to publish match event", "error", err, "match", matchID)
		}
	}

	log.Info("Match completed", "match", matchID, "winner", winner, "dry_run", dryRun)
	return match, nil
}

// SendStandings pushes the current session standings to the notifier.
func (p *Processor) SendStandings(sessionID string, dryRun bool) error {
	standings, err := p.store.GetStandings(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load standings: %w", err)
	}
	return p.notifier.SendStandings(standings, dryRun)
}

func (p *Processor) displayNames(players []club.PlayerInfo, teams []scheduler.Team) map[string]string {
	names := map[string]string{}
	for _, pl := range players {
		names[pl.ID] = pl.Name
	}
	for _, t := range teams {
		names[t.ID] = fmt.Sprintf("%s & %s", t.Players[0].Name, t.Players[1].Name)
	}
	return names
}

func toSchedulerPlayers(players []club.PlayerInfo) []scheduler.Player {
	out := make([]scheduler.Player, 0, len(players))
	for _, p := range players {
		out = append(out, scheduler.Player{
			ID:      p.ID,
			Name:    p.Name,
			Rating:  p.Rating,
			Gender:  p.Gender,
			Present: p.Present,
		})
	}
	return out
}

// sittingOut lists present entities that have no court in the round.
func sittingOut(round *scheduler.Round, players []club.PlayerInfo, teams []scheduler.Team, format scheduler.MatchFormat) []string {
	playing := map[string]bool{}
	for _, m := range round.Matches {
		for _, id := range m.Side1 {
			playing[id] = true
		}
		for _, id := range m.Side2 {
			playing[id] = true
		}
	}

	var out []string
	if format == scheduler.FormatTeamedDoubles {
		for _, t := range teams {
			if t.Players[0].Present && t.Players[1].Present && !playing[t.ID] {
				out = append(out, t.ID)
			}
		}
		return out
	}
	for _, p := range players {
		if p.Present && !playing[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}
