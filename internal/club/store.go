package club

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// AddPlayer inserts a player, ignoring duplicates.
func (s *store) AddPlayer(playerID, name string, rating float64, gender scheduler.Gender) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO players (id, name, rating, gender, present) VALUES (?, ?, ?, ?, 1)`,
		playerID, name, rating, string(gender),
	)
	if err != nil {
		log.Error("Failed to add player", "error", err, "playerID", playerID)
	}
}

// UpsertPlayers bulk-inserts roster entries, updating name and rating on
// conflict but leaving presence alone.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating, gender, present)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rating = excluded.rating,
			gender = excluded.gender;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name, p.Rating, string(p.Gender)); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetAllPlayers returns the full roster ordered by name.
func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, rating, gender, present FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()
	return scanPlayers(rows)
}

// GetPlayers returns the given roster entries.
func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PlayerInfo
	for _, id := range playerIDs {
		row := s.db.QueryRow(`SELECT id, name, rating, gender, present FROM players WHERE id = ?`, id)
		var p PlayerInfo
		var gender string
		var present int
		if err := row.Scan(&p.ID, &p.Name, &p.Rating, &gender, &present); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("failed to get player %s: %w", id, err)
		}
		p.Gender = scheduler.Gender(gender)
		p.Present = present != 0
		out = append(out, p)
	}
	return out, nil
}

// SetPresence marks a player present or absent for upcoming rounds.
func (s *store) SetPresence(playerID string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag := 0
	if present {
		flag = 1
	}
	res, err := s.db.Exec(`UPDATE players SET present = ? WHERE id = ?`, flag, playerID)
	if err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown player: %s", playerID)
	}
	return nil
}

// IsKnownPlayer checks whether the player exists in the roster.
func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM players WHERE id = ?`, playerID).Scan(&one)
	return err == nil
}

// UpsertTeams replaces the fixed teams of a session.
func (s *store) UpsertTeams(sessionID string, teams []scheduler.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM teams WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear teams: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO teams (id, session_id, player1_id, player2_id, gender_category, avg_rating)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare team insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range teams {
		if _, err := stmt.Exec(t.ID, sessionID, t.Players[0].ID, t.Players[1].ID, string(t.Category), t.AvgRating); err != nil {
			return fmt.Errorf("failed to insert team %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// GetTeams loads a session's fixed teams with their current player records.
func (s *store) GetTeams(sessionID string) ([]scheduler.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, player1_id, player2_id FROM teams WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	type teamRow struct {
		id, p1, p2 string
	}
	var trs []teamRow
	for rows.Next() {
		var tr teamRow
		if err := rows.Scan(&tr.id, &tr.p1, &tr.p2); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		trs = append(trs, tr)
	}

	var teams []scheduler.Team
	for _, tr := range trs {
		players, err := s.getPlayersLocked([]string{tr.p1, tr.p2})
		if err != nil {
			return nil, err
		}
		if len(players) != 2 {
			log.Warn("Team references missing players, skipping", "team", tr.id)
			continue
		}
		teams = append(teams, scheduler.NewTeam(tr.id, toSchedulerPlayer(players[0]), toSchedulerPlayer(players[1])))
	}
	return teams, nil
}

func (s *store) getPlayersLocked(ids []string) ([]PlayerInfo, error) {
	var out []PlayerInfo
	for _, id := range ids {
		row := s.db.QueryRow(`SELECT id, name, rating, gender, present FROM players WHERE id = ?`, id)
		var p PlayerInfo
		var gender string
		var present int
		if err := row.Scan(&p.ID, &p.Name, &p.Rating, &gender, &present); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("failed to get player %s: %w", id, err)
		}
		p.Gender = scheduler.Gender(gender)
		p.Present = present != 0
		out = append(out, p)
	}
	return out, nil
}

func toSchedulerPlayer(p PlayerInfo) scheduler.Player {
	return scheduler.Player{ID: p.ID, Name: p.Name, Rating: p.Rating, Gender: p.Gender, Present: p.Present}
}

// CreateSession persists a new session. A missing ID is generated.
func (s *store) CreateSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, name, created_at, courts, match_format, tournament_format, skill_separation, prefer_mixed, rest_interval, round_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, session.ID, session.Name, session.CreatedAt, session.Courts,
		string(session.MatchFormat), string(session.TournamentFormat),
		boolToInt(session.SkillSeparation), boolToInt(session.PreferMixed), session.RestInterval)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	log.Info("Created session", "id", session.ID, "format", session.MatchFormat, "tournament", session.TournamentFormat)
	return nil
}

// GetSession retrieves a session by ID.
func (s *store) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, created_at, courts, match_format, tournament_format, skill_separation, prefer_mixed, rest_interval, round_count
		FROM sessions WHERE id = ?
	`, sessionID)

	var sess Session
	var matchFormat, tournamentFormat string
	var skillSep, preferMixed int
	err := row.Scan(&sess.ID, &sess.Name, &sess.CreatedAt, &sess.Courts, &matchFormat, &tournamentFormat, &skillSep, &preferMixed, &sess.RestInterval, &sess.RoundCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.MatchFormat = scheduler.MatchFormat(matchFormat)
	sess.TournamentFormat = scheduler.TournamentFormat(tournamentFormat)
	sess.SkillSeparation = skillSep != 0
	sess.PreferMixed = preferMixed != 0
	return &sess, nil
}

// SaveRound persists a generated round, its matches and the updated stats
// snapshot in one transaction.
func (s *store) SaveRound(sessionID string, round *scheduler.Round, stats scheduler.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	roundID := uuid.New().String()
	if _, err := tx.Exec(
		`INSERT INTO rounds (id, session_id, idx, created_at) VALUES (?, ?, ?, ?)`,
		roundID, sessionID, round.Index, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO matches (id, round_id, session_id, round_idx, court, format, side1_json, side2_json, status, diff, court_level, points_for_win, ladder_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range round.Matches {
		side1JSON, err := json.Marshal(m.Side1)
		if err != nil {
			return fmt.Errorf("failed to marshal side1: %w", err)
		}
		side2JSON, err := json.Marshal(m.Side2)
		if err != nil {
			return fmt.Errorf("failed to marshal side2: %w", err)
		}
		if _, err := stmt.Exec(m.ID, roundID, sessionID, round.Index, m.Court, string(m.Format),
			side1JSON, side2JSON, string(m.Status), m.Diff, m.CourtLevel, m.PointsForWin, m.LadderIndex); err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
	}

	blob, err := msgpack.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats snapshot: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE sessions SET stats_blob = ?, round_count = round_count + 1 WHERE id = ?`,
		blob, sessionID,
	); err != nil {
		return fmt.Errorf("failed to update session snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit round: %w", err)
	}
	log.Info("Saved round", "session", sessionID, "round", round.Index, "matches", len(round.Matches))
	return nil
}

// GetRounds returns a session's full round history in order.
func (s *store) GetRounds(sessionID string) ([]scheduler.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, round_id, round_idx, court, format, side1_json, side2_json, status, score_side1, score_side2, winner, diff, court_level, points_for_win, ladder_index
		FROM matches WHERE session_id = ?
		ORDER BY round_idx ASC, court ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	byIdx := map[int]*scheduler.Round{}
	var order []int
	for rows.Next() {
		m, roundIdx, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		r, ok := byIdx[roundIdx]
		if !ok {
			r = &scheduler.Round{Index: roundIdx}
			byIdx[roundIdx] = r
			order = append(order, roundIdx)
		}
		r.Matches = append(r.Matches, m)
	}

	sort.Ints(order)
	out := make([]scheduler.Round, 0, len(order))
	for _, idx := range order {
		out = append(out, *byIdx[idx])
	}
	return out, nil
}

// GetMatch loads one match and its session ID.
func (s *store) GetMatch(matchID string) (*scheduler.Match, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, round_id, round_idx, court, format, side1_json, side2_json, status, score_side1, score_side2, winner, diff, court_level, points_for_win, ladder_index, session_id
		FROM matches WHERE id = ?
	`, matchID)

	var m scheduler.Match
	var roundID, format, status string
	var side1JSON, side2JSON []byte
	var score1, score2 sql.NullInt64
	var winner, courtLevel sql.NullString
	var sessionID string
	err := row.Scan(&m.ID, &roundID, &m.RoundIndex, &m.Court, &format, &side1JSON, &side2JSON, &status,
		&score1, &score2, &winner, &m.Diff, &courtLevel, &m.PointsForWin, &m.LadderIndex, &sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", fmt.Errorf("match not found: %s", matchID)
		}
		return nil, "", fmt.Errorf("failed to get match: %w", err)
	}
	if err := fillMatch(&m, format, status, side1JSON, side2JSON, score1, score2, winner, courtLevel); err != nil {
		return nil, "", err
	}
	return &m, sessionID, nil
}

// UpdateMatch persists a completed match together with the updated stats
// snapshot.
func (s *store) UpdateMatch(sessionID string, match *scheduler.Match, stats scheduler.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var score1, score2 any
	if match.Score != nil {
		score1, score2 = match.Score.Side1, match.Score.Side2
	}
	if _, err := tx.Exec(`
		UPDATE matches SET status = ?, score_side1 = ?, score_side2 = ?, winner = ? WHERE id = ?
	`, string(match.Status), score1, score2, string(match.Winner), match.ID); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	blob, err := msgpack.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats snapshot: %w", err)
	}
	if _, err := tx.Exec(`UPDATE sessions SET stats_blob = ? WHERE id = ?`, blob, sessionID); err != nil {
		return fmt.Errorf("failed to update session snapshot: %w", err)
	}
	return tx.Commit()
}

// GetStats loads and normalizes a session's stats snapshot. Normalization
// happens here, once, at the serialization boundary.
func (s *store) GetStats(sessionID string) (scheduler.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob []byte
	err := s.db.QueryRow(`SELECT stats_blob FROM sessions WHERE id = ?`, sessionID).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get stats snapshot: %w", err)
	}
	if blob == nil {
		return scheduler.Stats{}, nil
	}

	var stats scheduler.Stats
	if err := msgpack.Unmarshal(blob, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats snapshot: %w", err)
	}
	stats.Normalize()
	return stats, nil
}

// GetStandings derives the session leaderboard from the stats snapshot,
// ordered by ladder points, king-court wins and rounds played.
func (s *store) GetStandings(sessionID string) ([]Standing, error) {
	stats, err := s.GetStats(sessionID)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	players, err := s.GetAllPlayers()
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		names[p.ID] = p.Name
	}

	var out []Standing
	for id, entry := range stats {
		name, ok := names[id]
		if !ok {
			name = id // team IDs and removed players keep their raw ID
		}
		out = append(out, Standing{
			EntityID:     id,
			Name:         name,
			RoundsPlayed: entry.RoundsPlayed,
			RoundsSatOut: entry.RoundsSatOut,
			TotalPoints:  entry.TotalPoints,
			Court1Wins:   entry.Court1Wins,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Court1Wins != b.Court1Wins {
			return a.Court1Wins > b.Court1Wins
		}
		if a.RoundsPlayed != b.RoundsPlayed {
			return a.RoundsPlayed > b.RoundsPlayed
		}
		return a.Name < b.Name
	})
	return out, nil
}

// Clear wipes all club data. Used by tests and the /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"matches", "rounds", "teams", "sessions", "players"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
	log.Info("Store cleared")
}

func scanPlayers(rows *sql.Rows) ([]PlayerInfo, error) {
	var out []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var gender string
		var present int
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &gender, &present); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.Gender = scheduler.Gender(gender)
		p.Present = present != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanMatch(rows *sql.Rows) (*scheduler.Match, int, error) {
	var m scheduler.Match
	var roundID, format, status string
	var side1JSON, side2JSON []byte
	var score1, score2 sql.NullInt64
	var winner, courtLevel sql.NullString
	err := rows.Scan(&m.ID, &roundID, &m.RoundIndex, &m.Court, &format, &side1JSON, &side2JSON, &status,
		&score1, &score2, &winner, &m.Diff, &courtLevel, &m.PointsForWin, &m.LadderIndex)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan match row: %w", err)
	}
	if err := fillMatch(&m, format, status, side1JSON, side2JSON, score1, score2, winner, courtLevel); err != nil {
		return nil, 0, err
	}
	return &m, m.RoundIndex, nil
}

func fillMatch(m *scheduler.Match, format, status string, side1JSON, side2JSON []byte, score1, score2 sql.NullInt64, winner, courtLevel sql.NullString) error {
	m.Format = scheduler.MatchFormat(format)
	m.Status = scheduler.MatchStatus(status)
	if err := json.Unmarshal(side1JSON, &m.Side1); err != nil {
		return fmt.Errorf("failed to unmarshal side1: %w", err)
	}
	if err := json.Unmarshal(side2JSON, &m.Side2); err != nil {
		return fmt.Errorf("failed to unmarshal side2: %w", err)
	}
	if score1.Valid && score2.Valid {
		m.Score = &scheduler.Score{Side1: int(score1.Int64), Side2: int(score2.Int64)}
	}
	if winner.Valid {
		m.Winner = scheduler.Winner(winner.String)
	}
	if courtLevel.Valid {
		m.CourtLevel = courtLevel.String
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
