package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/pubsub"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
	}
}

func (s *Server) MetricsSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.MetricsStore.GetAll()
		if err != nil {
			log.Error("Failed to load metrics summary", "error", err)
			http.Error(w, "Failed to load metrics", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, all)
	}
}

func (s *Server) PlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			players, err := s.Store.GetAllPlayers()
			if err != nil {
				log.Error("Failed to list players", "error", err)
				http.Error(w, "Failed to list players", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, players)
		case http.MethodPost:
			var players []club.PlayerInfo
			if err := json.NewDecoder(r.Body).Decode(&players); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			for _, p := range players {
				if p.ID == "" || p.Name == "" {
					http.Error(w, "Player id and name are required", http.StatusBadRequest)
					return
				}
			}
			if err := s.Store.UpsertPlayers(players); err != nil {
				log.Error("Failed to upsert players", "error", err)
				http.Error(w, "Failed to upsert players", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"upserted": len(players)})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) PresenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			PlayerID string `json:"player_id"`
			Present  bool   `json:"present"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Store.SetPresence(req.PlayerID, req.Present); err != nil {
			log.Warn("Failed to set presence", "error", err, "playerID", req.PlayerID)
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"player_id": req.PlayerID, "present": req.Present})
	}
}

func (s *Server) ImportPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 30
		if daysStr := r.URL.Query().Get("days"); daysStr != "" {
			parsed, err := strconv.Atoi(daysStr)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid 'days' parameter", http.StatusBadRequest)
				return
			}
			days = parsed
		}

		since := time.Now().AddDate(0, 0, -days)
		count, err := s.Importer.ImportPlayers(since)
		if err != nil {
			log.Error("Player import failed", "error", err)
			http.Error(w, "Import failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"imported": count})
	}
}

type startSessionRequest struct {
	Name             string `json:"name"`
	Courts           int    `json:"courts"`
	MatchFormat      string `json:"match_format"`
	TournamentFormat string `json:"tournament_format"`
	SkillSeparation  *bool  `json:"skill_separation"`
	PreferMixed      *bool  `json:"prefer_mixed"`
	RestInterval     int    `json:"rest_interval"`
	Teams            []struct {
		ID        string `json:"id"`
		Player1ID string `json:"player1_id"`
		Player2ID string `json:"player2_id"`
	} `json:"teams"`
}

func (s *Server) StartSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req startSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		matchFormat := scheduler.MatchFormat(strings.ToUpper(req.MatchFormat))
		switch matchFormat {
		case scheduler.FormatSingles, scheduler.FormatDoubles, scheduler.FormatTeamedDoubles:
		default:
			http.Error(w, "Unknown match format", http.StatusBadRequest)
			return
		}
		tournamentFormat := scheduler.TournamentFormat(strings.ToUpper(req.TournamentFormat))
		if req.TournamentFormat == "" {
			tournamentFormat = scheduler.TournamentOpenPlay
		}
		switch tournamentFormat {
		case scheduler.TournamentOpenPlay, scheduler.TournamentKingOfCourt:
		default:
			http.Error(w, "Unknown tournament format", http.StatusBadRequest)
			return
		}

		defaults := s.Cfg.Scheduler
		sess := &club.Session{
			Name:             req.Name,
			Courts:           req.Courts,
			MatchFormat:      matchFormat,
			TournamentFormat: tournamentFormat,
			SkillSeparation:  defaults.SkillSeparation,
			PreferMixed:      defaults.PreferMixed,
			RestInterval:     defaults.RestInterval,
		}
		if sess.Courts <= 0 {
			sess.Courts = defaults.Courts
		}
		if req.SkillSeparation != nil {
			sess.SkillSeparation = *req.SkillSeparation
		}
		if req.PreferMixed != nil {
			sess.PreferMixed = *req.PreferMixed
		}
		if req.RestInterval > 0 {
			sess.RestInterval = req.RestInterval
		}

		if err := s.Store.CreateSession(sess); err != nil {
			log.Error("Failed to create session", "error", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		if matchFormat == scheduler.FormatTeamedDoubles {
			if len(req.Teams) < 2 {
				http.Error(w, "Teamed doubles needs at least two teams", http.StatusBadRequest)
				return
			}
			var teams []scheduler.Team
			for _, t := range req.Teams {
				members, err := s.Store.GetPlayers([]string{t.Player1ID, t.Player2ID})
				if err != nil || len(members) != 2 {
					http.Error(w, fmt.Sprintf("Team %s references unknown players", t.ID), http.StatusBadRequest)
					return
				}
				teams = append(teams, scheduler.NewTeam(t.ID,
					toSchedulerPlayer(members[0]), toSchedulerPlayer(members[1])))
			}
			if err := s.Store.UpsertTeams(sess.ID, teams); err != nil {
				log.Error("Failed to save teams", "error", err)
				http.Error(w, "Failed to save teams", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusCreated, sess)
	}
}

func (s *Server) GenerateRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "Missing sessionID", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		round, err := s.Processor.GenerateRound(sessionID, isDryRun)
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrNotEnoughEntities), errors.Is(err, scheduler.ErrUnknownFormat):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, scheduler.ErrCourtsNotReady):
				http.Error(w, err.Error(), http.StatusConflict)
			case strings.Contains(err.Error(), "not found"):
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				log.Error("Round generation failed", "error", err, "session", sessionID)
				http.Error(w, "Round generation failed", http.StatusInternalServerError)
			}
			return
		}
		if !isDryRun {
			s.MetricsStore.Increment(metrics.KeyRoundsGenerated)
		}
		writeJSON(w, http.StatusOK, round)
	}
}

func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			MatchID    string `json:"match_id"`
			ScoreSide1 int    `json:"score_side1"`
			ScoreSide2 int    `json:"score_side2"`
			Winner     string `json:"winner"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		match, err := s.Processor.CompleteMatch(
			req.MatchID,
			scheduler.Score{Side1: req.ScoreSide1, Side2: req.ScoreSide2},
			scheduler.Winner(req.Winner),
			isDryRun,
		)
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrScoreWinnerMismatch):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, scheduler.ErrMatchNotPending):
				http.Error(w, err.Error(), http.StatusConflict)
			case strings.Contains(err.Error(), "not found"):
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				log.Error("Match completion failed", "error", err, "match", req.MatchID)
				http.Error(w, "Match completion failed", http.StatusInternalServerError)
			}
			return
		}
		if !isDryRun {
			s.MetricsStore.Increment(metrics.KeyMatchesCompleted)
		}
		writeJSON(w, http.StatusOK, match)
	}
}

func (s *Server) ListRoundsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "Missing sessionID", http.StatusBadRequest)
			return
		}
		rounds, err := s.Store.GetRounds(sessionID)
		if err != nil {
			log.Error("Failed to list rounds", "error", err, "session", sessionID)
			http.Error(w, "Failed to list rounds", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rounds)
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "Missing sessionID", http.StatusBadRequest)
			return
		}
		standings, err := s.Store.GetStandings(sessionID)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Error("Failed to load standings", "error", err, "session", sessionID)
			http.Error(w, "Failed to load standings", http.StatusInternalServerError)
			return
		}

		if r.URL.Query().Get("notify") == "true" {
			if err := s.Processor.SendStandings(sessionID, isDryRunFromContext(r)); err != nil {
				log.Error("Failed to notify standings", "error", err, "session", sessionID)
			}
		}
		writeJSON(w, http.StatusOK, standings)
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// StandingsCommandHandler returns a handler for the /standings Slack command.
// The command text carries the session ID.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		sessionID := strings.TrimSpace(r.FormValue("text"))
		if sessionID == "" {
			http.Error(w, "Missing session ID in command text", http.StatusBadRequest)
			return
		}

		standings, err := s.Store.GetStandings(sessionID)
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings from store", "error", err, "session", sessionID)
			return
		}

		msg, err := s.Notifier.FormatStandingsResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// MatchCompletedEventHandler receives Pub/Sub push deliveries for completed
// matches and posts refreshed standings to the channel.
func (s *Server) MatchCompletedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match completed message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		event := pubsub.MatchCompletedEvent{}
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		if err := s.Processor.SendStandings(event.SessionID, isDryRun); err != nil {
			log.Error("Failed to send standings for completed match", "error", err, "session", event.SessionID)
		}
		w.Write([]byte("OK"))
	}
}

func toSchedulerPlayer(p club.PlayerInfo) scheduler.Player {
	return scheduler.Player{ID: p.ID, Name: p.Name, Rating: p.Rating, Gender: p.Gender, Present: p.Present}
}
