package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/config"
	"github.com/KilvingtonDigital/SmashBoard/internal/database"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/notifier"
	"github.com/KilvingtonDigital/SmashBoard/internal/processor"
	"github.com/KilvingtonDigital/SmashBoard/internal/pubsub"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *notifier.MockNotifier, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	cfg := config.Config{
		Scheduler: config.SchedulerConfig{
			Courts:          2,
			RestInterval:    8,
			SkillSeparation: true,
		},
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	metricsStore := metrics.New(db)
	ps := pubsub.NewMock("TEST")
	notif := notifier.NewMock()
	proc := processor.New(clubStore, notif, metricsSvc, ps)
	server := NewServer(clubStore, metricsSvc, metricsHandler, metricsStore, cfg, nil, notif, proc, ps)

	teardown := func() {
		dbTeardown()
		db.Close()
	}
	return server, notif, ps, teardown
}

func seedPlayers(t *testing.T, store club.ClubStore, n int) {
	t.Helper()
	var players []club.PlayerInfo
	for i := 0; i < n; i++ {
		players = append(players, club.PlayerInfo{
			ID:     fmt.Sprintf("p%d", i+1),
			Name:   fmt.Sprintf("Player %d", i+1),
			Rating: 3.0 + float64(i)*0.1,
			Gender: scheduler.GenderMale,
		})
	}
	require.NoError(t, store.UpsertPlayers(players))
}

func seedSession(t *testing.T, store club.ClubStore, courts int) *club.Session {
	t.Helper()
	sess := &club.Session{
		Name:             "Test Session",
		Courts:           courts,
		MatchFormat:      scheduler.FormatDoubles,
		TournamentFormat: scheduler.TournamentOpenPlay,
		RestInterval:     8,
	}
	require.NoError(t, store.CreateSession(sess))
	return sess
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "OK!", string(body))
}

func TestPlayersUpsertAndList(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	payload := `[{"id":"p1","name":"Alice","rating":3.5,"gender":"FEMALE"},{"id":"p2","name":"Bob","rating":4.0,"gender":"MALE"}]`
	req := httptest.NewRequest(http.MethodPost, "/players", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/players", nil)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var players []club.PlayerInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&players))
	assert.Len(t, players, 2)
}

func TestPlayersUpsertRejectsMissingID(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	payload := `[{"name":"No ID","rating":3.5}]`
	req := httptest.NewRequest(http.MethodPost, "/players", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPresenceUnknownPlayer(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	payload := `{"player_id":"ghost","present":false}`
	req := httptest.NewRequest(http.MethodPost, "/players/presence", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartSessionValidatesFormat(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	payload := `{"name":"Bad","match_format":"TRIPLES"}`
	req := httptest.NewRequest(http.MethodPost, "/session/start", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStartSessionAppliesDefaults(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	payload := `{"name":"Tuesday","match_format":"doubles"}`
	req := httptest.NewRequest(http.MethodPost, "/session/start", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var sess club.Session
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sess))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 2, sess.Courts)
	assert.Equal(t, 8, sess.RestInterval)
	assert.Equal(t, scheduler.TournamentOpenPlay, sess.TournamentFormat)
	assert.True(t, sess.SkillSeparation)
}

func TestGenerateRoundPersistsRound(t *testing.T) {
	server, notif, ps, teardown := setupTestServer(t)
	defer teardown()

	seedPlayers(t, server.Store, 4)
	sess := seedSession(t, server.Store, 1)

	req := httptest.NewRequest(http.MethodGet, "/round/generate?sessionID="+sess.ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var round scheduler.Round
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&round))
	require.Len(t, round.Matches, 1)

	rounds, err := server.Store.GetRounds(sess.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 1)

	assert.Len(t, notif.SendRoundLineupCalls, 1)
	assert.Len(t, ps.SendMessageCalls, 1)
}

func TestGenerateRoundNotEnoughPlayers(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayers(t, server.Store, 2)
	sess := seedSession(t, server.Store, 1)

	req := httptest.NewRequest(http.MethodGet, "/round/generate?sessionID="+sess.ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateRoundDryRunDoesNotPersist(t *testing.T) {
	server, _, ps, teardown := setupTestServer(t)
	defer teardown()

	seedPlayers(t, server.Store, 4)
	sess := seedSession(t, server.Store, 1)

	req := httptest.NewRequest(http.MethodGet, "/round/generate?sessionID="+sess.ID+"&dry_run=true", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rounds, err := server.Store.GetRounds(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, rounds)
	assert.Empty(t, ps.SendMessageCalls)
}

func TestCompleteMatchFlow(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayers(t, server.Store, 4)
	sess := seedSession(t, server.Store, 1)

	req := httptest.NewRequest(http.MethodGet, "/round/generate?sessionID="+sess.ID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var round scheduler.Round
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&round))
	matchID := round.Matches[0].ID

	// A winner that contradicts the score is rejected.
	payload := fmt.Sprintf(`{"match_id":"%s","score_side1":2,"score_side2":6,"winner":"side1"}`, matchID)
	req = httptest.NewRequest(http.MethodPost, "/match/complete", strings.NewReader(payload))
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// A consistent result is accepted.
	payload = fmt.Sprintf(`{"match_id":"%s","score_side1":6,"score_side2":3,"winner":"side1"}`, matchID)
	req = httptest.NewRequest(http.MethodPost, "/match/complete", strings.NewReader(payload))
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var match scheduler.Match
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&match))
	assert.Equal(t, scheduler.StatusCompleted, match.Status)

	// Completing the same match twice conflicts.
	req = httptest.NewRequest(http.MethodPost, "/match/complete", strings.NewReader(payload))
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestMetricsSummaryHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	server.MetricsStore.Increment(metrics.KeyRoundsGenerated)

	req := httptest.NewRequest(http.MethodGet, "/metrics/summary", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&summary))
	assert.Equal(t, 1, summary[metrics.KeyRoundsGenerated])
}

func TestMatchCompletedEventHandler(t *testing.T) {
	server, notif, ps, teardown := setupTestServer(t)
	defer teardown()

	sess := seedSession(t, server.Store, 1)

	ps.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	event := pubsub.MatchCompletedEvent{SessionID: sess.ID, MatchID: "m1", Winner: "side1"}
	raw, err := msgpack.Marshal(event)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "sub",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(raw),
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events/match-completed", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Len(t, notif.SendStandingsCalls, 1)
}

func TestStandingsCommandHandler(t *testing.T) {
	server, notif, _, teardown := setupTestServer(t)
	defer teardown()

	sess := seedSession(t, server.Store, 1)

	notif.FormatStandingsResponseFunc = func(standings []club.Standing) (any, error) {
		return slack.NewBlockMessage(
			slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "Standings", false, false)),
		), nil
	}

	form := url.Values{"text": {sess.ID}}
	req := httptest.NewRequest(http.MethodPost, "/slack/command/standings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var msg slack.Message
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&msg))
}

func TestStandingsCommandHandlerMissingText(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest(http.MethodPost, "/slack/command/standings", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
