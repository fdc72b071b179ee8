package club

import (
	"sync"

	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc      func(playerID, name string, rating float64, gender scheduler.Gender)
	UpsertPlayersFunc  func(players []PlayerInfo) error
	GetAllPlayersFunc  func() ([]PlayerInfo, error)
	GetPlayersFunc     func(playerIDs []string) ([]PlayerInfo, error)
	SetPresenceFunc    func(playerID string, present bool) error
	IsKnownPlayerFunc  func(playerID string) bool
	UpsertTeamsFunc    func(sessionID string, teams []scheduler.Team) error
	GetTeamsFunc       func(sessionID string) ([]scheduler.Team, error)
	CreateSessionFunc  func(session *Session) error
	GetSessionFunc     func(sessionID string) (*Session, error)
	SaveRoundFunc      func(sessionID string, round *scheduler.Round, stats scheduler.Stats) error
	GetRoundsFunc      func(sessionID string) ([]scheduler.Round, error)
	GetMatchFunc       func(matchID string) (*scheduler.Match, string, error)
	UpdateMatchFunc    func(sessionID string, match *scheduler.Match, stats scheduler.Stats) error
	GetStatsFunc       func(sessionID string) (scheduler.Stats, error)
	GetStandingsFunc   func(sessionID string) ([]Standing, error)
	ClearFunc          func()

	// Call records
	UpsertPlayersCalls [][]PlayerInfo
	SetPresenceCalls   []struct {
		PlayerID string
		Present  bool
	}
	SaveRoundCalls []struct {
		SessionID string
		Round     *scheduler.Round
		Stats     scheduler.Stats
	}
	UpdateMatchCalls []struct {
		SessionID string
		Match     *scheduler.Match
		Stats     scheduler.Stats
	}
	CreateSessionCalls []*Session
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = nil
	m.SetPresenceCalls = nil
	m.SaveRoundCalls = nil
	m.UpdateMatchCalls = nil
	m.CreateSessionCalls = nil
}

func (m *MockStore) AddPlayer(playerID, name string, rating float64, gender scheduler.Gender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name, rating, gender)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) SetPresence(playerID string, present bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetPresenceCalls = append(m.SetPresenceCalls, struct {
		PlayerID string
		Present  bool
	}{playerID, present})
	if m.SetPresenceFunc != nil {
		return m.SetPresenceFunc(playerID, present)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) UpsertTeams(sessionID string, teams []scheduler.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertTeamsFunc != nil {
		return m.UpsertTeamsFunc(sessionID, teams)
	}
	return nil
}

func (m *MockStore) GetTeams(sessionID string) ([]scheduler.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTeamsFunc != nil {
		return m.GetTeamsFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) CreateSession(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateSessionCalls = append(m.CreateSessionCalls, session)
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(session)
	}
	return nil
}

func (m *MockStore) GetSession(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) SaveRound(sessionID string, round *scheduler.Round, stats scheduler.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRoundCalls = append(m.SaveRoundCalls, struct {
		SessionID string
		Round     *scheduler.Round
		Stats     scheduler.Stats
	}{sessionID, round, stats})
	if m.SaveRoundFunc != nil {
		return m.SaveRoundFunc(sessionID, round, stats)
	}
	return nil
}

func (m *MockStore) GetRounds(sessionID string) ([]scheduler.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRoundsFunc != nil {
		return m.GetRoundsFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) GetMatch(matchID string) (*scheduler.Match, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, "", nil
}

func (m *MockStore) UpdateMatch(sessionID string, match *scheduler.Match, stats scheduler.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateMatchCalls = append(m.UpdateMatchCalls, struct {
		SessionID string
		Match     *scheduler.Match
		Stats     scheduler.Stats
	}{sessionID, match, stats})
	if m.UpdateMatchFunc != nil {
		return m.UpdateMatchFunc(sessionID, match, stats)
	}
	return nil
}

func (m *MockStore) GetStats(sessionID string) (scheduler.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(sessionID)
	}
	return scheduler.Stats{}, nil
}

func (m *MockStore) GetStandings(sessionID string) ([]Standing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStandingsFunc != nil {
		return m.GetStandingsFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
