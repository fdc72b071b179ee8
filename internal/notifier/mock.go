package notifier

import (
	"sync"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
)

// MockNotifier is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	// Spies for method calls
	SendRoundLineupFunc         func(session *club.Session, round *scheduler.Round, names map[string]string, sitting []string, dryRun bool) error
	SendMatchResultFunc         func(match *scheduler.Match, names map[string]string, dryRun bool) error
	SendStandingsFunc           func(standings []club.Standing, dryRun bool) error
	FormatStandingsResponseFunc func(standings []club.Standing) (any, error)

	// Call records
	SendRoundLineupCalls []struct {
		Session *club.Session
		Round   *scheduler.Round
		Sitting []string
		DryRun  bool
	}
	SendMatchResultCalls []struct {
		Match  *scheduler.Match
		DryRun bool
	}
	SendStandingsCalls []struct {
		Standings []club.Standing
		DryRun    bool
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

// Reset clears all call records.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRoundLineupCalls = nil
	m.SendMatchResultCalls = nil
	m.SendStandingsCalls = nil
}

func (m *MockNotifier) SendRoundLineup(session *club.Session, round *scheduler.Round, names map[string]string, sitting []string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRoundLineupCalls = append(m.SendRoundLineupCalls, struct {
		Session *club.Session
		Round   *scheduler.Round
		Sitting []string
		DryRun  bool
	}{session, round, sitting, dryRun})
	if m.SendRoundLineupFunc != nil {
		return m.SendRoundLineupFunc(session, round, names, sitting, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendMatchResult(match *scheduler.Match, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, struct {
		Match  *scheduler.Match
		DryRun bool
	}{match, dryRun})
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(match, names, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendStandings(standings []club.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, struct {
		Standings []club.Standing
		DryRun    bool
	}{standings, dryRun})
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(standings, dryRun)
	}
	return nil
}

func (m *MockNotifier) FormatStandingsResponse(standings []club.Standing) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatStandingsResponseFunc != nil {
		return m.FormatStandingsResponseFunc(standings)
	}
	return nil, nil
}
