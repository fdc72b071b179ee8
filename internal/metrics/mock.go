package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	roundsGenerated     int
	matchesCreated      int
	fairnessSwaps       int
	completionsRejected int
	generationDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		generationDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRoundsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsGenerated++
}

func (m *Mock) IncMatchesCreated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated += n
}

func (m *Mock) IncFairnessSwaps(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fairnessSwaps += n
}

func (m *Mock) IncCompletionsRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionsRejected++
}

func (m *Mock) ObserveGenerationDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationDurations = append(m.generationDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// RoundsGenerated returns the number of times IncRoundsGenerated was called.
func (m *Mock) RoundsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsGenerated
}

// MatchesCreated returns the running total passed to IncMatchesCreated.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// FairnessSwaps returns the running total passed to IncFairnessSwaps.
func (m *Mock) FairnessSwaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fairnessSwaps
}

// CompletionsRejected returns the number of times IncCompletionsRejected was called.
func (m *Mock) CompletionsRejected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completionsRejected
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
