package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// Durable counter keys. These survive restarts, unlike the Prometheus
// registry, and back the metrics summary endpoint.
const (
	KeyRoundsGenerated  = "rounds_generated"
	KeyMatchesCompleted = "matches_completed"
)

// counterStore persists named counters in the metrics table.
type counterStore struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a MetricsStore backed by the given database.
func New(db *sql.DB) MetricsStore {
	return &counterStore{db: db}
}

// Increment bumps the counter for key by one, creating it at 1 if absent.
// Failures are logged rather than returned; a lost counter tick must not
// fail the round or completion that triggered it.
func (s *counterStore) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1;
	`, key)
	if err != nil {
		log.Error("Failed to increment counter", "error", err, "key", key)
		return
	}
	log.Debug("Incremented counter", "key", key)
}

// GetAll returns every persisted counter keyed by name.
func (s *counterStore) GetAll() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		counters[key] = value
	}
	return counters, rows.Err()
}
