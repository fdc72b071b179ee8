package metrics

import (
	"testing"

	"github.com/KilvingtonDigital/SmashBoard/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (MetricsStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := New(db)

	teardown := func() {
		dbTeardown()
		db.Close()
	}

	return store, teardown
}

func TestIncrementAndGetAll(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	// 1. Initially, there should be no metrics
	metrics, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, metrics)

	// 2. Increment a new key
	store.Increment(KeyRoundsGenerated)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"rounds_generated": 1}, metrics)

	// 3. Increment the same key again
	store.Increment(KeyRoundsGenerated)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"rounds_generated": 2}, metrics)

	// 4. Increment a different key
	store.Increment(KeyMatchesCompleted)
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"rounds_generated":  2,
		"matches_completed": 1,
	}, metrics)
}
