package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KilvingtonDigital/SmashBoard/internal/scheduler"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"github.com/vmihailenco/msgpack/v5"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

type seedPlayer struct {
	ID     string
	Name   string
	Rating float64
	Gender scheduler.Gender
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	dummyPlayers := []seedPlayer{
		{ID: "player-1", Name: "Seeder Player A", Rating: 4.5, Gender: scheduler.GenderMale},
		{ID: "player-2", Name: "Seeder Player B", Rating: 4.0, Gender: scheduler.GenderFemale},
		{ID: "player-3", Name: "Seeder Player C", Rating: 3.5, Gender: scheduler.GenderMale},
		{ID: "player-4", Name: "Seeder Player D", Rating: 3.5, Gender: scheduler.GenderFemale},
		{ID: "player-5", Name: "Seeder Player E", Rating: 3.0, Gender: scheduler.GenderMale},
		{ID: "player-6", Name: "Seeder Player F", Rating: 2.5, Gender: scheduler.GenderFemale},
		{ID: "player-7", Name: "Seeder Player G", Rating: 2.5, Gender: scheduler.GenderMale},
		{ID: "player-8", Name: "Seeder Player H", Rating: 2.0, Gender: scheduler.GenderFemale},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, rating, gender, present) VALUES (?, ?, ?, ?, 1)",
			p.ID, p.Name, p.Rating, string(p.Gender))
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.", "count", len(dummyPlayers))

	// One empty session plus a batch of historical ones for load testing queries
	const batchSize = 100
	const numSessions = 1000

	emptyStats, _ := msgpack.Marshal(scheduler.Stats{})

	log.Info("Preparing to insert dummy sessions...", "total", numSessions, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*11)

	for i := 0; i < numSessions; i++ {
		created := time.Now().Add(-time.Duration(i) * 24 * time.Hour)

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			fmt.Sprintf("Seeded session %d", i+1),
			created.Unix(),
			2,
			string(scheduler.FormatDoubles),
			string(scheduler.TournamentOpenPlay),
			1, // skill_separation
			0, // prefer_mixed
			8, // rest_interval
			0, // round_count
			emptyStats,
		)

		if (i+1)%batchSize == 0 || (i+1) == numSessions {
			stmt := fmt.Sprintf(`
				INSERT INTO sessions (id, name, created_at, courts, match_format, tournament_format,
					skill_separation, prefer_mixed, rest_interval, round_count, stats_blob)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*11)
			log.Info("Inserted batch", "completed", i+1, "total", numSessions)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy sessions.", "duration", duration)
}
