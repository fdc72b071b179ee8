package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Playtomic: PlaytomicConfig{
			TenantID: getEnv("TENANT_ID"),
		},
		Scheduler: SchedulerConfig{
			Courts:          getEnvInt("DEFAULT_COURTS", 2),
			RestInterval:    getEnvInt("REST_INTERVAL", 8),
			SkillSeparation: getEnvBool("SKILL_SEPARATION", true),
			PreferMixed:     getEnvBool("PREFER_MIXED", false),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Invalid integer env var, using fallback", "key", key, "value", value, "fallback", fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("Invalid boolean env var, using fallback", "key", key, "value", value, "fallback", fallback)
		return fallback
	}
	return b
}
