package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Playtomic     PlaytomicConfig
	Scheduler     SchedulerConfig
	ProjectID     string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type PlaytomicConfig struct {
	TenantID string
}

// SchedulerConfig carries the session defaults used when a session is
// started without explicit overrides.
type SchedulerConfig struct {
	Courts          int
	RestInterval    int
	SkillSeparation bool
	PreferMixed     bool
}
