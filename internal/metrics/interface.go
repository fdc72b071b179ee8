package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRoundsGenerated()
	IncMatchesCreated(n int)
	IncFairnessSwaps(n int)
	IncCompletionsRejected()
	ObserveGenerationDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists durable counters that survive restarts,
// independently of the Prometheus registry.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
