package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RoundsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_rounds_generated_total",
			Help: "The total number of rounds generated.",
		}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_matches_created_total",
			Help: "The total number of matches created across all rounds.",
		}),
		FairnessSwaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_fairness_swaps_total",
			Help: "The total number of post-pairing fairness swaps applied.",
		}),
		CompletionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_match_completions_rejected_total",
			Help: "The total number of match completions rejected by validation.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smashboard_round_generation_duration_seconds",
			Help:    "The duration of individual round generations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smashboard_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smashboard_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RoundsGenerated,
		s.MatchesCreated,
		s.FairnessSwaps,
		s.CompletionsRejected,
		s.GenerationDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRoundsGenerated() {
	s.RoundsGenerated.Inc()
}

func (s *Service) IncMatchesCreated(n int) {
	s.MatchesCreated.Add(float64(n))
}

func (s *Service) IncFairnessSwaps(n int) {
	s.FairnessSwaps.Add(float64(n))
}

func (s *Service) IncCompletionsRejected() {
	s.CompletionsRejected.Inc()
}

func (s *Service) ObserveGenerationDuration(duration float64) {
	s.GenerationDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
