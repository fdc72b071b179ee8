package http

import (
	"net/http"

	"github.com/KilvingtonDigital/SmashBoard/internal/club"
	"github.com/KilvingtonDigital/SmashBoard/internal/config"
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/notifier"
	"github.com/KilvingtonDigital/SmashBoard/internal/playtomic"
	"github.com/KilvingtonDigital/SmashBoard/internal/processor"
	"github.com/KilvingtonDigital/SmashBoard/internal/pubsub"
)

func NewServer(store club.ClubStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, metricsStore metrics.MetricsStore, cfg config.Config, importer *playtomic.Importer, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		MetricsStore:   metricsStore,
		Cfg:            cfg,
		Importer:       importer,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/metrics/summary", Chain(s.MetricsSummaryHandler(), paramsMiddleware))
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.PlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/presence", Chain(s.PresenceHandler(), paramsMiddleware))
	s.Router.Handle("/players/import", Chain(s.ImportPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/session/start", Chain(s.StartSessionHandler(), paramsMiddleware))
	s.Router.Handle("/session/rounds", Chain(s.ListRoundsHandler(), paramsMiddleware))
	s.Router.Handle("/session/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("/round/generate", Chain(s.GenerateRoundHandler(), paramsMiddleware))
	s.Router.Handle("/match/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/standings", Chain(s.StandingsCommandHandler(), paramsMiddleware))
	s.Router.Handle("/events/match-completed", Chain(s.MatchCompletedEventHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
