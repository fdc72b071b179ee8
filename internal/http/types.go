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

type Server struct {
	Store          club.ClubStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	MetricsStore   metrics.MetricsStore
	Cfg            config.Config
	Importer       *playtomic.Importer
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
