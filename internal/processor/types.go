package processor

import (
	"github.com/KilvingtonDigital/SmashBoard/internal/metrics"
	"github.com/KilvingtonDigital/SmashBoard/internal/pubsub"
)

// Processor orchestrates the round lifecycle: it feeds the scheduling engine
// from the store, persists what comes back and fans out notifications.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
