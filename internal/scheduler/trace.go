package scheduler

import "github.com/charmbracelet/log"

// DecisionFairnessSwap is the message the engine emits for every
// post-pairing fairness swap. Callers that count swaps match on this
// constant rather than the wording.
const DecisionFairnessSwap = "fairness swap"

// TraceSink receives operator-facing decision lines from the engine. It is a
// diagnostic surface, not a machine-readable contract; tests inject a
// capturing sink to assert on decisions without parsing log output.
type TraceSink interface {
	Decision(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// LogSink routes decisions to the global structured logger.
type LogSink struct{}

func (LogSink) Decision(msg string, keyvals ...any) {
	log.Debug(msg, keyvals...)
}

func (LogSink) Warn(msg string, keyvals ...any) {
	log.Warn(msg, keyvals...)
}

// CaptureSink records every decision for inspection in tests.
type CaptureSink struct {
	Decisions []TraceLine
	Warnings  []TraceLine
}

// TraceLine is a single recorded decision.
type TraceLine struct {
	Msg     string
	Keyvals []any
}

func (c *CaptureSink) Decision(msg string, keyvals ...any) {
	c.Decisions = append(c.Decisions, TraceLine{Msg: msg, Keyvals: keyvals})
}

func (c *CaptureSink) Warn(msg string, keyvals ...any) {
	c.Warnings = append(c.Warnings, TraceLine{Msg: msg, Keyvals: keyvals})
}
