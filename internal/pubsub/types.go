package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRoundGenerated EventType = "round-generated"
	EventMatchCompleted EventType = "match-completed"
)

// RoundGeneratedEvent is published after a round has been persisted.
type RoundGeneratedEvent struct {
	SessionID  string `msgpack:"session_id"`
	RoundIndex int    `msgpack:"round_index"`
	Matches    int    `msgpack:"matches"`
	Sitting    int    `msgpack:"sitting"`
}

// MatchCompletedEvent is published after a match result has been recorded.
type MatchCompletedEvent struct {
	SessionID  string `msgpack:"session_id"`
	MatchID    string `msgpack:"match_id"`
	Winner     string `msgpack:"winner"`
	ScoreSide1 int    `msgpack:"score_side1"`
	ScoreSide2 int    `msgpack:"score_side2"`
	KingCourt  bool   `msgpack:"king_court"`
}
