package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is a single entry in a triage run's audit trail.
type Event struct {
	ID      uuid.UUID              `json:"id"`
	TS      time.Time              `json:"ts"`
	Source  string                 `json:"source"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Log is an append-only audit sink owned by a single triage run. Every
// pipeline component receives it at construction and appends stage output
// to it; the full trail is embedded in the final plan. Entries are never
// mutated or removed after Append returns.
type Log struct {
	mu     sync.Mutex
	events []Event
	logger zerolog.Logger
}

// New returns an empty Log. Appended events are mirrored to logger at
// debug level so the audit trail also shows up in the process logs.
func New(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Append records an event. Safe for concurrent use.
func (l *Log) Append(source, message string, data map[string]interface{}) {
	e := Event{
		ID:      uuid.New(),
		TS:      time.Now().UTC(),
		Source:  source,
		Message: message,
		Data:    data,
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()

	l.logger.Debug().
		Str("source", source).
		Interface("data", data).
		Msg(message)
}

// Events returns a copy of the recorded events in append order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
