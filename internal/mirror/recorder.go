package mirror

import (
	"context"
	"time"
)

// Outcome actions recorded per processed event
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionSuppressed = "suppressed"
	ActionDeleted    = "deleted"
	ActionDropped    = "dropped"
)

// Outcome describes the result of processing one source transaction event
type Outcome struct {
	SourceID   string
	Action     string
	Detail     string
	Amount     string
	OccurredAt time.Time
}

// Recorder persists processing outcomes. Recording is best-effort and must
// never fail the event being processed.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome)
}

// NopRecorder discards all outcomes
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(context.Context, Outcome) {}
