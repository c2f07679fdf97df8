package mirror

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baely/mirror/internal/up"
)

// Engine mirrors Up transactions into Firefly III, exactly once per source
// transaction ID. It is safe to invoke concurrently, once per inbound event,
// with no ordering guarantee between events. Events for the same source ID
// are not mutually excluded: a correlation lookup racing another in-flight
// create for the same ID can produce duplicate destination records. This is
// an accepted limitation.
//
// Per-transaction failures (unknown account, amount mismatch) are logged and
// dropped; only upstream failures, which redelivery can fix, are returned to
// the caller.
type Engine struct {
	classifier *Classifier
	correlator *Correlator
	upserter   *Upserter
	recorder   Recorder
	metrics    *Metrics
	logger     *slog.Logger
}

// EngineConfig contains the collaborators of an Engine
type EngineConfig struct {
	Accounts *AccountMap
	Lister   CategoryLister
	Searcher Searcher
	Ledger   LedgerWriter
	Recorder Recorder
	Metrics  *Metrics
	Logger   *slog.Logger
}

// NewEngine creates an Engine from its collaborators
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Engine{
		classifier: NewClassifier(cfg.Accounts, NewCategoryResolver(cfg.Lister, logger), logger),
		correlator: NewCorrelator(cfg.Searcher, logger),
		upserter:   NewUpserter(cfg.Ledger, logger),
		recorder:   recorder,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// HandleCreated processes a HELD (or initial) delivery: create if absent.
func (e *Engine) HandleCreated(ctx context.Context, tx up.TransactionResource) error {
	correlation, err := e.correlator.Find(ctx, tx.ID)
	if err != nil {
		e.metrics.Failure("upstream")
		return err
	}
	if correlation != nil {
		e.logger.Info("Transaction already mirrored", "id", tx.ID, "transaction", correlation.TransactionID)
		return nil
	}

	return e.create(ctx, tx)
}

// HandleSettled processes a SETTLED delivery: create if absent, else refresh
// the existing record in place.
func (e *Engine) HandleSettled(ctx context.Context, tx up.TransactionResource) error {
	correlation, err := e.correlator.Find(ctx, tx.ID)
	if err != nil {
		e.metrics.Failure("upstream")
		return err
	}
	if correlation == nil {
		// Settlement arrived before, or instead of, the create event.
		return e.create(ctx, tx)
	}

	split, err := e.classifier.ClassifyUpdate(tx)
	if err != nil {
		return e.dispose(ctx, tx.ID, err)
	}

	if err := e.upserter.Upsert(ctx, split, correlation); err != nil {
		e.metrics.Failure("destination")
		return err
	}

	e.metrics.Mirrored(string(split.Type), "updated")
	e.record(ctx, Outcome{
		SourceID: tx.ID,
		Action:   ActionUpdated,
		Amount:   split.Amount,
	})
	return nil
}

// HandleDeleted processes a delete delivery. Deleting a transaction that was
// never mirrored is a non-fatal no-op.
func (e *Engine) HandleDeleted(ctx context.Context, sourceID string) error {
	correlation, err := e.correlator.Find(ctx, sourceID)
	if err != nil {
		e.metrics.Failure("upstream")
		return err
	}
	if correlation == nil {
		e.logger.Warn("No mirrored transaction to delete", "id", sourceID)
		return nil
	}

	if err := e.upserter.Delete(ctx, correlation); err != nil {
		e.metrics.Failure("destination")
		return err
	}

	e.record(ctx, Outcome{
		SourceID: sourceID,
		Action:   ActionDeleted,
	})
	return nil
}

// create classifies and writes a transaction that has no mirrored record yet
func (e *Engine) create(ctx context.Context, tx up.TransactionResource) error {
	split, err := e.classifier.Classify(ctx, tx)
	if err != nil {
		return e.dispose(ctx, tx.ID, err)
	}

	if err := e.upserter.Upsert(ctx, split, nil); err != nil {
		e.metrics.Failure("destination")
		return err
	}

	e.metrics.Mirrored(string(split.Type), "created")
	e.record(ctx, Outcome{
		SourceID: tx.ID,
		Action:   ActionCreated,
		Detail:   string(split.Type),
		Amount:   split.Amount,
	})
	return nil
}

// dispose settles the fate of a classification error. Suppression and
// per-transaction failures end here with a log line: redelivering the same
// event would fail the same way, so neither is surfaced to the caller.
func (e *Engine) dispose(ctx context.Context, sourceID string, err error) error {
	switch {
	case errors.Is(err, ErrSuppressed):
		e.logger.Info("Transaction suppressed", "id", sourceID, "reason", err)
		e.metrics.Suppressed(reasonOf(err))
		e.record(ctx, Outcome{SourceID: sourceID, Action: ActionSuppressed, Detail: err.Error()})
		return nil

	case errors.Is(err, ErrUnknownAccount):
		e.logger.Error("Transaction cannot be mapped", "id", sourceID, "error", err)
		e.metrics.Failure("unknown_account")
		e.record(ctx, Outcome{SourceID: sourceID, Action: ActionDropped, Detail: err.Error()})
		return nil

	case errors.Is(err, ErrAmountMismatch):
		e.logger.Error("Transaction amounts disagree", "id", sourceID, "error", err)
		e.metrics.Failure("amount_mismatch")
		e.record(ctx, Outcome{SourceID: sourceID, Action: ActionDropped, Detail: err.Error()})
		return nil
	}

	e.metrics.Failure("internal")
	return err
}

func (e *Engine) record(ctx context.Context, outcome Outcome) {
	outcome.OccurredAt = time.Now().UTC()
	e.recorder.Record(ctx, outcome)
}

// reasonOf extracts the short suppression reason from a wrapped sentinel
func reasonOf(err error) string {
	_, reason, ok := strings.Cut(err.Error(), ": ")
	if !ok {
		return "suppressed"
	}
	return reason
}
