package mirror

import (
	"context"
	"log/slog"

	"github.com/baely/mirror/internal/firefly"
)

// LedgerWriter issues write calls against the destination ledger
type LedgerWriter interface {
	CreateTransaction(ctx context.Context, payload firefly.TransactionPayload) error
	UpdateTransaction(ctx context.Context, transactionID string, payload firefly.TransactionPayload) error
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// Upserter builds destination payloads and issues create-or-update calls.
// It performs no internal retry: a failed call is surfaced to the caller,
// who owns redelivery, and idempotency comes from correlating before
// writing rather than from retrying.
type Upserter struct {
	ledger LedgerWriter
	logger *slog.Logger
}

// NewUpserter creates an Upserter over the given ledger writer
func NewUpserter(ledger LedgerWriter, logger *slog.Logger) *Upserter {
	return &Upserter{
		ledger: ledger,
		logger: logger,
	}
}

// Upsert creates the split as a new transaction when no correlation exists,
// or updates the correlated transaction in place. Updates carry the
// discovered journal ID so they target the first split of the destination
// transaction.
func (u *Upserter) Upsert(ctx context.Context, split *firefly.TransactionSplit, correlation *Correlation) error {
	if correlation == nil {
		payload := firefly.TransactionPayload{
			ErrorIfDuplicateHash: true,
			Transactions:         []firefly.TransactionSplit{*split},
		}
		if err := u.ledger.CreateTransaction(ctx, payload); err != nil {
			return err
		}
		u.logger.Info("Created transaction", "external_id", split.ExternalID, "type", split.Type)
		return nil
	}

	update := *split
	update.TransactionJournalID = correlation.JournalID
	payload := firefly.TransactionPayload{
		Transactions: []firefly.TransactionSplit{update},
	}
	if err := u.ledger.UpdateTransaction(ctx, correlation.TransactionID, payload); err != nil {
		return err
	}
	u.logger.Info("Updated transaction",
		"transaction", correlation.TransactionID, "journal", correlation.JournalID)
	return nil
}

// Delete removes the correlated transaction from the destination ledger
func (u *Upserter) Delete(ctx context.Context, correlation *Correlation) error {
	if err := u.ledger.DeleteTransaction(ctx, correlation.TransactionID); err != nil {
		return err
	}
	u.logger.Info("Deleted transaction", "transaction", correlation.TransactionID)
	return nil
}
