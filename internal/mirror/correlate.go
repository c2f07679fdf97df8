package mirror

import (
	"context"
	"log/slog"

	"github.com/baely/mirror/internal/firefly"
)

// Searcher queries the destination ledger by correlation key
type Searcher interface {
	SearchByExternalID(ctx context.Context, externalID string) (firefly.SearchResponse, error)
}

// Correlation identifies an existing mirrored transaction and its first
// journal split.
type Correlation struct {
	TransactionID string
	JournalID     string
}

// Correlator finds the destination transaction already mirrored for a source
// transaction ID, if any.
type Correlator struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewCorrelator creates a Correlator backed by the given searcher
func NewCorrelator(searcher Searcher, logger *slog.Logger) *Correlator {
	return &Correlator{
		searcher: searcher,
		logger:   logger,
	}
}

// Find returns the correlation for a source transaction ID, or nil when the
// transaction has not been mirrored. Zero search results are the expected
// common case, not an error. Multiple results are a warning condition and
// the first (most recent) is used. A result missing expected fields is a
// malformed response: it is logged and treated as not found so the caller
// can proceed safely.
func (c *Correlator) Find(ctx context.Context, sourceID string) (*Correlation, error) {
	resp, err := c.searcher.SearchByExternalID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, nil
	}
	if len(resp.Data) > 1 {
		c.logger.Warn("Multiple transactions with the same external ID, using the first",
			"external_id", sourceID, "count", len(resp.Data))
	}

	result := resp.Data[0]
	if result.ID == "" {
		c.logger.Error("Search result missing transaction ID", "external_id", sourceID)
		return nil, nil
	}

	splits := result.Attributes.Transactions
	if len(splits) == 0 {
		c.logger.Error("Search result has no journal splits", "external_id", sourceID, "transaction", result.ID)
		return nil, nil
	}
	if len(splits) > 1 {
		// Multi-split transactions are out of scope; only the first split is
		// ever read or written.
		c.logger.Warn("Transaction has multiple journal splits, using the first",
			"external_id", sourceID, "transaction", result.ID, "splits", len(splits))
	}

	journalID := splits[0].TransactionJournalID
	if journalID == "" {
		c.logger.Error("Search result missing journal ID", "external_id", sourceID, "transaction", result.ID)
		return nil, nil
	}

	return &Correlation{
		TransactionID: result.ID,
		JournalID:     journalID,
	}, nil
}
