package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/baely/mirror/internal/firefly"
	"github.com/baely/mirror/internal/up"
)

// Descriptions Up attaches to savings-product artifacts. A quick-save pair
// and its matching round-up event are reported as independent transactions,
// not transfers, and need synthesizing into one.
const (
	descRoundUp       = "Round Up"
	descInterest      = "Interest"
	quickSaveToPrefix = "Quick save transfer to "
	quickSaveFromPrefix = "Quick save transfer from "
)

// Forced category names for synthesized events
const (
	categorySavings  = "Savings"
	categoryInterest = "Interest"
)

// Classifier maps an Up transaction and its account roles onto a Firefly III
// transaction shape.
type Classifier struct {
	accounts   *AccountMap
	categories *CategoryResolver
	logger     *slog.Logger
}

// NewClassifier creates a Classifier over the given account map and
// category resolver
func NewClassifier(accounts *AccountMap, categories *CategoryResolver, logger *slog.Logger) *Classifier {
	return &Classifier{
		accounts:   accounts,
		categories: categories,
		logger:     logger,
	}
}

// Classify builds the full destination split for a transaction being
// mirrored for the first time. It returns ErrSuppressed for events that must
// not be mirrored (the positive leg of a transfer, outgoing quick-save legs,
// full-cashback no-ops) and ErrUnknownAccount when an involved account has
// no mapping.
func (c *Classifier) Classify(ctx context.Context, tx up.TransactionResource) (*firefly.TransactionSplit, error) {
	focus := tx.Relationships.Account.Data
	if focus == nil {
		return nil, fmt.Errorf("%w: transaction %s has no owning account", ErrUnknownAccount, tx.ID)
	}
	focusID, ok := c.accounts.Lookup(focus.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, focus.ID)
	}

	amount, err := ReconcileWithCashback(tx.Attributes.Amount, tx.Attributes.Cashback)
	if err != nil {
		return nil, err
	}

	category := ""
	if rel := tx.Relationships.Category.Data; rel != nil {
		category = c.categories.Resolve(ctx, rel.ID)
	}

	split := &firefly.TransactionSplit{
		ExternalID:   tx.ID,
		Amount:       amount.AbsString(),
		CurrencyCode: amount.Currency,
		Description:  tx.Attributes.Description,
		Date:         NormalizeDate(tx.Attributes.CreatedAt),
	}
	if tx.Attributes.Status == up.StatusSettled && tx.Attributes.SettledAt != nil {
		split.ProcessDate = NormalizeDate(*tx.Attributes.SettledAt)
	}

	if err := c.classifyShape(tx, amount, &category, focusID, split); err != nil {
		return nil, err
	}

	split.CategoryName = category
	split.Tags = assembleTags(tx, category)
	split.Notes = assembleNotes(tx)

	if foreign := tx.Attributes.ForeignAmount; foreign != nil {
		reconciled, err := Reconcile(*foreign)
		if err != nil {
			return nil, err
		}
		split.ForeignAmount = reconciled.AbsString()
		split.ForeignCurrencyCode = reconciled.Currency
	}

	return split, nil
}

// classifyShape decides the transaction type and which side of the split is
// an account reference versus a free-text name. Transfers always reference
// two accounts; withdrawals and deposits reference exactly one.
func (c *Classifier) classifyShape(tx up.TransactionResource, amount ReconciledAmount, category *string, focusID int, split *firefly.TransactionSplit) error {
	description := tx.Attributes.Description

	// An internal transfer is reported once per leg. Only the negative
	// (outgoing) leg is mirrored; the incoming leg collapses into it.
	if transfer := tx.Relationships.TransferAccount.Data; transfer != nil {
		if !amount.Negative() {
			return fmt.Errorf("%w: incoming transfer leg", ErrSuppressed)
		}
		transferID, ok := c.accounts.Lookup(transfer.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, transfer.ID)
		}
		split.Type = firefly.TypeTransfer
		split.SourceID = strconv.Itoa(focusID)
		split.DestinationID = strconv.Itoa(transferID)
		return nil
	}

	switch {
	case amount.Negative() && strings.HasPrefix(description, quickSaveToPrefix):
		// The inbound leg of the quick save is mirrored as a transfer
		// against the primary account instead.
		return fmt.Errorf("%w: outgoing quick save leg", ErrSuppressed)

	case !amount.Negative() && (description == descRoundUp || strings.HasPrefix(description, quickSaveFromPrefix)):
		primaryID, ok := c.accounts.Lookup(c.accounts.Primary())
		if !ok {
			return fmt.Errorf("%w: primary account %s", ErrUnknownAccount, c.accounts.Primary())
		}
		split.Type = firefly.TypeTransfer
		split.SourceID = strconv.Itoa(primaryID)
		split.DestinationID = strconv.Itoa(focusID)
		*category = categorySavings
		return nil

	case !amount.Negative() && description == descInterest:
		*category = categoryInterest
	}

	counterparty := *category
	if counterparty == "" {
		counterparty = description
	}

	if amount.Negative() {
		split.Type = firefly.TypeWithdrawal
		split.SourceID = strconv.Itoa(focusID)
		split.DestinationName = counterparty
	} else {
		split.Type = firefly.TypeDeposit
		split.DestinationID = strconv.Itoa(focusID)
		split.SourceName = counterparty
	}
	return nil
}

// ClassifyUpdate builds the partial split used when settling an already
// mirrored transaction. Only the amount, foreign amount and settlement date
// are refreshed; descriptive fields are left as originally created so that
// manual edits made in Firefly between creation and settlement survive.
func (c *Classifier) ClassifyUpdate(tx up.TransactionResource) (*firefly.TransactionSplit, error) {
	amount, err := ReconcileWithCashback(tx.Attributes.Amount, tx.Attributes.Cashback)
	if err != nil {
		return nil, err
	}

	split := &firefly.TransactionSplit{
		Amount: amount.AbsString(),
	}
	if tx.Attributes.SettledAt != nil {
		split.ProcessDate = NormalizeDate(*tx.Attributes.SettledAt)
	}

	if foreign := tx.Attributes.ForeignAmount; foreign != nil {
		reconciled, err := Reconcile(*foreign)
		if err != nil {
			return nil, err
		}
		split.ForeignAmount = reconciled.AbsString()
		split.ForeignCurrencyCode = reconciled.Currency
	}

	return split, nil
}

// assembleTags turns the transaction description into a tag, unless the
// category marks a synthesized savings event, then appends the source tag
// IDs in their reported order.
func assembleTags(tx up.TransactionResource, category string) []string {
	var tags []string
	if category != categorySavings && category != categoryInterest {
		tags = append(tags, tx.Attributes.Description)
	}
	for _, tag := range tx.Relationships.Tags.Data {
		tags = append(tags, tag.ID)
	}
	return tags
}

// assembleNotes joins the message and raw text fields with a newline, in
// that order. Absent fields contribute nothing.
func assembleNotes(tx up.TransactionResource) string {
	var parts []string
	if tx.Attributes.Message != nil && *tx.Attributes.Message != "" {
		parts = append(parts, *tx.Attributes.Message)
	}
	if tx.Attributes.RawText != nil && *tx.Attributes.RawText != "" {
		parts = append(parts, *tx.Attributes.RawText)
	}
	return strings.Join(parts, "\n")
}
