package mirror

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/baely/mirror/internal/up"
)

// baseUnitExponent is the number of decimal places in a base unit amount.
// Up reports base units in cents.
const baseUnitExponent = 2

// ReconciledAmount is a validated monetary value
type ReconciledAmount struct {
	Value    string
	Currency string
	Signed   decimal.Decimal
}

// Negative reports whether the amount is an outgoing value
func (a ReconciledAmount) Negative() bool {
	return a.Signed.IsNegative()
}

// AbsString returns the non-negative magnitude as a decimal string
func (a ReconciledAmount) AbsString() string {
	return a.Signed.Abs().StringFixed(baseUnitExponent)
}

// Reconcile validates that the two independently serialized representations
// of an Up amount agree and returns the common value. Disagreement means an
// upstream serialization bug would otherwise corrupt ledger entries, so it
// is fatal for the transaction.
func Reconcile(amount up.Amount) (ReconciledAmount, error) {
	value, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return ReconciledAmount{}, fmt.Errorf("%w: unparseable value %q", ErrAmountMismatch, amount.Value)
	}

	if !value.Shift(baseUnitExponent).Equal(decimal.NewFromInt(amount.ValueInBaseUnits)) {
		return ReconciledAmount{}, fmt.Errorf("%w: value %q disagrees with %d base units",
			ErrAmountMismatch, amount.Value, amount.ValueInBaseUnits)
	}

	return ReconciledAmount{
		Value:    amount.Value,
		Currency: amount.CurrencyCode,
		Signed:   value,
	}, nil
}

// ReconcileWithCashback reconciles the primary amount and nets any cashback
// sub-amount into it. A transaction that nets to exactly zero is reported as
// ErrSuppressed: a full-cashback transaction is a no-op and must not be
// mirrored.
func ReconcileWithCashback(amount up.Amount, cashback *up.Cashback) (ReconciledAmount, error) {
	primary, err := Reconcile(amount)
	if err != nil {
		return ReconciledAmount{}, err
	}

	if cashback == nil {
		return primary, nil
	}

	back, err := Reconcile(cashback.Amount)
	if err != nil {
		return ReconciledAmount{}, err
	}

	net := primary.Signed.Add(back.Signed)
	if net.IsZero() {
		return ReconciledAmount{}, fmt.Errorf("%w: cashback nets transaction to zero", ErrSuppressed)
	}

	return ReconciledAmount{
		Value:    net.StringFixed(baseUnitExponent),
		Currency: primary.Currency,
		Signed:   net,
	}, nil
}
