package mirror_test

import (
	"errors"
	"testing"

	"github.com/baely/mirror/internal/mirror"
	"github.com/baely/mirror/internal/up"
)

func TestReconcile(t *testing.T) {
	amount, err := mirror.Reconcile(up.Amount{
		CurrencyCode:     "AUD",
		Value:            "-12.34",
		ValueInBaseUnits: -1234,
	})
	if err != nil {
		t.Fatalf("expected agreement, got %v", err)
	}

	if amount.Value != "-12.34" {
		t.Errorf("expected value -12.34, got %s", amount.Value)
	}
	if amount.Currency != "AUD" {
		t.Errorf("expected currency AUD, got %s", amount.Currency)
	}
	if !amount.Negative() {
		t.Error("expected negative amount")
	}
	if got := amount.AbsString(); got != "12.34" {
		t.Errorf("expected absolute value 12.34, got %s", got)
	}
}

func TestReconcile_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		amount up.Amount
	}{
		{"disagreeing representations", up.Amount{CurrencyCode: "AUD", Value: "-12.34", ValueInBaseUnits: -1233}},
		{"unparseable value", up.Amount{CurrencyCode: "AUD", Value: "twelve", ValueInBaseUnits: -1234}},
		{"sign flip", up.Amount{CurrencyCode: "AUD", Value: "12.34", ValueInBaseUnits: -1234}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mirror.Reconcile(tt.amount)
			if !errors.Is(err, mirror.ErrAmountMismatch) {
				t.Errorf("expected ErrAmountMismatch, got %v", err)
			}
		})
	}
}

func TestReconcileWithCashback_Nets(t *testing.T) {
	amount, err := mirror.ReconcileWithCashback(
		up.Amount{CurrencyCode: "AUD", Value: "-5.00", ValueInBaseUnits: -500},
		&up.Cashback{
			Description: "Partial cashback",
			Amount:      up.Amount{CurrencyCode: "AUD", Value: "2.00", ValueInBaseUnits: 200},
		},
	)
	if err != nil {
		t.Fatalf("expected netted amount, got %v", err)
	}

	if amount.Value != "-3.00" {
		t.Errorf("expected netted value -3.00, got %s", amount.Value)
	}
	if got := amount.AbsString(); got != "3.00" {
		t.Errorf("expected absolute value 3.00, got %s", got)
	}
}

func TestReconcileWithCashback_FullCashbackSuppresses(t *testing.T) {
	_, err := mirror.ReconcileWithCashback(
		up.Amount{CurrencyCode: "AUD", Value: "-5.00", ValueInBaseUnits: -500},
		&up.Cashback{
			Description: "Full cashback",
			Amount:      up.Amount{CurrencyCode: "AUD", Value: "5.00", ValueInBaseUnits: 500},
		},
	)
	if !errors.Is(err, mirror.ErrSuppressed) {
		t.Errorf("expected ErrSuppressed, got %v", err)
	}
}

func TestReconcileWithCashback_NoCashback(t *testing.T) {
	amount, err := mirror.ReconcileWithCashback(
		up.Amount{CurrencyCode: "AUD", Value: "7.50", ValueInBaseUnits: 750},
		nil,
	)
	if err != nil {
		t.Fatalf("expected amount, got %v", err)
	}
	if amount.Value != "7.50" {
		t.Errorf("expected value 7.50, got %s", amount.Value)
	}
}

func TestReconcileWithCashback_CashbackMismatch(t *testing.T) {
	_, err := mirror.ReconcileWithCashback(
		up.Amount{CurrencyCode: "AUD", Value: "-5.00", ValueInBaseUnits: -500},
		&up.Cashback{
			Amount: up.Amount{CurrencyCode: "AUD", Value: "2.00", ValueInBaseUnits: 300},
		},
	)
	if !errors.Is(err, mirror.ErrAmountMismatch) {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}
}
