package mirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/baely/mirror/internal/firefly"
	"github.com/baely/mirror/internal/mirror"
	"github.com/baely/mirror/internal/up"
)

func testAccounts(t *testing.T) *mirror.AccountMap {
	t.Helper()
	m, err := mirror.ParseAccountMap("up-spend:1,up-save:2")
	if err != nil {
		t.Fatalf("failed to parse account map: %v", err)
	}
	return m
}

func testClassifier(t *testing.T) *mirror.Classifier {
	t.Helper()
	lister := &fakeLister{
		categories: []up.CategoryResource{category("booze", "Booze")},
	}
	logger := discardLogger()
	return mirror.NewClassifier(testAccounts(t), mirror.NewCategoryResolver(lister, logger), logger)
}

// testTx builds a HELD transaction on the given account
func testTx(id, account, description, value string, cents int64) up.TransactionResource {
	tx := up.TransactionResource{
		Type: "transactions",
		ID:   id,
		Attributes: up.TransactionAttributes{
			Status:      up.StatusHeld,
			Description: description,
			Amount: up.Amount{
				CurrencyCode:     "AUD",
				Value:            value,
				ValueInBaseUnits: cents,
			},
			CreatedAt: "2023-05-01T10:00:00+10:00",
		},
	}
	tx.Relationships.Account.Data = &up.RelationshipData{Type: "accounts", ID: account}
	return tx
}

func TestClassify_Withdrawal(t *testing.T) {
	c := testClassifier(t)

	split, err := c.Classify(context.Background(), testTx("tx-1", "up-spend", "Coffee Shop", "-4.50", -450))
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.Type != firefly.TypeWithdrawal {
		t.Errorf("expected withdrawal, got %s", split.Type)
	}
	if split.SourceID != "1" || split.DestinationID != "" {
		t.Errorf("expected source account 1 and no destination account, got %q/%q", split.SourceID, split.DestinationID)
	}
	if split.DestinationName != "Coffee Shop" {
		t.Errorf("expected destination name from description, got %q", split.DestinationName)
	}
	if split.Amount != "4.50" {
		t.Errorf("expected non-negative amount 4.50, got %s", split.Amount)
	}
	if split.ExternalID != "tx-1" {
		t.Errorf("expected external ID tx-1, got %s", split.ExternalID)
	}
	if split.Date != "2023-05-01" {
		t.Errorf("expected date-only creation date, got %s", split.Date)
	}
	if split.ProcessDate != "" {
		t.Errorf("expected no process date for HELD transaction, got %s", split.ProcessDate)
	}
}

func TestClassify_WithdrawalUsesCategoryName(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-2", "up-spend", "Bottle Shop", "-20.00", -2000)
	tx.Relationships.Category.Data = &up.RelationshipData{Type: "categories", ID: "booze"}

	split, err := c.Classify(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.DestinationName != "Booze" {
		t.Errorf("expected resolved category as destination name, got %q", split.DestinationName)
	}
	if split.CategoryName != "Booze" {
		t.Errorf("expected category name Booze, got %q", split.CategoryName)
	}
}

func TestClassify_Deposit(t *testing.T) {
	c := testClassifier(t)

	split, err := c.Classify(context.Background(), testTx("tx-3", "up-spend", "Salary", "2500.00", 250000))
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.Type != firefly.TypeDeposit {
		t.Errorf("expected deposit, got %s", split.Type)
	}
	if split.DestinationID != "1" || split.SourceID != "" {
		t.Errorf("expected destination account 1 and no source account, got %q/%q", split.DestinationID, split.SourceID)
	}
	if split.SourceName != "Salary" {
		t.Errorf("expected source name from description, got %q", split.SourceName)
	}
}

func TestClassify_TransferOutgoingLeg(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-4", "up-spend", "Transfer to Savings", "-100.00", -10000)
	tx.Relationships.TransferAccount.Data = &up.RelationshipData{Type: "accounts", ID: "up-save"}

	split, err := c.Classify(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.Type != firefly.TypeTransfer {
		t.Errorf("expected transfer, got %s", split.Type)
	}
	if split.SourceID != "1" || split.DestinationID != "2" {
		t.Errorf("expected account references 1 -> 2, got %q -> %q", split.SourceID, split.DestinationID)
	}
	if split.SourceName != "" || split.DestinationName != "" {
		t.Error("transfer legs must both be account references, not names")
	}
}

func TestClassify_TransferIncomingLegSuppressed(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-5", "up-save", "Transfer from Spending", "100.00", 10000)
	tx.Relationships.TransferAccount.Data = &up.RelationshipData{Type: "accounts", ID: "up-spend"}

	_, err := c.Classify(context.Background(), tx)
	if !errors.Is(err, mirror.ErrSuppressed) {
		t.Errorf("expected incoming leg suppressed, got %v", err)
	}
}

func TestClassify_TransferLegDedup(t *testing.T) {
	// The two legs of one transfer collapse to a single destination record.
	c := testClassifier(t)

	outgoing := testTx("tx-out", "up-spend", "Transfer to Savings", "-100.00", -10000)
	outgoing.Relationships.TransferAccount.Data = &up.RelationshipData{Type: "accounts", ID: "up-save"}
	incoming := testTx("tx-in", "up-save", "Transfer from Spending", "100.00", 10000)
	incoming.Relationships.TransferAccount.Data = &up.RelationshipData{Type: "accounts", ID: "up-spend"}

	mirrored := 0
	for _, tx := range []up.TransactionResource{outgoing, incoming} {
		split, err := c.Classify(context.Background(), tx)
		if errors.Is(err, mirror.ErrSuppressed) {
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if split.Type != firefly.TypeTransfer {
			t.Errorf("expected transfer, got %s", split.Type)
		}
		mirrored++
	}

	if mirrored != 1 {
		t.Errorf("expected exactly one mirrored leg, got %d", mirrored)
	}
}

func TestClassify_TransferUnknownCounterparty(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-6", "up-spend", "Transfer", "-50.00", -5000)
	tx.Relationships.TransferAccount.Data = &up.RelationshipData{Type: "accounts", ID: "up-unmapped"}

	_, err := c.Classify(context.Background(), tx)
	if !errors.Is(err, mirror.ErrUnknownAccount) {
		t.Errorf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestClassify_RoundUpSynthesis(t *testing.T) {
	c := testClassifier(t)

	split, err := c.Classify(context.Background(), testTx("tx-7", "up-save", "Round Up", "0.54", 54))
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.Type != firefly.TypeTransfer {
		t.Errorf("expected synthesized transfer, got %s", split.Type)
	}
	if split.SourceID != "1" {
		t.Errorf("expected source to be the primary account reference, got %q", split.SourceID)
	}
	if split.DestinationID != "2" {
		t.Errorf("expected destination to be the focus account reference, got %q", split.DestinationID)
	}
	if split.CategoryName != "Savings" {
		t.Errorf("expected category Savings, got %q", split.CategoryName)
	}
	if len(split.Tags) != 0 {
		t.Errorf("expected no description tag for savings events, got %v", split.Tags)
	}
}

func TestClassify_QuickSaveLegs(t *testing.T) {
	c := testClassifier(t)

	// Outgoing leg is suppressed; the inbound leg is mirrored as the transfer.
	out := testTx("tx-8", "up-spend", "Quick save transfer to Savings", "-25.00", -2500)
	if _, err := c.Classify(context.Background(), out); !errors.Is(err, mirror.ErrSuppressed) {
		t.Errorf("expected outgoing quick save suppressed, got %v", err)
	}

	in := testTx("tx-9", "up-save", "Quick save transfer from Spending", "25.00", 2500)
	split, err := c.Classify(context.Background(), in)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}
	if split.Type != firefly.TypeTransfer {
		t.Errorf("expected transfer, got %s", split.Type)
	}
	if split.SourceID != "1" || split.DestinationID != "2" {
		t.Errorf("expected primary -> focus references, got %q -> %q", split.SourceID, split.DestinationID)
	}
	if split.CategoryName != "Savings" {
		t.Errorf("expected category Savings, got %q", split.CategoryName)
	}
}

func TestClassify_Interest(t *testing.T) {
	c := testClassifier(t)

	split, err := c.Classify(context.Background(), testTx("tx-10", "up-save", "Interest", "1.23", 123))
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.Type != firefly.TypeDeposit {
		t.Errorf("expected deposit, got %s", split.Type)
	}
	if split.CategoryName != "Interest" {
		t.Errorf("expected category Interest, got %q", split.CategoryName)
	}
	if len(split.Tags) != 0 {
		t.Errorf("expected no description tag for interest events, got %v", split.Tags)
	}
}

func TestClassify_UnknownAccount(t *testing.T) {
	c := testClassifier(t)

	_, err := c.Classify(context.Background(), testTx("tx-11", "up-unmapped", "Coffee", "-4.50", -450))
	if !errors.Is(err, mirror.ErrUnknownAccount) {
		t.Errorf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestClassify_FullCashbackSuppressed(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-12", "up-spend", "Rewards purchase", "-5.00", -500)
	tx.Attributes.Cashback = &up.Cashback{
		Description: "Full cashback",
		Amount:      up.Amount{CurrencyCode: "AUD", Value: "5.00", ValueInBaseUnits: 500},
	}

	_, err := c.Classify(context.Background(), tx)
	if !errors.Is(err, mirror.ErrSuppressed) {
		t.Errorf("expected ErrSuppressed, got %v", err)
	}
}

func TestClassify_AmountMismatch(t *testing.T) {
	c := testClassifier(t)

	_, err := c.Classify(context.Background(), testTx("tx-13", "up-spend", "Coffee", "-4.50", -451))
	if !errors.Is(err, mirror.ErrAmountMismatch) {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}
}

func TestClassify_TagsAndNotes(t *testing.T) {
	c := testClassifier(t)

	message := "Pizza night"
	rawText := "VISA-4321 PIZZA PLACE"
	tx := testTx("tx-14", "up-spend", "Pizza Place", "-30.00", -3000)
	tx.Attributes.Message = &message
	tx.Attributes.RawText = &rawText
	tx.Relationships.Tags.Data = []up.RelationshipData{
		{Type: "tags", ID: "dinner"},
		{Type: "tags", ID: "shared"},
	}

	split, err := c.Classify(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	want := []string{"Pizza Place", "dinner", "shared"}
	if len(split.Tags) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, split.Tags)
	}
	for i := range want {
		if split.Tags[i] != want[i] {
			t.Errorf("expected tag %q at position %d, got %q", want[i], i, split.Tags[i])
		}
	}

	if split.Notes != "Pizza night\nVISA-4321 PIZZA PLACE" {
		t.Errorf("expected joined notes, got %q", split.Notes)
	}
}

func TestClassify_NoNotesWhenBothEmpty(t *testing.T) {
	c := testClassifier(t)

	split, err := c.Classify(context.Background(), testTx("tx-15", "up-spend", "Coffee", "-4.50", -450))
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}
	if split.Notes != "" {
		t.Errorf("expected empty notes, got %q", split.Notes)
	}
}

func TestClassify_ForeignAmount(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-16", "up-spend", "Overseas Shop", "-15.00", -1500)
	tx.Attributes.ForeignAmount = &up.Amount{CurrencyCode: "USD", Value: "-10.00", ValueInBaseUnits: -1000}

	split, err := c.Classify(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}

	if split.ForeignAmount != "10.00" {
		t.Errorf("expected absolute foreign amount 10.00, got %s", split.ForeignAmount)
	}
	if split.ForeignCurrencyCode != "USD" {
		t.Errorf("expected foreign currency USD, got %s", split.ForeignCurrencyCode)
	}
}

func TestClassify_ForeignAmountMismatchFatal(t *testing.T) {
	c := testClassifier(t)

	tx := testTx("tx-17", "up-spend", "Overseas Shop", "-15.00", -1500)
	tx.Attributes.ForeignAmount = &up.Amount{CurrencyCode: "USD", Value: "-10.00", ValueInBaseUnits: -999}

	_, err := c.Classify(context.Background(), tx)
	if !errors.Is(err, mirror.ErrAmountMismatch) {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}
}

func TestClassify_SettledSetsProcessDate(t *testing.T) {
	c := testClassifier(t)

	settledAt := "2023-05-03T09:30:00+10:00"
	tx := testTx("tx-18", "up-spend", "Coffee", "-4.50", -450)
	tx.Attributes.Status = up.StatusSettled
	tx.Attributes.SettledAt = &settledAt

	split, err := c.Classify(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}
	if split.ProcessDate != "2023-05-03" {
		t.Errorf("expected date-only process date, got %s", split.ProcessDate)
	}
}

func TestClassifyUpdate_RefreshesAmountsOnly(t *testing.T) {
	c := testClassifier(t)

	settledAt := "2023-05-03T09:30:00+10:00"
	tx := testTx("tx-19", "up-spend", "Coffee", "-4.55", -455)
	tx.Attributes.Status = up.StatusSettled
	tx.Attributes.SettledAt = &settledAt
	tx.Attributes.ForeignAmount = &up.Amount{CurrencyCode: "USD", Value: "-3.00", ValueInBaseUnits: -300}

	split, err := c.ClassifyUpdate(tx)
	if err != nil {
		t.Fatalf("expected update split, got %v", err)
	}

	if split.Amount != "4.55" {
		t.Errorf("expected amount 4.55, got %s", split.Amount)
	}
	if split.ForeignAmount != "3.00" {
		t.Errorf("expected foreign amount 3.00, got %s", split.ForeignAmount)
	}
	if split.ProcessDate != "2023-05-03" {
		t.Errorf("expected process date 2023-05-03, got %s", split.ProcessDate)
	}

	// Descriptive fields stay untouched so manual ledger edits survive.
	if split.Description != "" || split.CategoryName != "" || len(split.Tags) != 0 || split.Notes != "" {
		t.Error("expected descriptive fields to be left unset on update")
	}
	if split.Type != "" || split.SourceID != "" || split.DestinationID != "" {
		t.Error("expected shape fields to be left unset on update")
	}
}
