// Package firefly handles API interactions with a Firefly III instance
package firefly

// TransactionType is the Firefly III transaction taxonomy
type TransactionType string

const (
	TypeTransfer   TransactionType = "transfer"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
)

// TransactionSplit is a single journal split within a Firefly III transaction.
// Source and destination are each either an account ID or a free-text name,
// never both.
type TransactionSplit struct {
	Type                 TransactionType `json:"type,omitempty"`
	Date                 string          `json:"date,omitempty"`
	Amount               string          `json:"amount"`
	Description          string          `json:"description,omitempty"`
	CurrencyCode         string          `json:"currency_code,omitempty"`
	SourceID             string          `json:"source_id,omitempty"`
	SourceName           string          `json:"source_name,omitempty"`
	DestinationID        string          `json:"destination_id,omitempty"`
	DestinationName      string          `json:"destination_name,omitempty"`
	CategoryName         string          `json:"category_name,omitempty"`
	Tags                 []string        `json:"tags,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	ExternalID           string          `json:"external_id,omitempty"`
	ForeignAmount        string          `json:"foreign_amount,omitempty"`
	ForeignCurrencyCode  string          `json:"foreign_currency_code,omitempty"`
	ProcessDate          string          `json:"process_date,omitempty"`
	TransactionJournalID string          `json:"transaction_journal_id,omitempty"`
}

// TransactionPayload is the array-of-splits envelope the Firefly III
// transaction endpoints expect. This engine only ever sends one split.
type TransactionPayload struct {
	ErrorIfDuplicateHash bool               `json:"error_if_duplicate_hash,omitempty"`
	ApplyRules           bool               `json:"apply_rules,omitempty"`
	Transactions         []TransactionSplit `json:"transactions"`
}

// SearchResult is one transaction returned by the search endpoint
type SearchResult struct {
	ID         string `json:"id"`
	Attributes struct {
		Transactions []struct {
			TransactionJournalID string `json:"transaction_journal_id"`
			ExternalID           string `json:"external_id"`
		} `json:"transactions"`
	} `json:"attributes"`
}

// SearchResponse is the envelope of the search endpoint, most recent first
type SearchResponse struct {
	Data []SearchResult `json:"data"`
}
