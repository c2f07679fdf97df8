// Package up handles transaction events and webhooks for the Up banking service
package up

// Transaction statuses reported by the Up API
const (
	StatusHeld    = "HELD"
	StatusSettled = "SETTLED"
)

// Webhook event types
const (
	EventPing               = "PING"
	EventTransactionCreated = "TRANSACTION_CREATED"
	EventTransactionSettled = "TRANSACTION_SETTLED"
	EventTransactionDeleted = "TRANSACTION_DELETED"
)

// Amount is Up's dual representation of a monetary value: a decimal string
// and the same value in integer base units (cents), with a currency code.
type Amount struct {
	CurrencyCode     string `json:"currencyCode"`
	Value            string `json:"value"`
	ValueInBaseUnits int64  `json:"valueInBaseUnits"`
}

// Cashback is a compensating sub-amount attached to a transaction
type Cashback struct {
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
}

// TransactionAttributes contains the attributes of an Up transaction
type TransactionAttributes struct {
	Status        string    `json:"status"`
	RawText       *string   `json:"rawText"`
	Description   string    `json:"description"`
	Message       *string   `json:"message"`
	Amount        Amount    `json:"amount"`
	ForeignAmount *Amount   `json:"foreignAmount"`
	Cashback      *Cashback `json:"cashback"`
	CreatedAt     string    `json:"createdAt"`
	SettledAt     *string   `json:"settledAt"`
}

// RelationshipData identifies a related resource
type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship is a to-one resource relationship; Data is nil when absent
type Relationship struct {
	Data *RelationshipData `json:"data"`
}

// RelationshipList is a to-many resource relationship
type RelationshipList struct {
	Data []RelationshipData `json:"data"`
}

// TransactionRelationships contains the relationships of an Up transaction
type TransactionRelationships struct {
	Account         Relationship     `json:"account"`
	TransferAccount Relationship     `json:"transferAccount"`
	Category        Relationship     `json:"category"`
	Tags            RelationshipList `json:"tags"`
}

// TransactionResource represents an Up bank transaction
type TransactionResource struct {
	Type          string                   `json:"type"`
	ID            string                   `json:"id"`
	Attributes    TransactionAttributes    `json:"attributes"`
	Relationships TransactionRelationships `json:"relationships"`
}

// CategoryResource represents an Up spending category
type CategoryResource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

// GetTransactionResponse is the envelope for a single-transaction fetch
type GetTransactionResponse struct {
	Data TransactionResource `json:"data"`
}

// ListCategoriesResponse is the envelope for the full category listing
type ListCategoriesResponse struct {
	Data []CategoryResource `json:"data"`
}

// ListTransactionsResponse is the envelope for a paginated transaction listing
type ListTransactionsResponse struct {
	Data  []TransactionResource `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// WebhookEvent is the payload of a webhook delivery
type WebhookEvent struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		EventType string `json:"eventType"`
	} `json:"attributes"`
	Relationships struct {
		Transaction *Relationship `json:"transaction"`
	} `json:"relationships"`
}

// WebhookEventCallback is the envelope of a webhook delivery
type WebhookEventCallback struct {
	Data WebhookEvent `json:"data"`
}
