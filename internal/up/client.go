package up

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/baely/mirror/internal/common/errors"
)

const defaultBaseURI = "https://api.up.com.au/api/v1"

// Client handles API interactions with Up
type Client struct {
	baseURI     string
	accessToken string
	client      *http.Client
}

// NewClient creates a new client for the Up API
func NewClient(accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURI:     defaultBaseURI,
		accessToken: accessToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithBaseURI creates a client against a non-default API host.
// Used by tests.
func NewClientWithBaseURI(baseURI, accessToken string, timeout time.Duration) *Client {
	c := NewClient(accessToken, timeout)
	c.baseURI = baseURI
	return c
}

// get makes an authenticated GET request against the Up API. uri may be a
// bare endpoint or an absolute pagination link.
func (c *Client) get(ctx context.Context, uri string, ret interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: request failed with status: %d", errors.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(ret); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}

	return nil
}

// GetTransaction retrieves transaction details from Up
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (TransactionResource, error) {
	var resp GetTransactionResponse

	uri := fmt.Sprintf("%s/transactions/%s", c.baseURI, transactionID)

	if err := c.get(ctx, uri, &resp); err != nil {
		return TransactionResource{}, err
	}

	return resp.Data, nil
}

// ListCategories retrieves the full category listing from Up
func (c *Client) ListCategories(ctx context.Context) ([]CategoryResource, error) {
	var resp ListCategoriesResponse

	uri := fmt.Sprintf("%s/categories", c.baseURI)

	if err := c.get(ctx, uri, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// ListTransactions retrieves all transactions for an account within the given
// time range, following pagination links until exhausted.
func (c *Client) ListTransactions(ctx context.Context, accountID string, since, until time.Time) ([]TransactionResource, error) {
	query := url.Values{}
	query.Set("page[size]", "100")
	if !since.IsZero() {
		query.Set("filter[since]", since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		query.Set("filter[until]", until.Format(time.RFC3339))
	}

	uri := fmt.Sprintf("%s/accounts/%s/transactions?%s", c.baseURI, accountID, query.Encode())

	var transactions []TransactionResource
	for uri != "" {
		var resp ListTransactionsResponse
		if err := c.get(ctx, uri, &resp); err != nil {
			return nil, err
		}

		transactions = append(transactions, resp.Data...)

		uri = ""
		if resp.Links.Next != nil {
			uri = *resp.Links.Next
		}
	}

	return transactions, nil
}
