package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/baely/mirror/internal/common/errors"
)

// Client handles API interactions with Firefly III
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewClient creates a new client for the Firefly III API
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: newBreaker(),
	}
}

// newBreaker creates the circuit breaker guarding outbound Firefly calls.
// The breaker only fails fast while the instance is down; the client never
// retries on its own.
func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "firefly",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// request makes an authenticated API request to Firefly III
func (c *Client) request(ctx context.Context, method, endpoint string, payload interface{}, ret interface{}) error {
	body := bytes.NewBuffer(nil)
	if payload != nil {
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return errors.Wrap(err, "failed to encode payload")
		}
	}

	uri := fmt.Sprintf("%s/api/v1/%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	req.Header.Add("Accept", "application/vnd.api+json")
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrUpstream, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: request failed with status: %d", errors.ErrUpstream, resp.StatusCode)
		}

		if ret != nil {
			if err := json.NewDecoder(resp.Body).Decode(ret); err != nil {
				return nil, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("%w: %v", errors.ErrUpstream, err)
		}
		return err
	}

	return nil
}

// SearchByExternalID searches for transactions carrying the given external ID
func (c *Client) SearchByExternalID(ctx context.Context, externalID string) (SearchResponse, error) {
	var resp SearchResponse

	query := url.Values{}
	query.Set("query", fmt.Sprintf("external_id:%q", externalID))
	endpoint := fmt.Sprintf("search/transactions?%s", query.Encode())

	if err := c.request(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return SearchResponse{}, err
	}

	return resp, nil
}

// CreateTransaction creates a new transaction
func (c *Client) CreateTransaction(ctx context.Context, payload TransactionPayload) error {
	return c.request(ctx, http.MethodPost, "transactions", payload, nil)
}

// UpdateTransaction updates the transaction with the given Firefly ID
func (c *Client) UpdateTransaction(ctx context.Context, transactionID string, payload TransactionPayload) error {
	endpoint := fmt.Sprintf("transactions/%s", transactionID)
	return c.request(ctx, http.MethodPut, endpoint, payload, nil)
}

// DeleteTransaction deletes the transaction with the given Firefly ID
func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) error {
	endpoint := fmt.Sprintf("transactions/%s", transactionID)
	return c.request(ctx, http.MethodDelete, endpoint, nil, nil)
}
