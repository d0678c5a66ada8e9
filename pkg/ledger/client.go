// Package ledger is a Go client for the fxledger HTTP API.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fxledger/internal/api"
	"fxledger/internal/util"
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger: %d %s", e.Code, e.Status)
}

// Order is a recorded order as returned by GetOrders.
type Order = api.OrderJSON

// Balance is one currency holding as returned by GetUserDetail.
type Balance = api.BalanceEntry

// UserDetail is the result of GetUserDetail.
type UserDetail = api.UserDetailResponse

// Client provides a Go SDK for interacting with the ledger server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Attempts bounds retries of idempotent calls on transport errors.
	Attempts  int
	BaseDelay time.Duration
}

// NewClient creates a new ledger API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		Attempts:   3,
		BaseDelay:  200 * time.Millisecond,
	}
}

// AddUser registers userID. Registering an existing id resets its balance.
func (c *Client) AddUser(ctx context.Context, userID string) error {
	return c.retry(ctx, func() error {
		_, err := c.post(ctx, api.PathAddUser, map[string]any{"user_id": userID})
		return err
	})
}

// AddOrder records an order for userID. It is not retried: a retry after a
// lost response would record the order twice.
func (c *Client) AddOrder(ctx context.Context, userID, source, target string, value, price float64) error {
	_, err := c.post(ctx, api.PathAddOrder, map[string]any{
		"user_id": userID,
		"source":  source,
		"target":  target,
		"value":   value,
		"price":   price,
	})
	return err
}

// GetOrders returns userID's orders in submission order.
func (c *Client) GetOrders(ctx context.Context, userID string) ([]Order, error) {
	var out api.OrdersResponse
	err := c.retry(ctx, func() error {
		body, err := c.post(ctx, api.PathGetOrders, map[string]any{"user_id": userID})
		if err != nil {
			return err
		}
		return util.Permanent(json.Unmarshal(body, &out))
	})
	if err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetUserDetail returns userID's balances.
func (c *Client) GetUserDetail(ctx context.Context, userID string) (*UserDetail, error) {
	var out UserDetail
	err := c.retry(ctx, func() error {
		body, err := c.post(ctx, api.PathGetUserDetail, map[string]any{"user_id": userID})
		if err != nil {
			return err
		}
		return util.Permanent(json.Unmarshal(body, &out))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// retry retries fn on transport errors only; a StatusError is final.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return util.Retry(ctx, attempts, c.BaseDelay, func() error {
		err := fn()
		if _, ok := err.(*StatusError); ok {
			return util.Permanent(err)
		}
		return err
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: reason(resp.StatusCode)}
	}
	return body, nil
}

// reason mirrors the server's reason phrases, which net/http does not carry.
func reason(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusForbidden:
		return "Unauthorized"
	case http.StatusNotFound:
		return "Not Found"
	default:
		return http.StatusText(code)
	}
}
