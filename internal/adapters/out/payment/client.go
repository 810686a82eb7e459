// Package payment talks to the payment provider's REST API.
//
//	GET  {base}/payments/{ref}          -> {"status": "captured", "transactionId": "pay_..."}
//	POST {base}/payments/{ref}/refunds  -> {"refundId": "rfnd_..."}
//
// ref is the order id the checkout registered with the provider.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
	// MaxRetries applies to status lookups only. Refunds are never retried.
	MaxRetries uint64
}

// Client implements ports.PaymentGateway.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func NewClient(cfg Config) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("payment base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

type statusResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
}

// Verify reports whether the payment was captured. Transport errors and 5xx
// answers are retried with exponential backoff.
func (c *Client) Verify(ctx context.Context, ref string) (ports.PaymentStatus, error) {
	var body statusResponse
	operation := func() error {
		return c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(ref), &body)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return ports.PaymentStatus{}, err
	}

	return ports.PaymentStatus{
		Captured:      strings.EqualFold(body.Status, "captured"),
		TransactionID: body.TransactionID,
	}, nil
}

func (c *Client) Refund(ctx context.Context, ref string) (string, error) {
	var body refundResponse
	err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(ref)+"/refunds", &body)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return "", permanent.Err
		}
		return "", err
	}
	return body.RefundID, nil
}

// do performs one call. Client errors are wrapped in backoff.Permanent.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.keyID != "" {
		req.SetBasicAuth(c.keyID, c.keySecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("payment provider: %s", resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return backoff.Permanent(fmt.Errorf("payment provider: %s: %s", resp.Status, strings.TrimSpace(string(detail))))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode payment response: %w", err))
	}
	return nil
}
