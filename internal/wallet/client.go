// Package wallet wraps the external currency service that holds viewer point
// balances. The service exposes three independent operations (read, add,
// remove) and performs no check-and-debit of its own, so callers are
// responsible for serialising a balance check against the debit that follows.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnavailable covers transport failures, timeouts and 5xx responses.
	ErrUnavailable = errors.New("points service unavailable")

	// ErrRejected covers 4xx responses: the service understood the request
	// and refused it.
	ErrRejected = errors.New("points service rejected the request")
)

const defaultTimeout = 10 * time.Second

// Client is a stateless facade over the currency service. It never retries
// and never swallows errors; failures propagate to the round controller.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every call to the service. A hung call must only stall
// the one bet or payout it belongs to, so the bound should stay small.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for the currency service at baseURL,
// authenticating every call with the given bearer key.
func NewClient(baseURL, apiKey string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.WithPrefix("wallet"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Balance returns the participant's current spendable points.
func (c *Client) Balance(ctx context.Context, participant string) (int64, error) {
	var body struct {
		Currency int64 `json:"currency"`
	}
	path := fmt.Sprintf("/currency/%s/get/%s", c.apiKey, url.PathEscape(participant))
	if err := c.do(ctx, http.MethodGet, path, &body); err != nil {
		return 0, err
	}
	c.logger.Debug("balance read", "participant", participant, "points", body.Currency)
	return body.Currency, nil
}

// Debit removes points from the participant. The caller must have checked the
// balance first; the service happily drives balances negative otherwise.
func (c *Client) Debit(ctx context.Context, participant string, amount int64) error {
	path := fmt.Sprintf("/currency/%s/action/remove/%s/%d", c.apiKey, url.PathEscape(participant), amount)
	return c.do(ctx, http.MethodPost, path, nil)
}

// Credit adds points to the participant.
func (c *Client) Credit(ctx context.Context, participant string, amount int64) error {
	path := fmt.Sprintf("/currency/%s/action/add/%s/%d", c.apiKey, url.PathEscape(participant), amount)
	return c.do(ctx, http.MethodPost, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return nil
}
