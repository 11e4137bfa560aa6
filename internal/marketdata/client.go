// Package marketdata fetches the public quotes the journal needs: Coinbase
// spot for the morning snapshot, OKX funding and 15m candles for scoring.
// All endpoints are unauthenticated; the simulator never sees this package,
// it only receives the normalized candle slice.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"btc-journal-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultOKXBaseURL      = "https://www.okx.com"
	DefaultCoinbaseBaseURL = "https://api.coinbase.com"
	DefaultInstID          = "BTC-USDT-SWAP"
	DefaultBar             = "15m"
	DefaultUserAgent       = "btc-journal-bot/1.0"

	DefaultTimeout     = 25 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client is a retrying HTTP client over the public OKX and Coinbase APIs.
type Client struct {
	okxBaseURL      string
	coinbaseBaseURL string
	instID          string
	bar             string
	userAgent       string

	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	log         *zap.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithMaxRetries sets maximum retry attempts per request.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithOKXBaseURL overrides the OKX endpoint (tests point this at a stub).
func WithOKXBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.okxBaseURL = u
	}
}

// WithCoinbaseBaseURL overrides the Coinbase endpoint.
func WithCoinbaseBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.coinbaseBaseURL = u
	}
}

// WithInstID sets the OKX instrument, default BTC-USDT-SWAP.
func WithInstID(instID string) ClientOption {
	return func(c *Client) {
		c.instID = instID
	}
}

// WithBar sets the OKX candle bar size; must stay aligned with the trigger
// language written into the journal ("15m close >= ...").
func WithBar(bar string) ClientOption {
	return func(c *Client) {
		c.bar = bar
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a market data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		okxBaseURL:      DefaultOKXBaseURL,
		coinbaseBaseURL: DefaultCoinbaseBaseURL,
		instID:          DefaultInstID,
		bar:             DefaultBar,
		userAgent:       DefaultUserAgent,
		client:          &http.Client{Timeout: DefaultTimeout},
		maxRetries:      DefaultMaxRetries,
		retryDelay:      DefaultRetryDelay,
		maxDelay:        DefaultMaxDelay,
		backoffMult:     DefaultBackoffMult,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET with retry and exponential backoff, decoding the
// response body into out. Retries cover transport errors, 429 and 5xx.
// endpoint labels the latency histogram, one label per logical API.
func (c *Client) getJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	start := time.Now()
	defer func() {
		observability.RecordFetchLatency(endpoint, time.Since(start).Seconds())
	}()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Debug("retrying request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		err := c.doGet(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
	}

	return fmt.Errorf("request %s after %d attempts: %w", url, c.maxRetries+1, lastErr)
}

func (c *Client) doGet(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &transientError{err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &transientError{err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transientError marks failures worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
