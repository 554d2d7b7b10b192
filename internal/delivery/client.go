package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const resourcePath = "/entregas"

// CallObserver receives one observation per API call.
type CallObserver interface {
	ObserveAPICall(operation string, err error, elapsed time.Duration)
}

// Client talks to the remote delivery REST API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	observer    CallObserver
	maxAttempts int
	backoff     time.Duration
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver reports call outcomes, typically to Prometheus.
func WithObserver(o CallObserver) ClientOption {
	return func(c *Client) { c.observer = o }
}

// WithRetry sets attempts and initial backoff for idempotent calls.
func WithRetry(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewClient constructs a client for the API rooted at baseURL,
// e.g. http://localhost:3001/api.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the full delivery collection.
func (c *Client) List(ctx context.Context) (_ []Delivery, err error) {
	defer c.observe("list", time.Now(), &err)

	resp, err := c.doWithRetry(ctx, http.MethodGet, resourcePath, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out []Delivery
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("delivery api: decode list: %w", err)
	}
	if out == nil {
		out = []Delivery{}
	}
	return out, nil
}

// Create posts a new delivery. The returned value carries the identifier
// when the API echoes the stored record.
func (c *Client) Create(ctx context.Context, d Delivery) (_ Delivery, err error) {
	defer c.observe("create", time.Now(), &err)

	payload, err := json.Marshal(d.body())
	if err != nil {
		return Delivery{}, fmt.Errorf("delivery api: encode: %w", err)
	}
	// POST is sent once; only idempotent methods are retried.
	resp, err := c.send(ctx, http.MethodPost, resourcePath, payload)
	if err != nil {
		return Delivery{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeEcho(resp.Body, d)
}

// Update replaces the delivery identified by id.
func (c *Client) Update(ctx context.Context, id int64, d Delivery) (_ Delivery, err error) {
	defer c.observe("update", time.Now(), &err)

	payload, err := json.Marshal(d.body())
	if err != nil {
		return Delivery{}, fmt.Errorf("delivery api: encode: %w", err)
	}
	resp, err := c.doWithRetry(ctx, http.MethodPut, itemPath(id), payload)
	if err != nil {
		return Delivery{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeEcho(resp.Body, d.WithID(id))
}

// Delete removes the delivery identified by id.
func (c *Client) Delete(ctx context.Context, id int64) (err error) {
	defer c.observe("delete", time.Now(), &err)

	resp, err := c.doWithRetry(ctx, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func itemPath(id int64) string {
	return resourcePath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) observe(op string, start time.Time, errp *error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveAPICall(op, *errp, time.Since(start))
}

// decodeEcho reads the stored record when the API returns one and falls
// back to the submitted value otherwise.
func decodeEcho(body io.Reader, fallback Delivery) (Delivery, error) {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return Delivery{}, fmt.Errorf("delivery api: read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback, nil
	}
	var echoed Delivery
	if err := json.Unmarshal(data, &echoed); err != nil || echoed.RequestedAt == "" {
		return fallback, nil
	}
	if echoed.ID == nil {
		echoed.ID = fallback.ID
	}
	return echoed, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrAPIUnavailable, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx)
// with exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, method, path, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, ErrAPIUnavailable)
}
