// Package fetch is the HTTP GET + JSON client shared by the remote signature
// sources and the contract indexer client.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned for HTTP 404 responses. It is never retried.
var ErrNotFound = errors.New("not found")

// MaxBodySize caps the number of response bytes read per request.
const MaxBodySize = 8 << 20

var (
	errInvalidBody  = errors.New("invalid JSON response")
	errBodyTooLarge = errors.New("response body too large")
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client issues JSON GET requests with retries.
type Client struct {
	httpClient *http.Client
	maxBody    int64
	maxRetries int
	retryDelay time.Duration
	header     http.Header
}

// NewClient returns a client that retries transient failures maxRetries times,
// backing off exponentially from retryDelay.
func NewClient(timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    MaxBodySize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		header:     make(http.Header),
	}
}

// SetHeader adds a header sent with every request, e.g. an API key.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// GetJSON issues GET url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return retry.Do(func() error {
		err := c.do(ctx, url, out)
		var se *StatusError
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrNotFound), errors.Is(err, errInvalidBody), errors.Is(err, errBodyTooLarge):
			return retry.Unrecoverable(err)
		case errors.As(err, &se) && !se.Retryable():
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) do(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > c.maxBody {
		return fmt.Errorf("GET %s: %w: over %d bytes", url, errBodyTooLarge, c.maxBody)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}
