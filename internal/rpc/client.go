// Package rpc is a minimal Ethereum JSON-RPC client for the raw inputs of the
// decoder: transactions, receipts and revert data.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrNotFound is returned when the node answers null, e.g. for an unknown hash.
var ErrNotFound = errors.New("not found")

type Client struct {
	name       string
	url        string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewClient(name, url string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		name:       name,
		url:        url,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return c.name }

// Call executes a JSON-RPC request, retrying transport failures with exponential
// backoff. Errors reported by the node itself (*RPCError) are not retried. The
// returned latency is that of the final attempt.
func (c *Client) Call(ctx context.Context, method string, params ...any) (*Response, time.Duration, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s request: %w", method, err)
	}

	var (
		resp    *Response
		latency time.Duration
	)
	err = retry.Do(func() error {
		start := time.Now()
		r, err := c.doRequest(ctx, body)
		latency = time.Since(start)
		if err != nil {
			var rpcErr *RPCError
			if errors.As(err, &rpcErr) {
				return retry.Unrecoverable(err)
			}
			return err
		}
		resp = r
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, latency, fmt.Errorf("%s %s: %w", c.name, method, err)
	}
	return resp, latency, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", httpResp.StatusCode)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}
