// Package indexer fetches raw contract records from a contract indexing service.
//
// The service answers GET {base}/contracts/{address} with a contract.Record JSON
// document and 404 for addresses it does not know.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/fetch"
)

// Client fetches contract records from a block-explorer indexer.
type Client struct {
	baseURL string
	client  *fetch.Client
}

var _ contract.Fetcher = (*Client)(nil)

// NewClient returns a Client for the indexer API rooted at baseURL.
func NewClient(baseURL string, client *fetch.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// FetchContract returns contract.ErrNotFound when the indexer has no record.
func (c *Client) FetchContract(ctx context.Context, address string) (*contract.Record, error) {
	addr := contract.NormalizeAddress(address)

	var rec contract.Record
	if err := c.client.GetJSON(ctx, c.baseURL+"/contracts/"+addr, &rec); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return nil, contract.ErrNotFound
		}
		return nil, fmt.Errorf("fetch contract %s: %w", addr, err)
	}
	if rec.Address == "" {
		rec.Address = addr
	}
	return &rec, nil
}
