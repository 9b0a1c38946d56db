package sigsource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmagro/evm-decoder/internal/fetch"
	"github.com/dmagro/evm-decoder/internal/signature"
)

const DefaultFourByteURL = "https://www.4byte.directory"

// FourByte queries 4byte.directory. When several signatures share a hash the
// earliest submission wins, since later ones are usually collision spam.
type FourByte struct {
	baseURL string
	client  *fetch.Client
}

var _ signature.Source = (*FourByte)(nil)

func NewFourByte(baseURL string, client *fetch.Client) *FourByte {
	if baseURL == "" {
		baseURL = DefaultFourByteURL
	}
	return &FourByte{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (f *FourByte) Name() string { return "4byte" }

type fourByteResponse struct {
	Count   int `json:"count"`
	Results []struct {
		ID            int64  `json:"id"`
		TextSignature string `json:"text_signature"`
		HexSignature  string `json:"hex_signature"`
	} `json:"results"`
}

func (f *FourByte) LookupFunction(ctx context.Context, selector string) (string, error) {
	return f.lookup(ctx, "signatures", selector)
}

func (f *FourByte) LookupEvent(ctx context.Context, topic string) (string, error) {
	return f.lookup(ctx, "event-signatures", topic)
}

func (f *FourByte) lookup(ctx context.Context, endpoint, hash string) (string, error) {
	u := fmt.Sprintf("%s/api/v1/%s/?hex_signature=%s", f.baseURL, endpoint, url.QueryEscape(hash))

	var resp fourByteResponse
	if err := f.client.GetJSON(ctx, u, &resp); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return "", signature.ErrNotFound
		}
		return "", fmt.Errorf("4byte lookup %s: %w", hash, err)
	}

	var (
		best   string
		bestID int64
	)
	for _, r := range resp.Results {
		if r.TextSignature == "" {
			continue
		}
		if best == "" || r.ID < bestID {
			best, bestID = r.TextSignature, r.ID
		}
	}
	if best == "" {
		return "", signature.ErrNotFound
	}
	return best, nil
}
