// Package sigsource implements signature.Source against public signature
// databases.
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

const DefaultOpenChainURL = "https://api.openchain.xyz"

// OpenChain queries the openchain.xyz signature database.
type OpenChain struct {
	baseURL string
	client  *fetch.Client
}

var _ signature.Source = (*OpenChain)(nil)

func NewOpenChain(baseURL string, client *fetch.Client) *OpenChain {
	if baseURL == "" {
		baseURL = DefaultOpenChainURL
	}
	return &OpenChain{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (o *OpenChain) Name() string { return "openchain" }

type openChainResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		Function map[string][]openChainSignature `json:"function"`
		Event    map[string][]openChainSignature `json:"event"`
	} `json:"result"`
}

type openChainSignature struct {
	Name     string `json:"name"`
	Filtered bool   `json:"filtered"`
}

func (o *OpenChain) LookupFunction(ctx context.Context, selector string) (string, error) {
	return o.lookup(ctx, "function", selector)
}

func (o *OpenChain) LookupEvent(ctx context.Context, topic string) (string, error) {
	return o.lookup(ctx, "event", topic)
}

func (o *OpenChain) lookup(ctx context.Context, param, hash string) (string, error) {
	u := fmt.Sprintf("%s/signature-database/v1/lookup?%s=%s&filter=true", o.baseURL, param, url.QueryEscape(hash))

	var resp openChainResponse
	if err := o.client.GetJSON(ctx, u, &resp); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return "", signature.ErrNotFound
		}
		return "", fmt.Errorf("openchain lookup %s: %w", hash, err)
	}
	if !resp.OK {
		return "", fmt.Errorf("openchain lookup %s: request rejected", hash)
	}

	results := resp.Result.Function
	if param == "event" {
		results = resp.Result.Event
	}
	for _, s := range results[strings.ToLower(hash)] {
		if !s.Filtered && s.Name != "" {
			return s.Name, nil
		}
	}
	return "", signature.ErrNotFound
}
