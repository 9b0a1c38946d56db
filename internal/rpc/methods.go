package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionByHash calls eth_getTransactionByHash.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*Transaction, error) {
	var tx Transaction
	if err := c.callInto(ctx, &tx, "eth_getTransactionByHash", hash); err != nil {
		return nil, err
	}
	return &tx, nil
}

// TransactionReceipt calls eth_getTransactionReceipt. The receipt's logs are the
// raw input of decoder.DecodeLogs.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r Receipt
	if err := c.callInto(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return &r, nil
}

// RevertData replays tx with eth_call at its block and returns the revert payload.
// It returns nil data when the replay succeeds, which happens when the failure
// depended on state earlier in the same block.
func (c *Client) RevertData(ctx context.Context, tx *Transaction) ([]byte, error) {
	call := map[string]any{
		"from": tx.From,
		"data": tx.Input,
	}
	if tx.To != nil {
		call["to"] = tx.To
	}
	if tx.Value != nil {
		call["value"] = tx.Value
	}
	if tx.Gas != 0 {
		call["gas"] = tx.Gas
	}
	block := "latest"
	if tx.BlockNumber != nil {
		block = hexutil.EncodeBig(tx.BlockNumber.ToInt())
	}

	_, _, err := c.Call(ctx, "eth_call", call, block)
	if err == nil {
		return nil, nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		if data, ok := rpcErr.RevertData(); ok {
			return data, nil
		}
	}
	return nil, err
}

func (c *Client) callInto(ctx context.Context, out any, method string, params ...any) error {
	resp, _, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return fmt.Errorf("%s: %w", method, ErrNotFound)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}
