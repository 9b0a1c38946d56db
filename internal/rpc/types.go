package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Request is a JSON-RPC 2.0 request. The ID is always 1: every request travels on
// its own HTTP round trip, so there is nothing to correlate.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
//
// Result stays raw until the caller, who knows the method, decodes it. Error is a
// pointer so that an absent "error" key (nil) is distinguishable from an error
// object with zero fields.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error returned by the node.
//
// Standard codes are -32700..-32600. Nodes report a reverted eth_call as code 3
// (geth) or -32000 with the ABI-encoded revert payload in Data.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// RevertData extracts the revert payload carried in Data, if any.
func (e *RPCError) RevertData() ([]byte, bool) {
	if len(e.Data) == 0 {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return nil, false
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Transaction holds the fields of eth_getTransactionByHash the decoder needs.
type Transaction struct {
	Hash        common.Hash     `json:"hash"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"` // nil for contract creation
	Input       hexutil.Bytes   `json:"input"`
	Value       *hexutil.Big    `json:"value"`
	Gas         hexutil.Uint64  `json:"gas"`
	BlockNumber *hexutil.Big    `json:"blockNumber"` // nil while pending
}

// IsCreate reports whether the transaction deploys a contract.
func (t *Transaction) IsCreate() bool { return t.To == nil }

// Receipt holds the fields of eth_getTransactionReceipt the decoder needs.
type Receipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	Status          hexutil.Uint64  `json:"status"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
	Logs            []*types.Log    `json:"logs"`
}

// Failed reports whether execution reverted.
func (r *Receipt) Failed() bool { return r.Status == 0 }
