package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/evm-decoder/internal/abitype"
	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/decoder"
	"github.com/dmagro/evm-decoder/internal/probe"
	"github.com/dmagro/evm-decoder/internal/stats"
)

func TestMain(m *testing.M) {
	DisableColors()
	os.Exit(m.Run())
}

func transferCall() *decoder.Call {
	return &decoder.Call{
		Address:   "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Name:      "transfer",
		Signature: "transfer(address,uint256)",
		Selector:  "0xa9059cbb",
		Source:    decoder.SourceFallback,
		Params: []decoder.Param{
			{Name: "arg0", Type: "address", Value: "0x00000000000000000000000000000000000a11ce"},
			{Name: "arg1", Type: "uint256", Value: "1000000"},
		},
	}
}

func TestRenderCallTerminal(t *testing.T) {
	var buf bytes.Buffer
	RenderCallTerminal(&buf, transferCall())

	out := buf.String()
	assert.Contains(t, out, "transfer(address,uint256)")
	assert.Contains(t, out, "0xa9059cbb")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "1000000")

	buf.Reset()
	RenderCallTerminal(&buf, &decoder.Call{Address: "0x01", Name: "0xdeadbeef", Selector: "0xdeadbeef"})
	assert.Contains(t, buf.String(), "unknown")
	assert.Contains(t, buf.String(), "none")
}

func TestRenderTx(t *testing.T) {
	rep := &TxReport{
		Hash:   "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
		From:   "0x00000000000000000000000000000000000a11ce",
		Status: TxFailed,
		Call:   transferCall(),
		Revert: &decoder.Revert{Kind: decoder.RevertError, Reason: "insufficient balance"},
		Logs: []*decoder.Log{
			{Index: 0, Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Name: "Transfer",
				Signature: "Transfer(address,address,uint256)", Source: decoder.SourceContract, Transfer: "erc20",
				Params: []decoder.Param{{Name: "from", Type: "address", Value: "0x01", Indexed: true}}},
			{Index: 1, Address: "0x0000000000000000000000000000000000000002", Name: "0x1234567890abcdef1234567890abcdef"},
		},
	}

	var buf bytes.Buffer
	RenderTxTerminal(&buf, rep)
	out := buf.String()
	assert.Contains(t, out, "contract creation")
	assert.Contains(t, out, "✗ failed")
	assert.Contains(t, out, "insufficient balance")
	assert.Contains(t, out, "Logs (2)")
	assert.Contains(t, out, "erc20")
	assert.Contains(t, out, "(indexed)")
	assert.Contains(t, out, "0x1234...cdef")

	buf.Reset()
	require.NoError(t, RenderJSON(&buf, rep))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "failed", decoded["status"])
	assert.NotContains(t, decoded, "to")
	call := decoded["call"].(map[string]any)
	assert.Equal(t, "fallback", call["source"])
	logs := decoded["logs"].([]any)
	assert.Equal(t, "none", logs[1].(map[string]any)["source"])
}

func TestRenderLogsTokenAmount(t *testing.T) {
	decimals := uint8(6)
	logs := []*decoder.Log{{
		Address:   "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Name:      "Transfer",
		Signature: "Transfer(address,address,uint256)",
		Source:    decoder.SourceContract,
		Transfer:  contract.TagERC20,
		Params:    []decoder.Param{{Name: "value", Type: "uint256", Value: "1234500000", Raw: big.NewInt(1234500000)}},
		Contract: &contract.Descriptor{
			Properties: contract.Properties{Symbol: "USDC", Decimals: &decimals},
		},
	}}

	var buf bytes.Buffer
	RenderLogsTerminal(&buf, logs)
	assert.Contains(t, buf.String(), "1,234.500000 USDC")
}

func TestNewValidation(t *testing.T) {
	v, err := abitype.Validate("uint8", "255")
	ok := NewValidation("uint8", "255", v, err)
	assert.True(t, ok.Valid)
	assert.Equal(t, "255", ok.Value)
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000ff", ok.Encoded)

	v, err = abitype.Validate("uint8", "256")
	bad := NewValidation("uint8", "256", v, err)
	assert.False(t, bad.Valid)
	assert.Equal(t, "out of range", bad.Kind)
	assert.NotEmpty(t, bad.Error)
	assert.Empty(t, bad.Encoded)

	v, err = abitype.Validate("uint7", "1")
	typ := NewValidation("uint7", "1", v, err)
	assert.False(t, typ.Valid)
	assert.Equal(t, "type", typ.Kind)

	var buf bytes.Buffer
	RenderValidationTerminal(&buf, []Validation{ok, bad})
	assert.Contains(t, buf.String(), "✓ valid")
	assert.Contains(t, buf.String(), "✗ out of range")
}

func TestNewConversion(t *testing.T) {
	c := NewConversion("divide", []string{"1", "3"}, "0.333", nil)
	assert.Equal(t, "0.333", c.Result)
	assert.Empty(t, c.Error)

	c = NewConversion("divide", []string{"1", "0"}, "ignored", errors.New("division by zero"))
	assert.Empty(t, c.Result)
	assert.Equal(t, "division by zero", c.Error)

	var buf bytes.Buffer
	RenderConversionTerminal(&buf, c)
	assert.Contains(t, buf.String(), "division by zero")
}

func TestRenderProbe(t *testing.T) {
	health := []probe.Health{
		{Name: "openchain", Status: probe.StatusUp, Attempts: 4, Successes: 4,
			Latency: stats.Summary{Count: 4, Mean: 80 * time.Millisecond, P50: 75 * time.Millisecond, P95: 120 * time.Millisecond, Max: 120 * time.Millisecond}},
		{Name: "4byte", Status: probe.StatusDown, Attempts: 4, LastError: "HTTP 503"},
	}

	var buf bytes.Buffer
	RenderProbeTerminal(&buf, health)
	out := buf.String()
	assert.Contains(t, out, "✓ UP")
	assert.Contains(t, out, "✗ DOWN")
	assert.Contains(t, out, "120ms")
	assert.Contains(t, out, "HTTP 503")
	assert.Contains(t, out, "Suggested order: openchain")

	js := ProbeJSON(health)
	require.Len(t, js, 2)
	assert.InDelta(t, 100, js[0].SuccessRate, 0.001)
	assert.InDelta(t, 120, js[0].LatencyMs.P95, 0.001)
	assert.Zero(t, js[1].SuccessRate)

	buf.Reset()
	RenderProbeTerminal(&buf, nil)
	assert.Contains(t, buf.String(), "no remote sources configured")
}
