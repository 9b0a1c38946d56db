package revert

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packError(t *testing.T, msg string) []byte {
	t.Helper()
	stringTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringTy}}.Pack(msg)
	require.NoError(t, err)
	return append(append([]byte{}, ErrorSelector...), packed...)
}

func packPanic(t *testing.T, code int64) []byte {
	t.Helper()
	uintTy, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: uintTy}}.Pack(big.NewInt(code))
	require.NoError(t, err)
	return append(append([]byte{}, PanicSelector...), packed...)
}

func TestSelectors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x08c379a0", hexutil.Encode(ErrorSelector))
	assert.Equal(t, "0x4e487b71", hexutil.Encode(PanicSelector))
}

func TestDecodeErrorString(t *testing.T) {
	t.Parallel()

	data := packError(t, "ERC20: transfer amount exceeds balance")
	r := Decode(data)
	assert.Equal(t, KindError, r.Kind)
	assert.Equal(t, "ERC20: transfer amount exceeds balance", r.Message)
}

func TestDecodeErrorStripsDisallowedCharacters(t *testing.T) {
	t.Parallel()

	data := packError(t, "bad\x01 input\n!")
	assert.Equal(t, "bad input!", DecodeReason(data))
}

func TestDecodePanic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int64
		want string
	}{
		{0x01, "Assertion failed"},
		{0x11, "Arithmetic operation underflowed or overflowed outside of an unchecked block"},
		{0x12, "Division or modulo division by zero"},
		{0x21, "Tried to convert a value into an enum, but the value was too big or negative"},
		{0x31, "Called .pop() on an empty array"},
		{0x32, "Array accessed at an out-of-bounds or negative index"},
		{0x41, "Too much memory was allocated, or an array was created that is too large"},
		{0x51, "Called a zero-initialized variable of internal function type"},
		{0x99, DefaultPanicMessage},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := Decode(packPanic(t, tt.code))
			assert.Equal(t, KindPanic, r.Kind)
			assert.Equal(t, byte(tt.code), r.Code)
			assert.Equal(t, tt.want, r.Message)
		})
	}
}

func TestDecodeOtherPayloads(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"nil":          nil,
		"short":        {0x08, 0xc3},
		"custom error": hexutil.MustDecode("0x1425ea42"),
		"error head":   ErrorSelector,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, DecodeReason(data))
		})
	}
}
