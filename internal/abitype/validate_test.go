package abitype

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, kind, ve.Kind, ve.Error())
}

func TestValidateUnsignedBoundaries(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0", "255"} {
		v, err := Validate("uint8", in)
		require.NoError(t, err, in)
		assert.Equal(t, in, v.Int.String())
	}

	_, err := Validate("uint8", "256")
	requireKind(t, err, ErrRange)

	_, err = Validate("uint8", "-1")
	requireKind(t, err, ErrShape)

	_, err = Validate("uint8", "1.5")
	requireKind(t, err, ErrShape)
}

func TestValidateUnsizedUintIsUnbounded(t *testing.T) {
	t.Parallel()

	huge := "1000000000000000000000000000000000000000000000000000000000000000000000000000000000"
	v, err := Validate("uint", huge)
	require.NoError(t, err)
	assert.Equal(t, huge, v.Int.String())

	_, err = Validate("uint", "-3")
	requireKind(t, err, ErrShape)
}

func TestValidateSignedSymmetricBound(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"-255", "-128", "0", "127", "255"} {
		_, err := Validate("int8", in)
		require.NoError(t, err, in)
	}

	_, err := Validate("int8", "256")
	requireKind(t, err, ErrRange)

	_, err = Validate("int8", "-256")
	requireKind(t, err, ErrRange)

	_, err = Validate("int8", "--1")
	requireKind(t, err, ErrShape)
}

func TestIntegerBounds(t *testing.T) {
	t.Parallel()

	lo, hi := IntegerBounds(Type{Kind: KindInt, Bits: 16})
	assert.Equal(t, big.NewInt(-65535), lo)
	assert.Equal(t, big.NewInt(65535), hi)

	lo, hi = IntegerBounds(Type{Kind: KindUint})
	assert.Equal(t, 0, lo.Sign())
	assert.Nil(t, hi)

	assert.Panics(t, func() { IntegerBounds(Type{Kind: KindAddress}) })
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		kind ErrorKind
	}{
		{"checksummed", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", 0},
		{"no prefix", "d8dA6BF26964aF9D7eEd9e03E53415D37aA96045", 0},
		{"upper", "0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045", 0},
		{"too short", "0xd8dA6BF269", ErrShape},
		{"too long", "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045aa", ErrShape},
		{"non hex", "0xZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", ErrHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Validate("address", tt.in)
			if tt.kind != 0 {
				requireKind(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", v.Address)
		})
	}
}

func TestValidateBool(t *testing.T) {
	t.Parallel()

	v, err := Validate("bool", "TRUE")
	require.NoError(t, err)
	assert.True(t, v.Bool)

	v, err = Validate("bool", "False")
	require.NoError(t, err)
	assert.False(t, v.Bool)

	_, err = Validate("bool", "1")
	requireKind(t, err, ErrShape)
}

func TestValidateBytes(t *testing.T) {
	t.Parallel()

	v, err := Validate("bytes", "0x")
	require.NoError(t, err)
	assert.Empty(t, v.Bytes)

	v, err = Validate("bytes4", "0xa9059cbb")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, v.Bytes)

	_, err = Validate("bytes4", "0xa9059c")
	requireKind(t, err, ErrLength)

	_, err = Validate("bytes", "0xzz")
	requireKind(t, err, ErrHex)

	_, err = Validate("bytes", "a9")
	requireKind(t, err, ErrShape)

	_, err = Validate("bytes", "0xabc")
	requireKind(t, err, ErrShape)
}

func TestValidateArrayLengthEnforcement(t *testing.T) {
	t.Parallel()

	a := "0x0000000000000000000000000000000000000001"
	b := "0x0000000000000000000000000000000000000002"
	c := "0x0000000000000000000000000000000000000003"

	_, err := Validate("address[3]", "["+a+", "+b+", "+c+"]")
	require.NoError(t, err)

	_, err = Validate("address[3]", "["+a+", "+b+"]")
	requireKind(t, err, ErrLength)

	_, err = Validate("address[3]", "["+a+", "+b+", "+c+", "+a+"]")
	requireKind(t, err, ErrLength)

	_, err = Validate("address[3]", "[]")
	requireKind(t, err, ErrLength)

	for _, in := range []string{"[]", "[" + a + "]", "[" + a + ", " + b + ", " + c + ", " + a + "]"} {
		_, err := Validate("address[]", in)
		require.NoError(t, err, in)
	}
}

func TestValidateArrayElementErrors(t *testing.T) {
	t.Parallel()

	_, err := Validate("uint8[]", "[1, 2, 300]")
	requireKind(t, err, ErrRange)
	assert.Contains(t, err.Error(), "element 2")

	_, err = Validate("uint8[]", "1, 2")
	requireKind(t, err, ErrShape)

	v, err := Validate("uint8[2][]", "[[1, 2], [3, 4]]")
	require.NoError(t, err)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, "4", v.Elems[1].Elems[1].Int.String())
}

func TestValidateFixedBytesArray(t *testing.T) {
	t.Parallel()

	v, err := Validate("bytes2[]", "[0x0102, 0xffff]")
	require.NoError(t, err)
	assert.Len(t, v.Elems, 2)

	_, err = Validate("bytes2[]", "[0x0102, 0xff]")
	requireKind(t, err, ErrLength)
}

func TestValidateStringArrays(t *testing.T) {
	t.Parallel()

	v, err := Validate("string[]", `["a, b", "say \"hi\""]`)
	require.NoError(t, err)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, "a, b", v.Elems[0].Str)
	assert.Equal(t, `say "hi"`, v.Elems[1].Str)

	_, err = Validate("string[2]", `["only one"]`)
	requireKind(t, err, ErrLength)

	_, err = Validate("string[]", `[a, b]`)
	requireKind(t, err, ErrShape)

	_, err = Validate("string[]", `["a", 1]`)
	requireKind(t, err, ErrShape)

	v, err = Validate("string[][]", `[["x"], []]`)
	require.NoError(t, err)
	assert.Len(t, v.Elems[1].Elems, 0)
}

func TestValidateTuple(t *testing.T) {
	t.Parallel()

	comps := []abi.ArgumentMarshaling{
		{Name: "to", Type: "address"},
		{Name: "amount", Type: "uint96"},
	}
	v, err := ValidateWithComponents("tuple", comps, "[0x0000000000000000000000000000000000000001, 42]")
	require.NoError(t, err)
	require.Len(t, v.Elems, 2)
	assert.Equal(t, "42", v.Elems[1].Int.String())

	_, err = ValidateWithComponents("tuple", comps, "[0x0000000000000000000000000000000000000001]")
	requireKind(t, err, ErrLength)
}

func TestValidateBadTypeString(t *testing.T) {
	t.Parallel()

	_, err := Validate("uint9", "1")
	var te *TypeError
	require.ErrorAs(t, err, &te)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	samples := []struct {
		typ  string
		text string
	}{
		{"uint8", "255"},
		{"uint256", "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		{"int16", "-1234"},
		{"int", "-99999999999999999999999"},
		{"address", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"},
		{"bool", "true"},
		{"bool", "false"},
		{"bytes", "0xdeadbeef"},
		{"bytes32", "0x" + "11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff"},
		{"string", "hello, world"},
		{"uint32[2]", "[1, 2]"},
		{"bool[]", "[true, false, true]"},
		{"string[]", `["a","b"]`},
	}

	for _, s := range samples {
		t.Run(s.typ+"/"+s.text, func(t *testing.T) {
			v, err := Validate(s.typ, s.text)
			require.NoError(t, err)

			again, err := Validate(s.typ, v.Format())
			require.NoError(t, err)
			assert.Equal(t, v, again)
		})
	}
}
