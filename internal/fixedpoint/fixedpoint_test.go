package fixedpoint

import (
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivideFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want string
	}{
		{"1", "4", "0.25"},
		{"10", "2", "5"},
		{"1.5", "0.5", "3"},
		{"0.001", "0.1", "0.01"},
		{"-9", "3", "-3"},
		{"1", "3", "0.333333333333333333"},
		{"2", "3", "0.666666666666666666"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got, err := DivideFloat(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivideByZero(t *testing.T) {
	t.Parallel()

	_, err := DivideFloat("1", "0.000")
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMultiplyFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want string
	}{
		{"1.5", "2", "3"},
		{"0.1", "0.2", "0.02"},
		{"123456789.123456789", "1000000000", "123456789123456789"},
		{"-2.5", "4", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"*"+tt.b, func(t *testing.T) {
			got, err := MultiplyFloat(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivideThenMultiplyHasNoDrift(t *testing.T) {
	t.Parallel()

	third, err := DivideFloat("1", "3")
	require.NoError(t, err)

	back, err := MultiplyFloat(third, "3")
	require.NoError(t, err)

	diff := decimal.RequireFromString("1").Sub(decimal.RequireFromString(back)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.New(1, -DivisionPrecision)), "drift %s", diff)
}

func TestMalformedOperands(t *testing.T) {
	t.Parallel()

	_, err := MultiplyFloat("abc", "1")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = DivideFloat("1", "")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestOperandConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"exponent", "1e20000000", ErrMalformed},
		{"negative exponent", "1E-5", ErrMalformed},
		{"leading dot", ".5", ErrMalformed},
		{"plus sign", "+1", ErrMalformed},
		{"too many digits", strings.Repeat("9", ConversionPrecision+1), ErrPrecision},
		{"too many fractional digits", "0." + strings.Repeat("1", ConversionPrecision), ErrPrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MultiplyFloat(tt.in, "1")
			require.ErrorIs(t, err, tt.want)

			_, err = DivideFloat("1", tt.in)
			require.ErrorIs(t, err, tt.want)

			_, err = Reciprocal(tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	got, err := MultiplyFloat(strings.Repeat("9", ConversionPrecision), "1")
	require.NoError(t, err)
	assert.Len(t, got, ConversionPrecision)
}

func TestReciprocal(t *testing.T) {
	t.Parallel()

	got, err := Reciprocal("4")
	require.NoError(t, err)
	assert.Equal(t, "0.25", got)

	got, err = Reciprocal("0.5")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	got, err = Reciprocal("3")
	require.NoError(t, err)
	assert.Equal(t, "0.333333333333333333", got)

	_, err = Reciprocal("0")
	require.ErrorIs(t, err, ErrDivisionByZero)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "reciprocal", ce.Op)
}

func TestFromFloat(t *testing.T) {
	t.Parallel()

	s, err := FromFloat(0.1)
	require.NoError(t, err)
	assert.Equal(t, "0.1", s)

	s, err = FromFloat(1e21)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", s)
}

func TestConvertAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		from, to int
		rate     string
		want     string
	}{
		{"usdc to weth", "2000000000", 6, 18, "0.0005", "1000000000000000000"},
		{"weth to usdc", "1000000000000000000", 18, 6, "2000", "2000000000"},
		{"identity", "12345", 6, 6, "1", "12345"},
		{"truncates", "1", 6, 2, "1", "0"},
		{"fractional rate", "3", 1, 1, "1.5", "4"},
		{"zero amount", "0", 18, 18, "3", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertAmount(tt.amount, tt.from, tt.to, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertAmountConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		from, to int
		rate     string
		want     error
	}{
		{"negative amount", "-1", 6, 6, "1", ErrNegativeAmount},
		{"fractional amount", "1.5", 6, 6, "1", ErrMalformed},
		{"zero decimals", "1", 0, 6, "1", ErrInvalidDecimals},
		{"negative decimals", "1", 6, -1, "1", ErrInvalidDecimals},
		{"too many decimals", "1", 257, 6, "1", ErrInvalidDecimals},
		{"zero rate", "1", 6, 6, "0.0", ErrInvalidRate},
		{"negative rate", "1", 6, 6, "-2", ErrInvalidRate},
		{"malformed rate", "1", 6, 6, "1e5", ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertAmount(tt.amount, tt.from, tt.to, tt.rate)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFormatTokenAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      *big.Int
		decimals int
		symbol   string
		want     string
	}{
		{"zero", big.NewInt(0), 6, "USDC", "0.000000 USDC"},
		{"nil", nil, 6, "USDC", "0.000000 USDC"},
		{"one dollar", big.NewInt(1000000), 6, "USDC", "1.000000 USDC"},
		{"large", big.NewInt(1234567890123), 6, "USDC", "1,234,567.890123 USDC"},
		{"very small", big.NewInt(1), 6, "USDC", "0.000001 USDC"},
		{"no symbol", big.NewInt(1500), 3, "", "1.500"},
		{"negative", big.NewInt(-1500), 3, "", "-1.500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTokenAmount(tt.raw, tt.decimals, tt.symbol))
		})
	}
}

func TestAddThousandSeparators(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"1": "1", "123": "123", "1234": "1,234", "1234567": "1,234,567"} {
		assert.Equal(t, want, addThousandSeparators(in))
	}
}
