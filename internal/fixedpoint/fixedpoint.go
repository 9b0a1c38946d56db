// Package fixedpoint performs exact decimal arithmetic on decimal strings. Operands are
// scaled to integers, combined with big-integer arithmetic and scaled back, so no
// floating-point rounding ever reaches an amount.
//
// It is the only place amounts are divided, multiplied or converted; display and fiat
// code call into it rather than using float64.
package fixedpoint

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DivisionPrecision is the number of fractional digits kept by DivideFloat and
	// Reciprocal. Digits beyond it are truncated toward zero.
	DivisionPrecision = 18

	// ConversionPrecision is the fixed number of decimal digits amounts are normalised
	// to during cross-token conversion.
	ConversionPrecision = 256
)

var (
	amountRe  = regexp.MustCompile(`^\d+$`)
	rateRe    = regexp.MustCompile(`^\d+(\.\d+)?$`)
	operandRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// operand is a parsed decimal string: value = coef * 10^exp.
type operand struct {
	coef *big.Int
	exp  int
}

// parse accepts plain decimal notation only. Exponent notation is rejected so that an
// operand's size is bounded by its length.
func parse(op, s string) (operand, error) {
	s = strings.TrimSpace(s)
	if !operandRe.MatchString(s) {
		return operand{}, violation(op, ErrMalformed, "%q", s)
	}
	if digits := len(strings.TrimPrefix(s, "-")) - strings.Count(s, "."); digits > ConversionPrecision {
		return operand{}, violation(op, ErrPrecision, "operand has %d digits", digits)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return operand{}, violation(op, ErrMalformed, "%q", s)
	}
	return operand{coef: d.Coefficient(), exp: int(d.Exponent())}, nil
}

// decimals is the number of fractional digits the operand carries.
func (o operand) decimals() int {
	if o.exp >= 0 {
		return 0
	}
	return -o.exp
}

// scaled returns the operand as an integer multiplied by 10^k. k must be at least
// o.decimals().
func (o operand) scaled(k int) *big.Int {
	return new(big.Int).Mul(o.coef, pow10(k+o.exp))
}

// render formats v * 10^-scale without trailing zeros or a trailing decimal point.
func render(v *big.Int, scale int) string {
	return decimal.NewFromBigInt(v, int32(-scale)).String()
}

// DivideFloat returns a / b. Both operands are scaled by 10^max(decimals(a), decimals(b))
// before the integer division, which keeps DivisionPrecision fractional digits.
func DivideFloat(a, b string) (string, error) {
	const op = "divide"
	x, err := parse(op, a)
	if err != nil {
		return "", err
	}
	y, err := parse(op, b)
	if err != nil {
		return "", err
	}

	k := max(x.decimals(), y.decimals())
	num, den := x.scaled(k), y.scaled(k)
	if den.Sign() == 0 {
		return "", violation(op, ErrDivisionByZero, "%s / %s", a, b)
	}

	num.Mul(num, pow10(DivisionPrecision))
	return render(num.Quo(num, den), DivisionPrecision), nil
}

// MultiplyFloat returns a * b exactly. The integer product carries
// decimals(a) + decimals(b) implied fractional digits.
func MultiplyFloat(a, b string) (string, error) {
	const op = "multiply"
	x, err := parse(op, a)
	if err != nil {
		return "", err
	}
	y, err := parse(op, b)
	if err != nil {
		return "", err
	}

	da, db := x.decimals(), y.decimals()
	product := new(big.Int).Mul(x.scaled(da), y.scaled(db))
	return render(product, da+db), nil
}

// Reciprocal returns 1 / x to DivisionPrecision fractional digits.
func Reciprocal(x string) (string, error) {
	out, err := DivideFloat("1", x)
	if err != nil {
		if ce, ok := err.(*ConstraintError); ok {
			ce.Op = "reciprocal"
		}
		return "", err
	}
	return out, nil
}

// FromFloat renders a native float in the shortest decimal form that round-trips, for
// callers holding float64 values.
func FromFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", violation("from float", ErrMalformed, "%v", f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// ConvertAmount converts amount, an integer in token A's smallest unit, into token B's
// smallest unit. rate is the number of whole B tokens per whole A token.
//
// The amount is normalised to ConversionPrecision digits, multiplied by the integer and
// fractional parts of the rate separately, and denormalised to toDecimals. The result
// is truncated toward zero.
func ConvertAmount(amount string, fromDecimals, toDecimals int, rate string) (string, error) {
	const op = "convert"

	amount = strings.TrimSpace(amount)
	if strings.HasPrefix(amount, "-") {
		return "", violation(op, ErrNegativeAmount, "%q", amount)
	}
	if !amountRe.MatchString(amount) {
		return "", violation(op, ErrMalformed, "amount %q is not an integer", amount)
	}
	if len(amount) > ConversionPrecision {
		return "", violation(op, ErrPrecision, "amount has %d digits", len(amount))
	}
	for _, d := range []int{fromDecimals, toDecimals} {
		if d <= 0 || d > ConversionPrecision {
			return "", violation(op, ErrInvalidDecimals, "%d is not in [1, %d]", d, ConversionPrecision)
		}
	}

	rate = strings.TrimSpace(rate)
	if !rateRe.MatchString(rate) {
		return "", violation(op, ErrInvalidRate, "%q", rate)
	}
	intPart, fracPart, _ := strings.Cut(rate, ".")
	if len(intPart)+len(fracPart) > ConversionPrecision {
		return "", violation(op, ErrPrecision, "rate has %d digits", len(intPart)+len(fracPart))
	}

	rateInt, _ := new(big.Int).SetString(intPart, 10)
	rateFrac := new(big.Int)
	if fracPart != "" {
		rateFrac.SetString(fracPart, 10)
	}
	if rateInt.Sign() == 0 && rateFrac.Sign() == 0 {
		return "", violation(op, ErrInvalidRate, "%q", rate)
	}

	value, _ := new(big.Int).SetString(amount, 10)
	normalized := new(big.Int).Mul(value, pow10(ConversionPrecision-fromDecimals))

	product := new(big.Int).Mul(normalized, rateInt)
	if fracPart != "" {
		frac := new(big.Int).Mul(normalized, rateFrac)
		frac.Quo(frac, pow10(len(fracPart)))
		product.Add(product, frac)
	}

	return product.Quo(product, pow10(ConversionPrecision-toDecimals)).String(), nil
}
