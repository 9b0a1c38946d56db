package fixedpoint

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatTokenAmount formats a raw token amount with decimals, e.g. 1234567890123 with
// 6 decimals and symbol USDC becomes "1,234,567.890123 USDC". An empty symbol drops the
// suffix.
func FormatTokenAmount(raw *big.Int, decimals int, symbol string) string {
	return strings.TrimSpace(FormatUnits(raw, decimals) + " " + symbol)
}

// FormatUnits renders raw / 10^decimals with all decimals shown and thousand
// separators on the whole part.
func FormatUnits(raw *big.Int, decimals int) string {
	if decimals <= 0 {
		if raw == nil {
			return "0"
		}
		return addThousandSeparators(raw.String())
	}
	if raw == nil || raw.Sign() == 0 {
		return fmt.Sprintf("0.%s", strings.Repeat("0", decimals))
	}

	sign := ""
	digits := raw.String()
	if raw.Sign() < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	split := len(digits) - decimals
	return sign + addThousandSeparators(digits[:split]) + "." + digits[split:]
}

func addThousandSeparators(s string) string {
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
