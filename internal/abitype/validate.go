package abitype

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	unsignedRe = regexp.MustCompile(`^\d+$`)
	signedRe   = regexp.MustCompile(`^-?\d+$`)
	hexRe      = regexp.MustCompile(`^[0-9a-fA-F]*$`)
)

// Validate parses typeString and coerces text into a canonical Value. A malformed type
// string yields a *TypeError; input that does not satisfy the type yields a
// *ValidationError.
func Validate(typeString, text string) (Value, error) {
	return ValidateWithComponents(typeString, nil, text)
}

// ValidateWithComponents is Validate for types whose tuple components come from an
// ABI fragment.
func ValidateWithComponents(typeString string, components []abi.ArgumentMarshaling, text string) (Value, error) {
	t, err := ParseTypeWithComponents(typeString, components)
	if err != nil {
		return Value{}, err
	}
	return ValidateType(t, text)
}

// ValidateType coerces text into a Value of the already-parsed type t.
func ValidateType(t Type, text string) (Value, error) {
	switch t.Kind {
	case KindInt, KindUint:
		return validateInteger(t, text)
	case KindAddress:
		return validateAddress(t, text)
	case KindBool:
		return validateBool(t, text)
	case KindFixedBytes, KindBytes:
		return validateBytes(t, text)
	case KindString:
		return Value{Type: t, Str: text}, nil
	case KindFixedArray, KindArray:
		if t.base().Kind == KindString {
			return validateJSONArray(t, text)
		}
		return validateList(t, text)
	case KindTuple:
		return validateList(t, text)
	default:
		return Value{}, &TypeError{Type: t.String(), Detail: "cannot validate values of this kind"}
	}
}

// IntegerBounds returns the inclusive bounds a value of t must satisfy. A nil bound
// means unbounded. The signed range is symmetric: both limits have magnitude 2^B-1.
func IntegerBounds(t Type) (lo, hi *big.Int) {
	if t.Kind != KindInt && t.Kind != KindUint {
		panic(fmt.Sprintf("abitype: IntegerBounds called with non-integer type %s", t))
	}
	if t.Kind == KindUint {
		lo = new(big.Int)
	}
	if t.Bits == 0 {
		return lo, nil
	}
	hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(t.Bits)), big.NewInt(1))
	if t.Kind == KindInt {
		lo = new(big.Int).Neg(hi)
	}
	return lo, hi
}

func validateInteger(t Type, text string) (Value, error) {
	s := strings.TrimSpace(text)
	re := unsignedRe
	if t.Kind == KindInt {
		re = signedRe
	}
	if !re.MatchString(s) {
		if t.Kind == KindUint {
			return Value{}, invalid(ErrShape, t, text, "%q is not a non-negative integer", text)
		}
		return Value{}, invalid(ErrShape, t, text, "%q is not an integer", text)
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, invalid(ErrShape, t, text, "%q is not an integer", text)
	}

	lo, hi := IntegerBounds(t)
	if (lo != nil && v.Cmp(lo) < 0) || (hi != nil && v.Cmp(hi) > 0) {
		return Value{}, invalid(ErrRange, t, text, "%s is outside [%s, %s]", s, boundString(lo, "-inf"), boundString(hi, "+inf"))
	}
	return Value{Type: t, Int: v}, nil
}

func boundString(b *big.Int, unbounded string) string {
	if b == nil {
		return unbounded
	}
	return b.String()
}

func validateAddress(t Type, text string) (Value, error) {
	s := trimHexPrefix(strings.TrimSpace(text))
	if len(s) != 40 {
		return Value{}, invalid(ErrShape, t, text, "address must be 40 hex characters, got %d", len(s))
	}
	if !hexRe.MatchString(s) {
		return Value{}, invalid(ErrHex, t, text, "address contains non-hex characters")
	}
	return Value{Type: t, Address: "0x" + strings.ToLower(s)}, nil
}

func validateBool(t Type, text string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return Value{Type: t, Bool: true}, nil
	case "false":
		return Value{Type: t, Bool: false}, nil
	}
	return Value{}, invalid(ErrShape, t, text, "expected true or false")
}

func validateBytes(t Type, text string) (Value, error) {
	raw := strings.TrimSpace(text)
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return Value{}, invalid(ErrShape, t, text, "bytes must be 0x-prefixed hex")
	}
	s := raw[2:]
	if !hexRe.MatchString(s) {
		return Value{}, invalid(ErrHex, t, text, "bytes contain non-hex characters")
	}
	if len(s)%2 != 0 {
		return Value{}, invalid(ErrShape, t, text, "hex has an odd number of digits")
	}
	b, _ := hex.DecodeString(s)
	if t.Kind == KindFixedBytes && len(b) != t.Size {
		return Value{}, invalid(ErrLength, t, text, "expected %d bytes, got %d", t.Size, len(b))
	}
	return Value{Type: t, Bytes: b}, nil
}

// validateList handles the bracketed "[a, b, c]" form used for arrays and tuples.
func validateList(t Type, text string) (Value, error) {
	items, ok := splitList(text)
	if !ok {
		return Value{}, invalid(ErrShape, t, text, "expected a bracketed list like [a, b]")
	}

	want := -1
	switch t.Kind {
	case KindFixedArray:
		want = t.Length
	case KindTuple:
		want = len(t.Components)
	}
	if want >= 0 && len(items) != want {
		return Value{}, invalid(ErrLength, t, text, "expected %d elements, got %d", want, len(items))
	}

	elems := make([]Value, len(items))
	for i, item := range items {
		et := t.elemAt(i)
		v, err := ValidateType(et, item)
		if err != nil {
			return Value{}, wrapElement(t, text, i, err)
		}
		elems[i] = v
	}
	return Value{Type: t, Elems: elems}, nil
}

// validateJSONArray handles arrays whose innermost element is string. The text must be
// a JSON array of JSON strings so that commas and brackets inside values are unambiguous.
func validateJSONArray(t Type, text string) (Value, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return Value{}, invalid(ErrShape, t, text, "expected a JSON array of strings: %v", err)
	}
	if t.Kind == KindFixedArray && len(raw) != t.Length {
		return Value{}, invalid(ErrLength, t, text, "expected %d elements, got %d", t.Length, len(raw))
	}

	elems := make([]Value, len(raw))
	for i, item := range raw {
		et := *t.Elem
		var v Value
		if et.IsArray() {
			var err error
			if v, err = validateJSONArray(et, string(item)); err != nil {
				return Value{}, wrapElement(t, text, i, err)
			}
		} else {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return Value{}, invalid(ErrShape, t, text, "element %d is not a string", i)
			}
			v = Value{Type: et, Str: s}
		}
		elems[i] = v
	}
	return Value{Type: t, Elems: elems}, nil
}

func (t Type) elemAt(i int) Type {
	if t.Kind == KindTuple {
		return t.Components[i].Type
	}
	return *t.Elem
}

func wrapElement(t Type, text string, i int, err error) error {
	ve, ok := err.(*ValidationError)
	if !ok {
		return err
	}
	return invalid(ve.Kind, t, text, "element %d: %s", i, ve.Detail)
}

// splitList splits "[a, b, [c, d]]" into its top-level items. Nested brackets and
// parentheses are kept intact.
func splitList(text string) ([]string, bool) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}, true
	}

	var items []string
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(items, strings.TrimSpace(inner[start:])), true
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
