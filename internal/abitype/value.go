package abitype

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Value is a validated, canonical value of Type. Exactly one payload field is
// meaningful, selected by Type.Kind.
type Value struct {
	Type    Type
	Int     *big.Int // int, uint
	Bool    bool     // bool
	Address string   // address, lowercase 0x-prefixed
	Bytes   []byte   // bytes, bytesN
	Str     string   // string
	Elems   []Value  // arrays and tuples
}

// Format renders v in the textual form Validate accepts, so that
// Validate(t, v.Format()) reproduces v.
func (v Value) Format() string {
	switch v.Type.Kind {
	case KindInt, KindUint:
		if v.Int == nil {
			return "0"
		}
		return v.Int.String()
	case KindAddress:
		return v.Address
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindFixedBytes, KindBytes:
		return hexutil.Encode(v.Bytes)
	case KindString:
		return v.Str
	case KindFixedArray, KindArray:
		if v.Type.base().Kind == KindString {
			out, _ := json.Marshal(v.stringTree())
			return string(out)
		}
		return v.formatList()
	case KindTuple:
		return v.formatList()
	}
	return ""
}

func (v Value) formatList() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.Format()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Value) stringTree() any {
	if !v.Type.IsArray() {
		return v.Str
	}
	out := make([]any, len(v.Elems))
	for i, e := range v.Elems {
		out[i] = e.stringTree()
	}
	return out
}
