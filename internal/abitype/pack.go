package abitype

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// Pack ABI-encodes values as a parameter list.
func Pack(values ...Value) ([]byte, error) {
	args, goValues, err := arguments(values)
	if err != nil {
		return nil, err
	}
	return args.Pack(goValues...)
}

// PackCall ABI-encodes values as call data for function name, prefixed with the
// 4-byte selector of name's canonical signature.
func PackCall(name string, values ...Value) ([]byte, error) {
	args, goValues, err := arguments(values)
	if err != nil {
		return nil, err
	}
	method := abi.NewMethod(name, name, abi.Function, "nonpayable", false, false, args, nil)
	packed, err := args.Pack(goValues...)
	if err != nil {
		return nil, err
	}
	return append(method.ID, packed...), nil
}

func arguments(values []Value) (abi.Arguments, []any, error) {
	args := make(abi.Arguments, len(values))
	goValues := make([]any, len(values))
	for i, v := range values {
		at, err := v.Type.ABIType()
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d: %w", i, err)
		}
		rv, err := toGo(at, v)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: at}
		goValues[i] = rv.Interface()
	}
	return args, goValues, nil
}

// toGo builds the Go value go-ethereum expects for t from a validated Value.
func toGo(t abi.Type, v Value) (reflect.Value, error) {
	rv := reflect.New(t.GetType()).Elem()
	switch t.T {
	case abi.IntTy, abi.UintTy:
		if v.Int == nil {
			return rv, fmt.Errorf("missing integer value")
		}
		if err := fitsWidth(t, v.Int); err != nil {
			return rv, err
		}
		// Only 8, 16, 32 and 64 bit widths map to native integers.
		if rv.Type() == bigIntType {
			rv.Set(reflect.ValueOf(new(big.Int).Set(v.Int)))
		} else if t.T == abi.IntTy {
			rv.SetInt(v.Int.Int64())
		} else {
			rv.SetUint(v.Int.Uint64())
		}
	case abi.BoolTy:
		rv.SetBool(v.Bool)
	case abi.StringTy:
		rv.SetString(v.Str)
	case abi.AddressTy:
		rv.Set(reflect.ValueOf(common.HexToAddress(v.Address)))
	case abi.BytesTy:
		rv.SetBytes(v.Bytes)
	case abi.FixedBytesTy:
		reflect.Copy(rv, reflect.ValueOf(v.Bytes))
	case abi.SliceTy:
		rv = reflect.MakeSlice(t.GetType(), len(v.Elems), len(v.Elems))
		fallthrough
	case abi.ArrayTy:
		for i, e := range v.Elems {
			ev, err := toGo(*t.Elem, e)
			if err != nil {
				return rv, fmt.Errorf("element %d: %w", i, err)
			}
			rv.Index(i).Set(ev)
		}
	case abi.TupleTy:
		for i, e := range v.Elems {
			ev, err := toGo(*t.TupleElems[i], e)
			if err != nil {
				return rv, fmt.Errorf("field %d: %w", i, err)
			}
			rv.Field(i).Set(ev)
		}
	default:
		return rv, fmt.Errorf("unsupported abi type %s", t)
	}
	return rv, nil
}

// fitsWidth checks the two's-complement range of the encoded width. Validation uses a
// wider symmetric bound for signed integers, so a valid value may still not encode.
func fitsWidth(t abi.Type, v *big.Int) error {
	bits := uint(t.Size)
	if t.T == abi.UintTy {
		if v.Sign() < 0 || v.BitLen() > int(bits) {
			return fmt.Errorf("%s does not fit in %s", v, t)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(new(big.Int).Neg(limit)) < 0 || v.Cmp(limit) >= 0 {
		return fmt.Errorf("%s does not fit in %s", v, t)
	}
	return nil
}
