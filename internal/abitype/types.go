// Package abitype classifies Solidity type strings and validates free-text user input
// against them, producing canonical typed values that can be ABI-encoded.
//
// Classification is pure string matching: no network access and no ABI JSON is needed
// except for tuple components, which the caller supplies from its ABI fragment.
package abitype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Kind identifies the shape of a Solidity type.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindUint
	KindAddress
	KindBool
	KindFixedBytes
	KindBytes
	KindString
	KindFixedArray
	KindArray
	KindTuple
)

var kindNames = map[Kind]string{
	KindInvalid:    "invalid",
	KindInt:        "int",
	KindUint:       "uint",
	KindAddress:    "address",
	KindBool:       "bool",
	KindFixedBytes: "bytesN",
	KindBytes:      "bytes",
	KindString:     "string",
	KindFixedArray: "fixed-array",
	KindArray:      "array",
	KindTuple:      "tuple",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is a parsed Solidity type descriptor.
type Type struct {
	Kind       Kind
	Bits       int // int/uint width; 0 when the type string carries no width
	Size       int // bytesN width in bytes
	Length     int // fixed array length
	Elem       *Type
	Components []Component
}

// Component is a named member of a tuple type.
type Component struct {
	Name string
	Type Type
}

var (
	arraySuffixRe = regexp.MustCompile(`^(.+)\[(\d*)\]$`)
	integerRe     = regexp.MustCompile(`^(u?)int(\d*)$`)
	fixedBytesRe  = regexp.MustCompile(`^bytes(\d+)$`)
)

// ParseType classifies a Solidity type string. Tuple types are rejected; use
// ParseTypeWithComponents when the ABI fragment supplies components.
func ParseType(s string) (Type, error) {
	return ParseTypeWithComponents(s, nil)
}

// ParseTypeWithComponents classifies a Solidity type string, resolving any tuple base
// type from the given ABI components.
func ParseTypeWithComponents(s string, components []abi.ArgumentMarshaling) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Type{}, &TypeError{Type: s, Detail: "empty type string"}
	}

	// The outermost array suffix is the last one: T[2][] is a dynamic array of T[2].
	if m := arraySuffixRe.FindStringSubmatch(s); m != nil {
		elem, err := ParseTypeWithComponents(m[1], components)
		if err != nil {
			return Type{}, err
		}
		if m[2] == "" {
			return Type{Kind: KindArray, Elem: &elem}, nil
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n <= 0 {
			return Type{}, &TypeError{Type: s, Detail: "fixed array length must be a positive integer"}
		}
		return Type{Kind: KindFixedArray, Length: n, Elem: &elem}, nil
	}

	switch s {
	case "address":
		return Type{Kind: KindAddress}, nil
	case "bool":
		return Type{Kind: KindBool}, nil
	case "string":
		return Type{Kind: KindString}, nil
	case "bytes":
		return Type{Kind: KindBytes}, nil
	}

	if m := fixedBytesRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 || n > 32 {
			return Type{}, &TypeError{Type: s, Detail: "bytesN width must be between 1 and 32"}
		}
		return Type{Kind: KindFixedBytes, Size: n}, nil
	}

	if m := integerRe.FindStringSubmatch(s); m != nil {
		kind := KindInt
		if m[1] == "u" {
			kind = KindUint
		}
		if m[2] == "" {
			return Type{Kind: kind}, nil
		}
		bits, _ := strconv.Atoi(m[2])
		if bits == 0 || bits%8 != 0 || bits > 256 {
			return Type{}, &TypeError{Type: s, Detail: "integer width must be a multiple of 8 between 8 and 256"}
		}
		return Type{Kind: kind, Bits: bits}, nil
	}

	if s == "tuple" || strings.HasPrefix(s, "(") {
		if len(components) == 0 {
			return Type{}, &TypeError{Type: s, Detail: "tuple type requires components"}
		}
		comps := make([]Component, len(components))
		for i, c := range components {
			ct, err := ParseTypeWithComponents(c.Type, c.Components)
			if err != nil {
				return Type{}, err
			}
			comps[i] = Component{Name: c.Name, Type: ct}
		}
		return Type{Kind: KindTuple, Components: comps}, nil
	}

	return Type{}, &TypeError{Type: s, Detail: "unrecognized type"}
}

// String returns the canonical type string. Unsized integers keep their bare form.
func (t Type) String() string {
	switch t.Kind {
	case KindInt, KindUint:
		name := "int"
		if t.Kind == KindUint {
			name = "uint"
		}
		if t.Bits > 0 {
			return name + strconv.Itoa(t.Bits)
		}
		return name
	case KindFixedBytes:
		return "bytes" + strconv.Itoa(t.Size)
	case KindFixedArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.Length) + "]"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindTuple:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.Type.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return t.Kind.String()
	}
}

// IsArray reports whether t is a fixed or dynamic array.
func (t Type) IsArray() bool {
	return t.Kind == KindArray || t.Kind == KindFixedArray
}

// base returns the innermost non-array element type.
func (t Type) base() Type {
	for t.IsArray() {
		t = *t.Elem
	}
	return t
}

// abiString renders t in the form go-ethereum's abi.NewType accepts: sized integers
// and "tuple" in place of parenthesised component lists.
func (t Type) abiString() string {
	switch t.Kind {
	case KindInt, KindUint:
		bits := t.Bits
		if bits == 0 {
			bits = 256
		}
		if t.Kind == KindInt {
			return "int" + strconv.Itoa(bits)
		}
		return "uint" + strconv.Itoa(bits)
	case KindFixedArray:
		return t.Elem.abiString() + "[" + strconv.Itoa(t.Length) + "]"
	case KindArray:
		return t.Elem.abiString() + "[]"
	case KindTuple:
		return "tuple"
	default:
		return t.String()
	}
}

func (t Type) marshaling(name string) abi.ArgumentMarshaling {
	arg := abi.ArgumentMarshaling{Name: name, Type: t.abiString()}
	if b := t.base(); b.Kind == KindTuple {
		arg.Components = make([]abi.ArgumentMarshaling, len(b.Components))
		for i, c := range b.Components {
			cname := c.Name
			if cname == "" {
				cname = fmt.Sprintf("field%d", i)
			}
			arg.Components[i] = c.Type.marshaling(cname)
		}
	}
	return arg
}

// ABIType converts t into a go-ethereum ABI type.
func (t Type) ABIType() (abi.Type, error) {
	m := t.marshaling("")
	return abi.NewType(m.Type, "", m.Components)
}
