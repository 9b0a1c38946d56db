package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// fragment is a single function, event or error parsed from a text signature such
// as "transfer(address,uint256)" or "Transfer(address indexed from, address indexed
// to, uint256 value)".
type fragment struct {
	name string
	args abi.Arguments
	// explicitIndexed is set when the text carried "indexed" markers.
	explicitIndexed bool
}

func parseFragment(sig string) (*fragment, error) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return nil, fmt.Errorf("invalid signature %q", sig)
	}

	f := &fragment{name: strings.TrimSpace(sig[:open])}
	body := sig[open+1 : len(sig)-1]
	if strings.TrimSpace(body) == "" {
		return f, nil
	}

	for i, p := range splitTopLevel(body, ',') {
		m, indexed, err := paramMarshaling(p, fmt.Sprintf("arg%d", i))
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", sig, err)
		}
		t, err := abi.NewType(m.Type, "", m.Components)
		if err != nil {
			return nil, fmt.Errorf("signature %q: parse type %q: %w", sig, m.Type, err)
		}
		f.args = append(f.args, abi.Argument{Name: m.Name, Type: t, Indexed: indexed})
		f.explicitIndexed = f.explicitIndexed || indexed
	}
	return f, nil
}

// withIndexed returns a copy of f whose first n arguments are indexed. Text
// signatures from remote databases never say which event parameters are indexed,
// and indexed parameters always come first in practice.
func (f *fragment) withIndexed(n int) (*fragment, error) {
	if f.explicitIndexed {
		return f, nil
	}
	if n > len(f.args) {
		return nil, fmt.Errorf("%d indexed topics for %d parameters", n, len(f.args))
	}
	out := &fragment{name: f.name, args: make(abi.Arguments, len(f.args))}
	copy(out.args, f.args)
	for i := range out.args {
		out.args[i].Indexed = i < n
	}
	return out, nil
}

// paramMarshaling converts one parameter, e.g. "(uint256,address)[] orders" or
// "address indexed from", into an abi.ArgumentMarshaling.
func paramMarshaling(p, defaultName string) (abi.ArgumentMarshaling, bool, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return abi.ArgumentMarshaling{}, false, errors.New("empty parameter")
	}

	typ, rest := splitTypeToken(p)
	m := abi.ArgumentMarshaling{Name: defaultName}
	indexed := false
	for _, tok := range strings.Fields(rest) {
		switch tok {
		case "indexed":
			indexed = true
		case "memory", "calldata", "storage", "payable":
		default:
			m.Name = tok
		}
	}

	if !strings.HasPrefix(typ, "(") && !strings.HasPrefix(typ, "tuple(") {
		m.Type = typ
		return m, indexed, nil
	}

	typ = strings.TrimPrefix(typ, "tuple")
	closeIdx := matchingParen(typ)
	if closeIdx < 0 {
		return m, false, fmt.Errorf("unbalanced tuple %q", typ)
	}
	m.Type = "tuple" + typ[closeIdx+1:]
	inner := typ[1:closeIdx]
	if strings.TrimSpace(inner) == "" {
		return m, indexed, nil
	}
	for j, c := range splitTopLevel(inner, ',') {
		cm, _, err := paramMarshaling(c, fmt.Sprintf("field%d", j))
		if err != nil {
			return m, false, err
		}
		m.Components = append(m.Components, cm)
	}
	return m, indexed, nil
}

// splitTypeToken separates the type from the trailing "indexed"/name tokens.
func splitTypeToken(p string) (typ, rest string) {
	end := 0
	if strings.HasPrefix(p, "(") || strings.HasPrefix(p, "tuple(") {
		start := strings.IndexByte(p, '(')
		c := matchingParen(p[start:])
		if c < 0 {
			return p, ""
		}
		end = start + c + 1
	}
	if i := strings.IndexAny(p[end:], " \t\n"); i >= 0 {
		return p[:end+i], p[end+i:]
	}
	return p, ""
}

// matchingParen returns the index of the parenthesis closing s[0], or -1.
func matchingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s by sep outside of parentheses.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
