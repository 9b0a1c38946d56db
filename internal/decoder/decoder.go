// Package decoder turns call data, logs and revert data into named, typed records.
//
// Each decode tries the contract's own ABI first, then a single fragment built from
// the signature registry, and finally returns a placeholder named after the raw
// selector or topic. Decoding failures are never returned as errors; only context
// cancellation is.
package decoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/logger"
	"github.com/dmagro/evm-decoder/internal/metrics"
	"github.com/dmagro/evm-decoder/internal/signature"
)

// Source records which interface produced a decoded record.
type Source int

const (
	SourceNone Source = iota
	SourceContract
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceContract:
		return "contract"
	case SourceFallback:
		return "fallback"
	}
	return "none"
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Param is one decoded argument, rendered as display text.
type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Value   string `json:"value"`
	Indexed bool   `json:"indexed,omitempty"`
	// Raw is the value as returned by the go-ethereum ABI decoder.
	Raw any `json:"-"`
}

// Call is decoded call data. When Source is SourceNone, Name is the raw selector.
type Call struct {
	Address   string               `json:"address"`
	Name      string               `json:"name"`
	Signature string               `json:"signature,omitempty"`
	Selector  string               `json:"selector"`
	Params    []Param              `json:"params"`
	Source    Source               `json:"source"`
	Contract  *contract.Descriptor `json:"-"`
}

// Decoded reports whether a fragment matched.
func (c *Call) Decoded() bool { return c.Source != SourceNone }

// Config configures a Decoder.
type Config struct {
	// Factory supplies contract descriptors. Nil decodes every address as a
	// contract without an ABI.
	Factory *contract.Factory
	// Registry resolves selectors and topics when the contract ABI does not match.
	Registry *signature.Registry
	// Concurrency bounds DecodeLogs; zero means DefaultConcurrency.
	Concurrency int
	Logger      *zap.SugaredLogger
	Metrics     *metrics.Collector
}

// DefaultConcurrency bounds DecodeLogs when Config.Concurrency is zero.
const DefaultConcurrency = 8

// Decoder decodes call data, logs and transactions against contract ABIs and the
// signature registry. It is safe for concurrent use.
type Decoder struct {
	factory     *contract.Factory
	registry    *signature.Registry
	concurrency int
	lggr        *zap.SugaredLogger
	metrics     *metrics.Collector
}

// New returns a Decoder configured by cfg.
func New(cfg Config) *Decoder {
	d := &Decoder{
		factory:     cfg.Factory,
		registry:    cfg.Registry,
		concurrency: cfg.Concurrency,
		lggr:        logger.OrNop(cfg.Logger).Named("decoder"),
		metrics:     cfg.Metrics,
	}
	if d.concurrency <= 0 {
		d.concurrency = DefaultConcurrency
	}
	return d
}

// iface is the interface a single decode attempt runs against: nothing, the
// contract's effective ABI, or one fragment resolved from the registry.
type iface struct {
	source Source
	abi    *abi.ABI
	frag   *fragment
}

func (d *Decoder) descriptor(ctx context.Context, address string) (*contract.Descriptor, error) {
	if d.factory == nil {
		return contract.Empty(address), nil
	}
	return d.factory.Get(ctx, address)
}

// resolve returns the fallback interface for hash, or a SourceNone iface when the
// registry cannot name it.
func (d *Decoder) resolve(ctx context.Context, kind signature.Kind, hash string) (iface, error) {
	if d.registry == nil {
		return iface{}, nil
	}
	e, err := d.registry.Resolve(ctx, kind, hash)
	if err != nil {
		return iface{}, err
	}
	if !e.Resolved {
		return iface{}, nil
	}
	frag, err := parseFragment(e.Signature)
	if err != nil {
		d.lggr.Warnw("Ignoring unparseable signature", "hash", hash, "signature", e.Signature, "err", err)
		return iface{}, nil
	}
	return iface{source: SourceFallback, frag: frag}, nil
}

// DecodeCall decodes transaction input sent to address.
func (d *Decoder) DecodeCall(ctx context.Context, address string, data []byte) (*Call, error) {
	desc, err := d.descriptor(ctx, address)
	if err != nil {
		return nil, err
	}

	call := &Call{
		Address:  desc.Address,
		Contract: desc,
		Selector: hexutil.Encode(prefix(data, 4)),
	}
	call.Name = call.Selector

	if desc.HasABI() {
		if d.tryCall(call, iface{source: SourceContract, abi: desc.ABI}, data) {
			return d.decodedCall(call), nil
		}
	}
	if len(data) >= 4 {
		in, err := d.resolve(ctx, signature.Function, call.Selector)
		if err != nil {
			return nil, err
		}
		if d.tryCall(call, in, data) {
			return d.decodedCall(call), nil
		}
	}
	return d.decodedCall(call), nil
}

func (d *Decoder) decodedCall(call *Call) *Call {
	d.metrics.Decoded("call", call.Source.String())
	return call
}

func (d *Decoder) tryCall(call *Call, in iface, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	var (
		name, sig string
		args      abi.Arguments
	)
	switch in.source {
	case SourceContract:
		m, err := in.abi.MethodById(data[:4])
		if err != nil {
			return false
		}
		name, sig, args = m.RawName, m.Sig, m.Inputs
	case SourceFallback:
		name, sig, args = in.frag.name, in.frag.signature(), in.frag.args
	default:
		return false
	}

	values, err := args.Unpack(data[4:])
	if err != nil {
		d.lggr.Debugw("Call data does not match fragment", "signature", sig, "source", in.source, "err", err)
		return false
	}
	call.Name, call.Signature, call.Source = name, sig, in.source
	call.Params = params(args, values)
	return true
}

// signature returns the canonical text signature of the fragment.
func (f *fragment) signature() string {
	types := make([]string, len(f.args))
	for i, a := range f.args {
		types[i] = a.Type.String()
	}
	return fmt.Sprintf("%s(%s)", f.name, strings.Join(types, ","))
}

func params(args abi.Arguments, values []any) []Param {
	out := make([]Param, 0, len(args))
	for i, a := range args {
		if i >= len(values) {
			break
		}
		out = append(out, Param{
			Name:    a.Name,
			Type:    a.Type.String(),
			Value:   FormatValue(values[i]),
			Indexed: a.Indexed,
			Raw:     values[i],
		})
	}
	return out
}

func prefix(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}
