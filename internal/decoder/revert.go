package decoder

import (
	"bytes"
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/dmagro/evm-decoder/internal/revert"
	"github.com/dmagro/evm-decoder/internal/signature"
)

// Revert kinds beyond those of package revert.
const (
	RevertNone   = "none"
	RevertError  = "error"
	RevertPanic  = "panic"
	RevertCustom = "custom"
)

// Revert is decoded revert data.
type Revert struct {
	Kind   string  `json:"kind"`
	Reason string  `json:"reason"`
	Name   string  `json:"name,omitempty"`
	Params []Param `json:"params,omitempty"`
	Source Source  `json:"source"`
}

// DecodeRevert decodes the return data of a failed call to address. Error(string)
// and Panic(uint256) are recognized first; otherwise the contract's custom errors
// and then the registry's function selector space are tried. Unrecognized data
// yields an empty reason.
func (d *Decoder) DecodeRevert(ctx context.Context, address string, data []byte) (*Revert, error) {
	r := revert.Decode(data)
	switch r.Kind {
	case revert.KindError:
		return d.decodedRevert(&Revert{Kind: RevertError, Reason: r.Message}), nil
	case revert.KindPanic:
		return d.decodedRevert(&Revert{Kind: RevertPanic, Reason: r.Message}), nil
	}

	out := &Revert{Kind: RevertNone}
	if len(data) < 4 {
		return d.decodedRevert(out), nil
	}

	desc, err := d.descriptor(ctx, address)
	if err != nil {
		return nil, err
	}
	if desc.HasABI() {
		for _, e := range desc.ABI.Errors {
			if !bytes.Equal(e.ID[:4], data[:4]) {
				continue
			}
			if d.tryRevert(out, e.Name, e.Sig, e.Inputs, data[4:], SourceContract) {
				return d.decodedRevert(out), nil
			}
		}
	}

	in, err := d.resolve(ctx, signature.Function, hexutil.Encode(data[:4]))
	if err != nil {
		return nil, err
	}
	if in.source == SourceFallback {
		d.tryRevert(out, in.frag.name, in.frag.signature(), in.frag.args, data[4:], SourceFallback)
	}
	return d.decodedRevert(out), nil
}

func (d *Decoder) tryRevert(out *Revert, name, sig string, args abi.Arguments, data []byte, src Source) bool {
	values, err := args.Unpack(data)
	if err != nil {
		d.lggr.Debugw("Revert data does not match error", "signature", sig, "err", err)
		return false
	}
	ps := params(args, values)
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Value
	}
	out.Kind, out.Name, out.Params, out.Source = RevertCustom, name, ps, src
	out.Reason = name + "(" + strings.Join(parts, ", ") + ")"
	return true
}

func (d *Decoder) decodedRevert(r *Revert) *Revert {
	d.metrics.Decoded("revert", r.Kind)
	return r
}
