package decoder

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/signature"
)

// Log is a decoded event log. It always carries the raw log's position so callers
// never need to correlate it with the input again. When Source is SourceNone, Name
// is topic 0.
type Log struct {
	Index      uint                 `json:"logIndex"`
	Address    string               `json:"address"`
	TxHash     string               `json:"transactionHash,omitempty"`
	Name       string               `json:"name"`
	Signature  string               `json:"signature,omitempty"`
	Topic      string               `json:"topic"`
	TopicCount int                  `json:"topicCount"`
	Params     []Param              `json:"params"`
	Source     Source               `json:"source"`
	Transfer   string               `json:"transfer,omitempty"`
	Contract   *contract.Descriptor `json:"-"`
}

// Decoded reports whether an event fragment matched.
func (l *Log) Decoded() bool { return l.Source != SourceNone }

// DecodeLog decodes one log emitted by the contract at log.Address.
func (d *Decoder) DecodeLog(ctx context.Context, log *types.Log) (*Log, error) {
	desc, err := d.descriptor(ctx, log.Address.Hex())
	if err != nil {
		return nil, err
	}

	out := &Log{
		Index:      log.Index,
		Address:    desc.Address,
		Contract:   desc,
		Topic:      "0x",
		TopicCount: len(log.Topics),
	}
	if log.TxHash != (common.Hash{}) {
		out.TxHash = log.TxHash.Hex()
	}
	if len(log.Topics) > 0 {
		out.Topic = log.Topics[0].Hex()
	}
	out.Name = out.Topic

	if len(log.Topics) == 0 {
		return d.decodedLog(out), nil
	}
	if desc.HasABI() && d.tryLog(out, iface{source: SourceContract, abi: desc.ABI}, log) {
		return d.decodedLog(out), nil
	}
	in, err := d.resolve(ctx, signature.Event, out.Topic)
	if err != nil {
		return nil, err
	}
	d.tryLog(out, in, log)
	return d.decodedLog(out), nil
}

func (d *Decoder) decodedLog(l *Log) *Log {
	if l.Decoded() {
		l.Transfer = ClassifyTransfer(l.Signature, l.TopicCount)
	}
	d.metrics.Decoded("log", l.Source.String())
	return l
}

// DecodeLogs decodes logs concurrently. The result has the same order as logs.
func (d *Decoder) DecodeLogs(ctx context.Context, logs []*types.Log) ([]*Log, error) {
	out := make([]*Log, len(logs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, l := range logs {
		g.Go(func() error {
			dl, err := d.DecodeLog(gctx, l)
			if err != nil {
				return err
			}
			out[i] = dl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Decoder) tryLog(out *Log, in iface, log *types.Log) bool {
	var (
		name, sig string
		args      abi.Arguments
	)
	switch in.source {
	case SourceContract:
		ev, err := in.abi.EventByID(log.Topics[0])
		if err != nil {
			return false
		}
		name, sig, args = ev.RawName, ev.Sig, ev.Inputs
	case SourceFallback:
		frag, err := in.frag.withIndexed(len(log.Topics) - 1)
		if err != nil {
			d.lggr.Debugw("Fragment does not fit log", "topic", out.Topic, "err", err)
			return false
		}
		name, sig, args = frag.name, frag.signature(), frag.args
	default:
		return false
	}

	ps, err := unpackLog(args, log.Topics, log.Data)
	if err != nil {
		d.lggr.Debugw("Log does not match fragment", "signature", sig, "source", in.source, "err", err)
		return false
	}
	out.Name, out.Signature, out.Source, out.Params = name, sig, in.source, ps
	return true
}

// unpackLog decodes indexed arguments from topics[1:] and the rest from data, and
// returns them in declaration order.
func unpackLog(args abi.Arguments, topics []common.Hash, data []byte) ([]Param, error) {
	indexed := 0
	for _, a := range args {
		if a.Indexed {
			indexed++
		}
	}
	if indexed != len(topics)-1 {
		return nil, fmt.Errorf("event has %d indexed parameters, log has %d topics", indexed, len(topics))
	}

	values, err := args.NonIndexed().Unpack(data)
	if err != nil {
		return nil, err
	}

	out := make([]Param, 0, len(args))
	ti, vi := 1, 0
	for _, a := range args {
		var v any
		if a.Indexed {
			v, err = topicValue(a.Type, topics[ti])
			if err != nil {
				return nil, fmt.Errorf("topic %d: %w", ti, err)
			}
			ti++
		} else {
			v = values[vi]
			vi++
		}
		out = append(out, Param{
			Name:    a.Name,
			Type:    a.Type.String(),
			Value:   FormatValue(v),
			Indexed: a.Indexed,
			Raw:     v,
		})
	}
	return out, nil
}

// topicValue decodes an indexed value. Dynamic and composite values are stored as
// their keccak hash, which is returned as is.
func topicValue(t abi.Type, topic common.Hash) (any, error) {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return topic, nil
	}
	vals, err := abi.Arguments{{Type: t}}.Unpack(topic.Bytes())
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}
