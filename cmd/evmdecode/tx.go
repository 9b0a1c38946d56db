package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/output"
	"github.com/dmagro/evm-decoder/internal/rpc"
)

func txCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hash>",
		Short: "Fetch and decode a transaction with its logs",
		Long: `Fetch a transaction and its receipt from the configured RPC node and decode
the call, every emitted log and, for failed transactions, the revert reason.

Example:
  evmdecode tx 0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeHex(args[0])
			if err != nil || len(b) != common.HashLength {
				return fmt.Errorf("invalid transaction hash %q", args[0])
			}
			a, err := opts.setup()
			if err != nil {
				return err
			}
			if a.rpc == nil {
				return fmt.Errorf("rpc.url is not configured")
			}

			rep, err := a.decodeTx(cmd.Context(), common.BytesToHash(b))
			if err != nil {
				return err
			}
			return opts.render(cmd, rep, func(w io.Writer) {
				output.RenderTxTerminal(w, rep)
			})
		},
	}
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func (a *app) decodeTx(ctx context.Context, hash common.Hash) (*output.TxReport, error) {
	tx, err := a.rpc.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	rep := &output.TxReport{
		Hash:   hash.Hex(),
		From:   lowerHex(tx.From),
		Status: output.TxPending,
	}
	if tx.To != nil {
		rep.To = lowerHex(*tx.To)
		if rep.Call, err = a.decoder.DecodeCall(ctx, rep.To, tx.Input); err != nil {
			return nil, err
		}
	}

	receipt, err := a.rpc.TransactionReceipt(ctx, hash)
	switch {
	case errors.Is(err, rpc.ErrNotFound):
		return rep, nil
	case err != nil:
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}

	rep.Status = output.TxSuccess
	if rep.Logs, err = a.decoder.DecodeLogs(ctx, receipt.Logs); err != nil {
		return nil, err
	}
	if !receipt.Failed() {
		return rep, nil
	}

	rep.Status = output.TxFailed
	if tx.To == nil {
		return rep, nil
	}
	data, err := a.rpc.RevertData(ctx, tx)
	if err != nil {
		a.lggr.Warnw("Could not replay failed transaction", "tx", rep.Hash, "err", err)
		return rep, nil
	}
	if data != nil {
		if rep.Revert, err = a.decoder.DecodeRevert(ctx, rep.To, data); err != nil {
			return nil, err
		}
	}
	return rep, nil
}
