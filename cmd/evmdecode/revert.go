package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/output"
)

func revertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <address> <data>",
		Short: "Decode revert data returned by a contract",
		Long: `Decode the return data of a failed call: Error(string), Panic(uint256),
or a custom error from the contract's ABI or the signature registry.

Example:
  evmdecode revert 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 0x08c379a0...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			data, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			a, err := opts.setup()
			if err != nil {
				return err
			}

			rev, err := a.decoder.DecodeRevert(cmd.Context(), address, data)
			if err != nil {
				return err
			}
			return opts.render(cmd, rev, func(w io.Writer) {
				output.RenderRevertTerminal(w, rev)
			})
		},
	}
}
