package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/output"
)

func callCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "call <address> <calldata>",
		Short: "Decode call data sent to a contract",
		Long: `Decode call data against the target contract's ABI, falling back to the
signature registry when the ABI is unknown or does not match.

Examples:
  evmdecode call 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 0xa9059cbb000000...
  evmdecode call 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48 0x70a08231... --format json`,
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

			call, err := a.decoder.DecodeCall(cmd.Context(), address, data)
			if err != nil {
				return err
			}
			return opts.render(cmd, call, func(w io.Writer) {
				output.RenderCallTerminal(w, call)
			})
		},
	}
}
