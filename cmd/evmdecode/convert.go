package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/fixedpoint"
	"github.com/dmagro/evm-decoder/internal/output"
)

func convertCmd(opts *options) *cobra.Command {
	var (
		fromDecimals int
		toDecimals   int
		rate         string
	)

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert a raw token amount between denominations",
		Long: `Convert an integer amount in token A's smallest unit into token B's smallest
unit, given the number of whole B tokens per whole A token. The arithmetic is
exact; the result is truncated toward zero.

Example:
  evmdecode convert 1500000 --from-decimals 6 --to-decimals 18 --rate 0.0004`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fixedpoint.ConvertAmount(args[0], fromDecimals, toDecimals, rate)
			c := output.NewConversion("convert", []string{args[0], rate}, result, err)
			if err == nil {
				if raw, ok := new(big.Int).SetString(result, 10); ok {
					c.Formatted = fixedpoint.FormatUnits(raw, toDecimals)
				}
			}
			if rerr := opts.render(cmd, c, func(w io.Writer) {
				output.RenderConversionTerminal(w, c)
			}); rerr != nil {
				return rerr
			}
			return err
		},
	}

	cmd.Flags().IntVar(&fromDecimals, "from-decimals", 18, "Decimals of the source token")
	cmd.Flags().IntVar(&toDecimals, "to-decimals", 18, "Decimals of the target token")
	cmd.Flags().StringVar(&rate, "rate", "1", "Whole target tokens per whole source token")
	return cmd
}

func reciprocalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reciprocal <rate>",
		Short: "Invert an exchange rate exactly",
		Long: fmt.Sprintf(`Compute 1 / rate with %d fractional digits, truncated.

Example:
  evmdecode reciprocal 2500`, fixedpoint.DivisionPrecision),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fixedpoint.Reciprocal(args[0])
			c := output.NewConversion("reciprocal", args, result, err)
			if rerr := opts.render(cmd, c, func(w io.Writer) {
				output.RenderConversionTerminal(w, c)
			}); rerr != nil {
				return rerr
			}
			return err
		},
	}
}
