package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/abitype"
	"github.com/dmagro/evm-decoder/internal/output"
)

var errInvalidInput = errors.New("one or more inputs are invalid")

func validateCmd(opts *options) *cobra.Command {
	var components string

	cmd := &cobra.Command{
		Use:   "validate <type> <value> [<type> <value>...]",
		Short: "Check typed values against Solidity types",
		Long: `Validate text input against Solidity types and print the canonical value and
its ABI encoding. Tuples take their components as a JSON ABI fragment.

Examples:
  evmdecode validate uint8 255 address 0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48
  evmdecode validate 'uint16[2]' '[1, 2]'
  evmdecode validate tuple '[1, true]' --components '[{"name":"a","type":"uint8"},{"name":"b","type":"bool"}]'`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <type> <value> pairs, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var comps []abi.ArgumentMarshaling
			if components != "" {
				if err := json.Unmarshal([]byte(components), &comps); err != nil {
					return fmt.Errorf("invalid --components: %w", err)
				}
			}

			results := make([]output.Validation, 0, len(args)/2)
			ok := true
			for i := 0; i < len(args); i += 2 {
				typ, input := args[i], args[i+1]
				v, err := abitype.ValidateWithComponents(typ, comps, input)
				r := output.NewValidation(typ, input, v, err)
				ok = ok && r.Valid
				results = append(results, r)
			}

			if err := opts.render(cmd, results, func(w io.Writer) {
				output.RenderValidationTerminal(w, results)
			}); err != nil {
				return err
			}
			if !ok {
				return errInvalidInput
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&components, "components", "", "JSON components for tuple types")
	return cmd
}
