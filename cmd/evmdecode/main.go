// Command evmdecode decodes EVM call data, event logs and revert data, resolving
// interfaces from a contract indexer and public signature databases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/config"
	"github.com/dmagro/evm-decoder/internal/output"
)

const (
	formatTerminal = "terminal"
	formatJSON     = "json"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	format      string
	logLevel    string
	showMetrics bool
	saveDir     string

	app *app // built lazily by commands that need the network stack
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "evmdecode",
		Short: "Decode EVM transactions, logs and revert data",
		Long: `evmdecode turns raw EVM bytes into readable calls, events and revert reasons.

Interfaces come from the contract's own ABI when an indexer knows it, then from
local overrides and public signature databases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatTerminal && opts.format != formatJSON {
				return fmt.Errorf("invalid --format %q (expected %s or %s)", opts.format, formatTerminal, formatJSON)
			}
			if opts.format == formatJSON || !output.IsTerminal() {
				output.DisableColors()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.showMetrics && opts.app != nil {
				return opts.app.dumpMetrics(os.Stderr)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/evmdecode.yaml", "Config file path")
	cmd.PersistentFlags().StringVar(&opts.format, "format", formatTerminal, "Output format: terminal|json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level from the config")
	cmd.PersistentFlags().StringVar(&opts.saveDir, "save", "", "Also write the JSON result to a timestamped file in this directory")
	cmd.PersistentFlags().BoolVar(&opts.showMetrics, "metrics", false, "Print collected metrics to stderr on exit")

	cmd.AddCommand(
		callCmd(opts),
		txCmd(opts),
		revertCmd(opts),
		validateCmd(opts),
		convertCmd(opts),
		reciprocalCmd(opts),
		sourcesCmd(opts),
	)
	return cmd
}

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
