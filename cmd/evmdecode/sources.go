package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmagro/evm-decoder/internal/output"
	"github.com/dmagro/evm-decoder/internal/probe"
)

func sourcesCmd(opts *options) *cobra.Command {
	var (
		samples  = probe.DefaultSamples
		interval = probe.DefaultInterval
		slow     = probe.DefaultSlowThreshold
	)

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Probe the configured signature sources",
		Long: `Look up well-known signatures against every configured signature source
concurrently and report availability and latency, best source first.

Example:
  evmdecode sources --samples 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup()
			if err != nil {
				return err
			}

			health := probe.Sources(cmd.Context(), a.sources, probe.Options{
				Samples:       samples,
				Interval:      interval,
				SlowThreshold: slow,
				Logger:        a.lggr,
			})
			return opts.render(cmd, output.ProbeJSON(health), func(w io.Writer) {
				output.RenderProbeTerminal(w, health)
			})
		},
	}

	cmd.Flags().IntVar(&samples, "samples", samples, "Lookups per probe signature")
	cmd.Flags().DurationVar(&interval, "interval", interval, "Pause between lookups against one source")
	cmd.Flags().DurationVar(&slow, "slow", slow, "p95 latency above which a source is SLOW")
	return cmd
}
