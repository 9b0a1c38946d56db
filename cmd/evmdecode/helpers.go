package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmagro/evm-decoder/internal/config"
	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/decoder"
	"github.com/dmagro/evm-decoder/internal/fetch"
	"github.com/dmagro/evm-decoder/internal/indexer"
	"github.com/dmagro/evm-decoder/internal/logger"
	"github.com/dmagro/evm-decoder/internal/metrics"
	"github.com/dmagro/evm-decoder/internal/output"
	"github.com/dmagro/evm-decoder/internal/reports"
	"github.com/dmagro/evm-decoder/internal/rpc"
	"github.com/dmagro/evm-decoder/internal/signature"
	"github.com/dmagro/evm-decoder/internal/sigsource"
)

// app is the wired decoding stack.
type app struct {
	cfg      *config.Config
	lggr     *zap.SugaredLogger
	gatherer prometheus.Gatherer
	sources  []signature.Source
	registry *signature.Registry
	factory  *contract.Factory
	decoder  *decoder.Decoder
	rpc      *rpc.Client // nil when rpc.url is not configured
}

// setup loads the config and builds the app once per process.
func (o *options) setup() (*app, error) {
	if o.app != nil {
		return o.app, nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	lggr, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	o.app = newApp(cfg, lggr, prometheus.NewRegistry())
	return o.app, nil
}

func newApp(cfg *config.Config, lggr *zap.SugaredLogger, reg *prometheus.Registry) *app {
	m := metrics.NewCollector(reg)
	sources := buildSources(cfg)

	registry := signature.NewRegistry(signature.Config{
		Source:    signature.Chain(sources),
		Overrides: cfg.Signatures.Overrides,
		Timeout:   cfg.Signatures.Timeout,
		Logger:    lggr,
		Metrics:   m,
	})

	fc := contract.FactoryConfig{Registry: registry, Timeout: cfg.Indexer.Timeout, Logger: lggr, Metrics: m}
	if cfg.Indexer.URL != "" {
		client := fetch.NewClient(cfg.Indexer.Timeout, cfg.Defaults.MaxRetries, cfg.Defaults.RetryDelay)
		if cfg.Indexer.APIKey != "" {
			client.SetHeader("X-API-Key", cfg.Indexer.APIKey)
		}
		fc.Fetcher = indexer.NewClient(cfg.Indexer.URL, client)
	}
	factory := contract.NewFactory(fc)

	a := &app{
		cfg:      cfg,
		lggr:     lggr,
		gatherer: reg,
		sources:  sources,
		registry: registry,
		factory:  factory,
		decoder: decoder.New(decoder.Config{
			Factory:  factory,
			Registry: registry,
			Logger:   lggr,
			Metrics:  m,
		}),
	}
	if cfg.RPC.URL != "" {
		a.rpc = rpc.NewClient("rpc", cfg.RPC.URL, cfg.RPC.Timeout, cfg.Defaults.MaxRetries, cfg.Defaults.RetryDelay)
	}
	return a
}

func buildSources(cfg *config.Config) []signature.Source {
	sources := make([]signature.Source, 0, len(cfg.Signatures.Sources))
	for _, s := range cfg.Signatures.Sources {
		client := fetch.NewClient(s.Timeout, cfg.Defaults.MaxRetries, cfg.Defaults.RetryDelay)
		var src signature.Source
		switch s.Type {
		case config.SourceOpenChain:
			src = sigsource.NewOpenChain(s.URL, client)
		case config.SourceFourByte:
			src = sigsource.NewFourByte(s.URL, client)
		default:
			continue
		}
		sources = append(sources, namedSource{Source: src, name: s.Name})
	}
	return sources
}

// namedSource reports the configured name instead of the source type.
type namedSource struct {
	signature.Source
	name string
}

func (n namedSource) Name() string { return n.name }

func (a *app) dumpMetrics(w io.Writer) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// decodeHex accepts hex with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if s == "0x" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

func parseAddress(s string) (string, error) {
	b, err := decodeHex(s)
	if err != nil || len(b) != 20 {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return hexutil.Encode(b), nil
}

// render writes v as JSON, or calls terminal when the format is terminal. With
// --save, v is also written to a report file named after the command.
func (o *options) render(cmd *cobra.Command, v any, terminal func(io.Writer)) error {
	w := cmd.OutOrStdout()
	if o.format == formatJSON {
		if err := output.RenderJSON(w, v); err != nil {
			return err
		}
	} else {
		terminal(w)
	}

	if o.saveDir == "" {
		return nil
	}
	path, err := reports.Save(o.saveDir, cmd.Name(), v)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	return nil
}
