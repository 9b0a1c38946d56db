package probe

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/dmagro/evm-decoder/internal/logger"
	"github.com/dmagro/evm-decoder/internal/signature"
	"github.com/dmagro/evm-decoder/internal/stats"
)

// Status of a probed source.
const (
	StatusUp       = "UP"
	StatusSlow     = "SLOW"
	StatusDegraded = "DEGRADED"
	StatusDown     = "DOWN"
)

const (
	DefaultSamples       = 3
	DefaultInterval      = 50 * time.Millisecond
	DefaultSlowThreshold = time.Second
)

// Known signatures every public database carries. A source that answers them
// with anything else counts as a mismatch.
var probes = []struct {
	kind signature.Kind
	sig  string
}{
	{signature.Function, "transfer(address,uint256)"},
	{signature.Event, "Transfer(address,address,uint256)"},
}

type Options struct {
	Samples       int           // lookups per probe signature
	Interval      time.Duration // pause between lookups against one source
	SlowThreshold time.Duration // p95 above this marks a source SLOW
	Logger        *zap.SugaredLogger
}

// Health is the measured state of one source.
type Health struct {
	Name       string
	Status     string
	Attempts   int
	Successes  int
	Mismatches int
	Latency    stats.Summary // successful lookups only
	LastError  string
}

// SuccessRate is the percentage of attempts that returned the expected signature.
func (h Health) SuccessRate() float64 {
	if h.Attempts == 0 {
		return 0
	}
	return float64(h.Successes) / float64(h.Attempts) * 100
}

// Sources probes every source concurrently and returns their health ranked best
// first: by status, then by p95 latency, then by name.
func Sources(ctx context.Context, sources []signature.Source, opts Options) []Health {
	if opts.Samples <= 0 {
		opts.Samples = DefaultSamples
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = DefaultSlowThreshold
	}
	lggr := logger.OrNop(opts.Logger).Named("probe")

	results := ExecuteAll(ctx, sources, func(ctx context.Context, s signature.Source) (Health, error) {
		return probeSource(ctx, s, opts, lggr), nil
	})

	out := make([]Health, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	slices.SortStableFunc(out, compareHealth)
	return out
}

func probeSource(ctx context.Context, s signature.Source, opts Options, lggr *zap.SugaredLogger) Health {
	h := Health{Name: s.Name()}
	var latencies []time.Duration

	for i := 0; i < opts.Samples; i++ {
		for _, p := range probes {
			if ctx.Err() != nil {
				h.LastError = ctx.Err().Error()
				break
			}
			h.Attempts++

			start := time.Now()
			got, err := lookup(ctx, s, p.kind, signature.Hash(p.kind, p.sig))
			elapsed := time.Since(start)

			switch {
			case err != nil:
				h.LastError = err.Error()
				lggr.Debugw("Probe lookup failed", "source", h.Name, "kind", p.kind, "err", err)
			case got != p.sig:
				h.Mismatches++
				h.LastError = fmt.Sprintf("%s: got %q", p.kind, got)
			default:
				h.Successes++
				latencies = append(latencies, elapsed)
			}
		}
		if i < opts.Samples-1 && opts.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Interval):
			}
		}
	}

	h.Latency = stats.Summarize(latencies)
	h.Status = status(h, opts.SlowThreshold)
	return h
}

func lookup(ctx context.Context, s signature.Source, kind signature.Kind, hash string) (string, error) {
	if kind == signature.Event {
		return s.LookupEvent(ctx, hash)
	}
	return s.LookupFunction(ctx, hash)
}

func status(h Health, slow time.Duration) string {
	rate := h.SuccessRate()
	switch {
	case rate < 50:
		return StatusDown
	case rate < 90:
		return StatusDegraded
	case h.Latency.P95 > slow:
		return StatusSlow
	default:
		return StatusUp
	}
}

var statusRank = map[string]int{StatusUp: 0, StatusSlow: 1, StatusDegraded: 2, StatusDown: 3}

func compareHealth(a, b Health) int {
	if d := statusRank[a.Status] - statusRank[b.Status]; d != 0 {
		return d
	}
	if a.Latency.P95 != b.Latency.P95 {
		if a.Latency.P95 < b.Latency.P95 {
			return -1
		}
		return 1
	}
	switch {
	case a.Name < b.Name:
		return -1
	case a.Name > b.Name:
		return 1
	}
	return 0
}
