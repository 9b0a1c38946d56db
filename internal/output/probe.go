package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmagro/evm-decoder/internal/probe"
)

// JSONProbe is the machine-readable form of probe.Health.
type JSONProbe struct {
	Name        string      `json:"name"`
	Status      string      `json:"status"`
	SuccessRate float64     `json:"success_rate"`
	Attempts    int         `json:"attempts"`
	Mismatches  int         `json:"mismatches,omitempty"`
	LatencyMs   JSONLatency `json:"latency_ms"`
	LastError   string      `json:"last_error,omitempty"`
}

type JSONLatency struct {
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// ProbeJSON converts probe results for RenderJSON.
func ProbeJSON(health []probe.Health) []JSONProbe {
	out := make([]JSONProbe, 0, len(health))
	for _, h := range health {
		out = append(out, JSONProbe{
			Name:        h.Name,
			Status:      h.Status,
			SuccessRate: h.SuccessRate(),
			Attempts:    h.Attempts,
			Mismatches:  h.Mismatches,
			LatencyMs: JSONLatency{
				Avg: millis(h.Latency.Mean),
				P50: millis(h.Latency.P50),
				P95: millis(h.Latency.P95),
				P99: millis(h.Latency.P99),
				Max: millis(h.Latency.Max),
			},
			LastError: h.LastError,
		})
	}
	return out
}

func formatStatus(status string) string {
	switch status {
	case probe.StatusUp:
		return green("✓ UP")
	case probe.StatusSlow:
		return yellow("⚠ SLOW")
	case probe.StatusDegraded:
		return yellow("⚠ DEG")
	case probe.StatusDown:
		return red("✗ DOWN")
	}
	return "?"
}

// RenderProbeTerminal writes a table of source health, best source first.
func RenderProbeTerminal(w io.Writer, health []probe.Health) {
	heading(w, "Signature Sources")
	if len(health) == 0 {
		fmt.Fprintln(w, yellow("  no remote sources configured"))
		fmt.Fprintln(w)
		return
	}

	tbl := newTable(w, "Source", "Status", "p50", "p95", "Max", "Success")
	var up []string
	for _, h := range health {
		tbl.AddRow(
			h.Name,
			formatStatus(h.Status),
			formatDuration(h.Latency.P50),
			formatDuration(h.Latency.P95),
			formatDuration(h.Latency.Max),
			formatSuccessRate(h.SuccessRate()),
		)
		if h.Status == probe.StatusUp || h.Status == probe.StatusSlow {
			up = append(up, h.Name)
		}
	}
	tbl.Print()
	fmt.Fprintln(w)

	for _, h := range health {
		if h.LastError != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", red("✗"), h.Name, h.LastError)
		}
	}
	if len(up) > 0 {
		fmt.Fprintf(w, "  Suggested order: %s\n", strings.Join(up, " → "))
	}
	fmt.Fprintln(w)
}
