// Package output renders decoded records and probe results for the terminal or
// as JSON. Every renderer writes to the given io.Writer.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════════"

func newTable(w io.Writer, headers ...any) table.Table {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	return table.New(headers...).WithHeaderFormatter(headerFmt).WithWriter(w)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold(title))
	fmt.Fprintln(w, rule)
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %s %v\n", cyan(fmt.Sprintf("%-12s", label+":")), value)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatSuccessRate(rate float64) string {
	str := fmt.Sprintf("%.1f%%", rate)
	switch {
	case rate >= 99.0:
		return green(str)
	case rate >= 90.0:
		return yellow(str)
	}
	return red(str)
}

func truncateHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:6] + "..." + hash[len(hash)-4:]
}

// DisableColors turns off color output, for non-TTY or JSON mode.
func DisableColors() {
	color.NoColor = true
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
