package output

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/dmagro/evm-decoder/internal/contract"
	"github.com/dmagro/evm-decoder/internal/decoder"
	"github.com/dmagro/evm-decoder/internal/fixedpoint"
)

// Transaction statuses of a TxReport.
const (
	TxSuccess = "success"
	TxFailed  = "failed"
	TxPending = "pending"
)

// TxReport is everything decoded about one transaction.
type TxReport struct {
	Hash   string          `json:"hash"`
	From   string          `json:"from"`
	To     string          `json:"to,omitempty"`
	Status string          `json:"status"`
	Call   *decoder.Call   `json:"call,omitempty"`
	Revert *decoder.Revert `json:"revert,omitempty"`
	Logs   []*decoder.Log  `json:"logs"`
}

func formatSource(s decoder.Source) string {
	switch s {
	case decoder.SourceContract:
		return green(s.String())
	case decoder.SourceFallback:
		return yellow(s.String())
	}
	return red(s.String())
}

func formatTxStatus(status string) string {
	switch status {
	case TxSuccess:
		return green("✓ " + status)
	case TxFailed:
		return red("✗ " + status)
	}
	return yellow(status)
}

func renderParams(w io.Writer, params []decoder.Param) {
	if len(params) == 0 {
		return
	}
	tbl := newTable(w, "#", "Name", "Type", "Value")
	for i, p := range params {
		name := p.Name
		if p.Indexed {
			name += faint(" (indexed)")
		}
		tbl.AddRow(i, name, p.Type, p.Value)
	}
	tbl.Print()
}

// tokenAmount formats the value of an ERC-20 Transfer using the emitting
// contract's decimals and symbol. It returns "" when either is unknown.
func tokenAmount(l *decoder.Log) string {
	if l.Contract == nil || l.Contract.Properties.Decimals == nil || len(l.Params) == 0 {
		return ""
	}
	raw, ok := l.Params[len(l.Params)-1].Raw.(*big.Int)
	if !ok {
		return ""
	}
	p := l.Contract.Properties
	return fixedpoint.FormatTokenAmount(raw, int(*p.Decimals), p.Symbol)
}

// RenderCallTerminal writes decoded call data.
func RenderCallTerminal(w io.Writer, call *decoder.Call) {
	heading(w, "Call")
	target := call.Address
	if call.Contract != nil && call.Contract.Name != "" {
		target = fmt.Sprintf("%s (%s)", call.Address, call.Contract.Name)
	}
	field(w, "Contract", target)
	if call.Decoded() {
		field(w, "Function", call.Signature)
	} else {
		field(w, "Function", red("unknown"))
	}
	field(w, "Selector", call.Selector)
	field(w, "Source", formatSource(call.Source))
	fmt.Fprintln(w)
	renderParams(w, call.Params)
}

// RenderLogsTerminal writes a summary table of logs followed by the parameters of
// each decoded one.
func RenderLogsTerminal(w io.Writer, logs []*decoder.Log) {
	heading(w, fmt.Sprintf("Logs (%d)", len(logs)))
	if len(logs) == 0 {
		fmt.Fprintln(w, faint("  no logs emitted"))
		return
	}

	tbl := newTable(w, "#", "Contract", "Event", "Transfer", "Source")
	for _, l := range logs {
		transfer := l.Transfer
		switch {
		case transfer == "":
			transfer = "-"
		case transfer == contract.TagERC20:
			if amount := tokenAmount(l); amount != "" {
				transfer += " " + amount
			}
		}
		name := l.Name
		if !l.Decoded() {
			name = truncateHash(l.Name)
		}
		tbl.AddRow(l.Index, truncateHash(l.Address), name, transfer, formatSource(l.Source))
	}
	tbl.Print()

	for _, l := range logs {
		if !l.Decoded() || len(l.Params) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s %s\n", cyan("#"+strconv.FormatUint(uint64(l.Index), 10)), l.Signature)
		renderParams(w, l.Params)
	}
}

// RenderRevertTerminal writes a decoded revert reason.
func RenderRevertTerminal(w io.Writer, r *decoder.Revert) {
	heading(w, "Revert")
	field(w, "Kind", r.Kind)
	if r.Reason == "" {
		field(w, "Reason", faint("(none)"))
	} else {
		field(w, "Reason", red(r.Reason))
	}
	if r.Kind == decoder.RevertCustom {
		field(w, "Source", formatSource(r.Source))
	}
	renderParams(w, r.Params)
}

// RenderTxTerminal writes a full transaction report.
func RenderTxTerminal(w io.Writer, rep *TxReport) {
	heading(w, "Transaction")
	field(w, "Hash", rep.Hash)
	field(w, "From", rep.From)
	if rep.To == "" {
		field(w, "To", faint("(contract creation)"))
	} else {
		field(w, "To", rep.To)
	}
	field(w, "Status", formatTxStatus(rep.Status))

	if rep.Call != nil {
		RenderCallTerminal(w, rep.Call)
	}
	if rep.Revert != nil {
		RenderRevertTerminal(w, rep.Revert)
	}
	RenderLogsTerminal(w, rep.Logs)
	fmt.Fprintln(w)
}
