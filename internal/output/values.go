package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/dmagro/evm-decoder/internal/abitype"
)

// Validation is the outcome of checking one typed input.
type Validation struct {
	Type    string `json:"type"`
	Input   string `json:"input"`
	Valid   bool   `json:"valid"`
	Value   string `json:"value,omitempty"`
	Encoded string `json:"encoded,omitempty"`
	Kind    string `json:"errorKind,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewValidation builds a Validation from the result of abitype.Validate. A valid
// value is also ABI-encoded; an encoding failure marks the input invalid.
func NewValidation(typ, input string, v abitype.Value, err error) Validation {
	out := Validation{Type: typ, Input: input}
	if err == nil {
		var packed []byte
		packed, err = abitype.Pack(v)
		if err == nil {
			out.Valid = true
			out.Value = v.Format()
			out.Encoded = hexutil.Encode(packed)
			return out
		}
		out.Kind = "encoding"
	}

	var verr *abitype.ValidationError
	var terr *abitype.TypeError
	switch {
	case errors.As(err, &verr):
		out.Kind = verr.Kind.String()
	case errors.As(err, &terr):
		out.Kind = "type"
	}
	out.Error = err.Error()
	return out
}

// RenderValidationTerminal writes one validation result per row.
func RenderValidationTerminal(w io.Writer, results []Validation) {
	heading(w, "Validation")
	tbl := newTable(w, "Type", "Input", "Result", "Value")
	for _, r := range results {
		if r.Valid {
			tbl.AddRow(r.Type, r.Input, green("✓ valid"), r.Value)
			continue
		}
		tbl.AddRow(r.Type, r.Input, red("✗ "+r.Kind), r.Error)
	}
	tbl.Print()

	for _, r := range results {
		if r.Encoded != "" {
			fmt.Fprintf(w, "\n  %s %s\n", cyan(r.Type+":"), faint(r.Encoded))
		}
	}
	fmt.Fprintln(w)
}

// Conversion is the result of a fixed-point operation.
type Conversion struct {
	Operation string   `json:"operation"`
	Inputs    []string `json:"inputs"`
	Result    string   `json:"result,omitempty"`
	Formatted string   `json:"formatted,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// NewConversion pairs a fixedpoint result with its inputs. On error the result is
// dropped.
func NewConversion(op string, inputs []string, result string, err error) Conversion {
	if err != nil {
		return Conversion{Operation: op, Inputs: inputs, Error: err.Error()}
	}
	return Conversion{Operation: op, Inputs: inputs, Result: result}
}

// RenderConversionTerminal writes a conversion result.
func RenderConversionTerminal(w io.Writer, c Conversion) {
	heading(w, c.Operation)
	field(w, "Inputs", strings.Join(c.Inputs, ", "))
	if c.Error != "" {
		field(w, "Error", red(c.Error))
	} else {
		field(w, "Result", green(bold(c.Result)))
		if c.Formatted != "" {
			field(w, "Formatted", c.Formatted)
		}
	}
	fmt.Fprintln(w)
}
