// Package revert turns the return data of a failed call into a readable reason.
package revert

import (
	"bytes"

	"golang.org/x/crypto/sha3"
)

// Kind classifies revert data.
type Kind int

const (
	KindNone Kind = iota
	KindError
	KindPanic
)

// DefaultPanicMessage is reported for panic codes the compiler does not define.
const DefaultPanicMessage = "Panic with an unrecognized error code"

var (
	// ErrorSelector is the selector of Error(string).
	ErrorSelector = selector("Error(string)")
	// PanicSelector is the selector of Panic(uint256).
	PanicSelector = selector("Panic(uint256)")
)

var panicMessages = map[byte]string{
	0x01: "Assertion failed",
	0x11: "Arithmetic operation underflowed or overflowed outside of an unchecked block",
	0x12: "Division or modulo division by zero",
	0x21: "Tried to convert a value into an enum, but the value was too big or negative",
	0x31: "Called .pop() on an empty array",
	0x32: "Array accessed at an out-of-bounds or negative index",
	0x41: "Too much memory was allocated, or an array was created that is too large",
	0x51: "Called a zero-initialized variable of internal function type",
}

// Reason is decoded revert data.
type Reason struct {
	Kind    Kind
	Message string
	Code    byte // panic code, KindPanic only
}

func selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// Decode classifies data as Error(string), Panic(uint256) or neither.
func Decode(data []byte) Reason {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], ErrorSelector):
		return Reason{Kind: KindError, Message: errorMessage(data)}
	case len(data) > 4 && bytes.Equal(data[:4], PanicSelector):
		code := data[len(data)-1]
		msg, ok := panicMessages[code]
		if !ok {
			msg = DefaultPanicMessage
		}
		return Reason{Kind: KindPanic, Message: msg, Code: code}
	}
	return Reason{}
}

// DecodeReason returns the readable reason for data, or "" when the data carries no
// structured reason.
func DecodeReason(data []byte) string {
	return Decode(data).Message
}

// errorHeadSize is the selector plus the offset and length words that precede the
// string bytes of a single dynamic string argument.
const errorHeadSize = 4 + 32 + 32

// errorMessage reads the string bytes after the head and keeps only allow-listed
// characters, which also drops the zero padding of the last word.
func errorMessage(data []byte) string {
	if len(data) <= errorHeadSize {
		return ""
	}
	payload := data[errorHeadSize:]
	out := make([]byte, 0, len(payload))
	for _, c := range payload {
		if allowed(c) {
			out = append(out, c)
		}
	}
	return string(out)
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case ' ', '.', ',', ':', ';', '!', '?', '\'', '"', '(', ')', '[', ']', '{', '}',
		'-', '_', '/', '\\', '@', '#', '$', '%', '&', '*', '+', '=', '<', '>', '|', '~', '^', '`':
		return true
	}
	return false
}
