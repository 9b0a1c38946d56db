package signature

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Kind separates the two hash spaces: 4-byte function selectors and 32-byte event
// topics.
type Kind int

const (
	Function Kind = iota
	Event
)

func (k Kind) String() string {
	if k == Event {
		return "event"
	}
	return "function"
}

// hexLen is the number of hex digits of a hash of this kind.
func (k Kind) hexLen() int {
	if k == Event {
		return 64
	}
	return 8
}

// Keccak256 hashes data with the legacy Keccak used by Ethereum.
func Keccak256(data []byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// Selector computes the 4-byte function selector of a canonical signature,
// e.g. "transfer(address,uint256)" -> "0xa9059cbb".
func Selector(signature string) string {
	return "0x" + hex.EncodeToString(Keccak256([]byte(signature))[:4])
}

// Topic computes the 32-byte event topic of a canonical signature.
func Topic(signature string) string {
	return "0x" + hex.EncodeToString(Keccak256([]byte(signature)))
}

// Hash computes the hash of signature in the given kind's space.
func Hash(kind Kind, signature string) string {
	if kind == Event {
		return Topic(signature)
	}
	return Selector(signature)
}

// NormalizeHash lowercases hash, adds the 0x prefix and checks its length and digits.
// Longer inputs are truncated to the kind's width, so full call data can be passed
// as a function hash.
func NormalizeHash(kind Kind, hash string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(hash))
	s = strings.TrimPrefix(s, "0x")
	if len(s) < kind.hexLen() {
		return "", false
	}
	s = s[:kind.hexLen()]
	if _, err := hex.DecodeString(s); err != nil {
		return "", false
	}
	return "0x" + s, true
}

// KindOf infers the hash kind from its length.
func KindOf(hash string) (Kind, bool) {
	switch len(strings.TrimPrefix(strings.ToLower(hash), "0x")) {
	case 8:
		return Function, true
	case 64:
		return Event, true
	}
	return Function, false
}

// Name returns the function or event name of a canonical signature.
func Name(signature string) string {
	if i := strings.IndexByte(signature, '('); i >= 0 {
		return signature[:i]
	}
	return signature
}
