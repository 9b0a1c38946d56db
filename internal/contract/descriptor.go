// Package contract builds contract descriptors from raw indexer records and
// caches them per address.
package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"

	"github.com/dmagro/evm-decoder/internal/logger"
)

// ABISource records where a descriptor's effective ABI came from.
type ABISource int

const (
	SourceNone ABISource = iota
	SourceStored
	SourceMetadata
	SourceStandard
)

func (s ABISource) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceMetadata:
		return "metadata"
	case SourceStandard:
		return "standard"
	}
	return "none"
}

// Descriptor is the in-memory view of one contract. Descriptors are immutable once
// built; re-resolution replaces the cached pointer.
type Descriptor struct {
	Address    string
	Name       string
	ABI        *abi.ABI
	ABISource  ABISource
	Interfaces []string
	Verified   bool
	Creation   *CreationInfo
	Properties Properties
}

// HasABI reports whether the descriptor carries any fragments to decode with.
func (d *Descriptor) HasABI() bool {
	return d != nil && d.ABI != nil && !isEmptyABI(d.ABI)
}

// Supports reports whether the contract declares the given interface tag.
func (d *Descriptor) Supports(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range d.Interfaces {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeAddress lowercases an address and adds the 0x prefix.
func NormalizeAddress(address string) string {
	a := strings.ToLower(strings.TrimSpace(address))
	if !strings.HasPrefix(a, "0x") {
		a = "0x" + a
	}
	return a
}

// Empty returns the minimal descriptor: address only, unverified, no ABI.
func Empty(address string) *Descriptor {
	return &Descriptor{Address: NormalizeAddress(address)}
}

// NewDescriptor builds a descriptor from rec. The effective ABI is the first of:
// the stored ABI, the ABI inside the compiler metadata, the bundled standard ABI
// matching the interface tags. Unparseable candidates are logged and skipped.
func NewDescriptor(rec Record, lggr *zap.SugaredLogger) *Descriptor {
	lggr = logger.OrNop(lggr)
	d := &Descriptor{
		Address:    NormalizeAddress(rec.Address),
		Creation:   rec.CreationInfo,
		Interfaces: normalizeTags(rec.SupportedInterfaces),
	}
	if rec.Properties != nil {
		d.Properties = *rec.Properties
	}

	md, err := parseMetadata(rec.Metadata)
	if err != nil {
		lggr.Warnw("Ignoring malformed compiler metadata", "address", d.Address, "err", err)
	}

	if parsed, err := parseABI(rec.ABI); err != nil {
		lggr.Warnw("Ignoring malformed stored ABI", "address", d.Address, "err", err)
	} else if parsed != nil {
		d.ABI, d.ABISource, d.Verified = parsed, SourceStored, true
	}

	if d.ABI == nil && md != nil {
		if parsed, err := parseABI(md.Output.ABI); err != nil {
			lggr.Warnw("Ignoring malformed metadata ABI", "address", d.Address, "err", err)
		} else if parsed != nil {
			d.ABI, d.ABISource, d.Verified = parsed, SourceMetadata, true
		}
	}

	if d.ABI == nil {
		if tag := standardTagFor(d.Interfaces); tag != "" {
			d.ABI, d.ABISource = standardABIs[tag], SourceStandard
		}
	}

	d.Name = firstNonEmpty(rec.Name, md.contractName(), d.Properties.Name)
	return d
}

// parseABI returns nil, nil when raw is absent or has no fragments. Like metadata,
// the ABI may arrive JSON-encoded inside a string.
func parseABI(raw json.RawMessage) (*abi.ABI, error) {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = json.RawMessage(s)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	if isEmptyABI(&parsed) {
		return nil, nil
	}
	return &parsed, nil
}

func isEmptyABI(a *abi.ABI) bool {
	return len(a.Methods) == 0 && len(a.Events) == 0 && len(a.Errors) == 0
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
