package contract

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by a Fetcher that has no record for an address.
var ErrNotFound = errors.New("contract not found")

// Record is the raw contract data returned by the indexer. Every field except
// Address is optional.
type Record struct {
	Address             string          `json:"address"`
	Name                string          `json:"name,omitempty"`
	ABI                 json.RawMessage `json:"abi,omitempty"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`
	SupportedInterfaces []string        `json:"supportedInterfaces,omitempty"`
	CreationInfo        *CreationInfo   `json:"creationInfo,omitempty"`
	Properties          *Properties     `json:"properties,omitempty"`
	Fragments           *Fragments      `json:"fragments,omitempty"`
}

type CreationInfo struct {
	Creator         string `json:"creator,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     uint64 `json:"blockNumber,omitempty"`
}

// Properties are display values read from the contract's view functions.
type Properties struct {
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals *uint8 `json:"decimals,omitempty"`
}

// Fragments are text signatures the indexer learned while serving the record.
// They are registered into the signature registry as a side effect of a fetch.
type Fragments struct {
	Functions []string `json:"functions,omitempty"`
	Events    []string `json:"events,omitempty"`
}

// compilerMetadata is the subset of solc metadata we read.
type compilerMetadata struct {
	Output struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"output"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// parseMetadata accepts metadata either as a JSON object or as a JSON string
// holding the object, which is how verification services usually store it.
func parseMetadata(raw json.RawMessage) (*compilerMetadata, error) {
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
	var md compilerMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// contractName returns the compilation target's contract name, if exactly one.
func (m *compilerMetadata) contractName() string {
	if m == nil || len(m.Settings.CompilationTarget) != 1 {
		return ""
	}
	for _, name := range m.Settings.CompilationTarget {
		return name
	}
	return ""
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`))
}
