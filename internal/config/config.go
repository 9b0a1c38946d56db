// Package config provides YAML configuration file loading and validation.
// It handles environment variable expansion, default value application,
// and ensures all required configuration fields are present.
package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Signature source types.
const (
	SourceOpenChain = "openchain"
	SourceFourByte  = "4byte"
)

// Config represents the root configuration structure loaded from YAML.
type Config struct {
	RPC        Endpoint   `yaml:"rpc"`        // JSON-RPC node used to fetch transactions and receipts
	Indexer    Endpoint   `yaml:"indexer"`    // Contract indexer serving raw contract records
	Signatures Signatures `yaml:"signatures"` // Remote signature databases and local overrides
	Defaults   Defaults   `yaml:"defaults"`   // Default settings for all endpoints
	Log        Log        `yaml:"log"`
}

// Endpoint is an HTTP service. An empty URL disables it.
type Endpoint struct {
	URL     string        `yaml:"url"`               // Supports ${VAR} env expansion
	Timeout time.Duration `yaml:"timeout,omitempty"` // Uses Defaults.Timeout if not set
	APIKey  string        `yaml:"api_key,omitempty"` // Sent as X-API-Key when set
}

// Signatures configures the signature registry.
type Signatures struct {
	Sources   []Source          `yaml:"sources"`             // Tried in order; first hit wins
	Timeout   time.Duration     `yaml:"timeout,omitempty"`   // Bound on one resolution across all sources
	Overrides map[string]string `yaml:"overrides,omitempty"` // Selector or topic -> signature
}

// Source is one remote signature database.
type Source struct {
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"`              // "openchain" or "4byte"
	URL     string        `yaml:"url,omitempty"`     // Optional; the public instance is used when empty
	Timeout time.Duration `yaml:"timeout,omitempty"` // Uses Defaults.Timeout if not set
}

// Defaults contains default configuration values that apply to all endpoints
// unless overridden at the endpoint level.
type Defaults struct {
	Timeout    time.Duration `yaml:"timeout"`     // HTTP request timeout (e.g., "10s")
	MaxRetries int           `yaml:"max_retries"` // Maximum retry attempts (0 = no retries)
	RetryDelay time.Duration `yaml:"retry_delay"` // Initial backoff between retries (e.g., "200ms")
}

type Log struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Validate validates the configuration and applies defaults where appropriate.
// It may emit warnings (to stderr) for suspicious values but does not fail on warnings.
func (c *Config) Validate() error {
	if c.Defaults.Timeout == 0 {
		return fmt.Errorf("defaults.timeout is required")
	}
	if c.Defaults.MaxRetries < 0 {
		return fmt.Errorf("defaults.max_retries must be >= 0")
	}
	if c.Defaults.RetryDelay < 0 {
		return fmt.Errorf("defaults.retry_delay must be >= 0")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	warnTimeout := func(scope string, d time.Duration) {
		const low = 500 * time.Millisecond
		const high = 2 * time.Minute
		if d > 0 && d < low {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very low (%s); requests may fail under normal network jitter\n", scope, d)
		}
		if d > high {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very high (%s); failures may take a long time to surface\n", scope, d)
		}
	}
	warnTimeout("defaults", c.Defaults.Timeout)

	for scope, ep := range map[string]*Endpoint{"rpc": &c.RPC, "indexer": &c.Indexer} {
		if ep.Timeout == 0 {
			ep.Timeout = c.Defaults.Timeout
		}
		if ep.URL == "" {
			continue
		}
		if err := validateURL(ep.URL); err != nil {
			return fmt.Errorf("%s: %w", scope, err)
		}
		warnTimeout(scope, ep.Timeout)
	}

	if c.Signatures.Timeout == 0 {
		c.Signatures.Timeout = c.Defaults.Timeout
	}
	seen := make(map[string]bool, len(c.Signatures.Sources))
	for i := range c.Signatures.Sources {
		s := &c.Signatures.Sources[i]
		if s.Name == "" {
			s.Name = s.Type
		}
		if seen[s.Name] {
			return fmt.Errorf("signature source %s: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if s.Type != SourceOpenChain && s.Type != SourceFourByte {
			return fmt.Errorf("signature source %s: unknown type %q (expected %s or %s)", s.Name, s.Type, SourceOpenChain, SourceFourByte)
		}
		if s.Timeout == 0 {
			s.Timeout = c.Defaults.Timeout
		}
		if s.URL != "" {
			if err := validateURL(s.URL); err != nil {
				return fmt.Errorf("signature source %s: %w", s.Name, err)
			}
		}
		warnTimeout(fmt.Sprintf("signature source %s", s.Name), s.Timeout)
	}

	for hash, sig := range c.Signatures.Overrides {
		if err := validateOverride(hash, sig); err != nil {
			return fmt.Errorf("signatures.overrides: %w", err)
		}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url (missing scheme or host)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url scheme %q (expected http or https)", u.Scheme)
	}
	return nil
}

func validateOverride(hash, sig string) error {
	h := strings.TrimPrefix(strings.ToLower(hash), "0x")
	if len(h) != 8 && len(h) != 64 {
		return fmt.Errorf("%s: expected a 4-byte selector or 32-byte topic", hash)
	}
	if _, err := hex.DecodeString(h); err != nil {
		return fmt.Errorf("%s: invalid hex", hash)
	}
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return fmt.Errorf("%s: invalid signature %q", hash, sig)
	}
	return nil
}

// Load reads and parses a YAML configuration file, expanding environment variables
// and validating all required fields.
//
// Environment variable expansion:
//
//	URLs can use ${VAR} syntax which will be expanded using os.ExpandEnv().
//	Example: url: ${ETH_RPC_URL} will use the ETH_RPC_URL environment variable.
//
// Validation rules:
//   - defaults.timeout must be set and > 0
//   - defaults.max_retries and defaults.retry_delay must be >= 0
//   - every configured URL must be http(s) with a host
//   - signature sources must have a known type and unique names
//   - overrides must map a selector or topic to a function-style signature
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for configuration already in memory.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnv reads environment variables from a .env file in the current working directory
// and sets them using os.Setenv. Missing files are ignored.
//
// File format:
//   - Each line contains KEY=VALUE
//   - Empty lines and lines starting with # are ignored
//   - Values can be quoted with single or double quotes (quotes are stripped)
func LoadEnv() {
	LoadEnvFile(".env")
}

// LoadEnvFile is LoadEnv for an explicit path.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first "=" to handle values that might contain "="
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
			os.Setenv(key, value)
		}
	}
}
