// Package metrics exposes prometheus counters for signature resolution, contract
// fetches and decoding. A nil *Collector is valid and records nothing, so components
// can be built without metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "evmdecode"

// Signature resolution tiers.
const (
	TierOverride   = "override"
	TierCache      = "cache"
	TierRemote     = "remote"
	TierUnresolved = "unresolved"
)

// Outcomes of network-bound operations.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector holds the counters. Register it once per prometheus registry.
type Collector struct {
	resolutions   *prometheus.CounterVec
	remoteLookups *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	decodes       *prometheus.CounterVec
}

// NewCollector creates the counters and registers them with reg. A nil reg creates
// unregistered counters, which is what tests usually want.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_resolutions_total",
			Help:      "Signature resolutions by hash kind and the tier that answered.",
		}, []string{"kind", "tier"}),
		remoteLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_remote_lookups_total",
			Help:      "Remote signature lookups issued, by hash kind and outcome.",
		}, []string{"kind", "outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_fetches_total",
			Help:      "Contract record fetches, by outcome.",
		}, []string{"outcome"}),
		decodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decodes_total",
			Help:      "Decoded calls and logs, by kind and the interface used.",
		}, []string{"kind", "source"}),
	}
	if reg != nil {
		reg.MustRegister(c.resolutions, c.remoteLookups, c.fetches, c.decodes)
	}
	return c
}

func (c *Collector) SignatureResolved(kind, tier string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(kind, tier).Inc()
}

func (c *Collector) RemoteLookup(kind, outcome string) {
	if c == nil {
		return
	}
	c.remoteLookups.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) ContractFetched(outcome string) {
	if c == nil {
		return
	}
	c.fetches.WithLabelValues(outcome).Inc()
}

func (c *Collector) Decoded(kind, source string) {
	if c == nil {
		return
	}
	c.decodes.WithLabelValues(kind, source).Inc()
}

// RemoteLookups returns the counter for kind and outcome, for tests and reports.
func (c *Collector) RemoteLookups(kind, outcome string) prometheus.Counter {
	return c.remoteLookups.WithLabelValues(kind, outcome)
}

// Fetches returns the contract fetch counter for outcome.
func (c *Collector) Fetches(outcome string) prometheus.Counter {
	return c.fetches.WithLabelValues(outcome)
}

// Decodes returns the decode counter for kind and source.
func (c *Collector) Decodes(kind, source string) prometheus.Counter {
	return c.decodes.WithLabelValues(kind, source)
}
