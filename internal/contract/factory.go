package contract

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dmagro/evm-decoder/internal/logger"
	"github.com/dmagro/evm-decoder/internal/metrics"
	"github.com/dmagro/evm-decoder/internal/signature"
)

// DefaultFetchTimeout bounds a single contract fetch.
const DefaultFetchTimeout = 15 * time.Second

// Fetcher retrieves raw contract records. It returns ErrNotFound for unknown
// addresses.
type Fetcher interface {
	FetchContract(ctx context.Context, address string) (*Record, error)
}

// FactoryConfig configures a Factory.
type FactoryConfig struct {
	// Fetcher may be nil, in which case every address gets an empty descriptor.
	Fetcher Fetcher
	// Registry receives fragments and verified ABIs seen while fetching.
	Registry *signature.Registry
	Timeout  time.Duration
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Collector
}

// Factory hands out at most one Descriptor per address. Fetches for the same
// address are coalesced and their results, including failures, are cached for
// the lifetime of the Factory.
type Factory struct {
	fetcher  Fetcher
	registry *signature.Registry
	timeout  time.Duration
	lggr     *zap.SugaredLogger
	metrics  *metrics.Collector

	mu    sync.RWMutex
	cache map[string]*Descriptor

	group singleflight.Group
}

// NewFactory returns a Factory with an empty cache. A zero Timeout means
// DefaultFetchTimeout.
func NewFactory(cfg FactoryConfig) *Factory {
	f := &Factory{
		fetcher:  cfg.Fetcher,
		registry: cfg.Registry,
		timeout:  cfg.Timeout,
		lggr:     logger.OrNop(cfg.Logger).Named("contract"),
		metrics:  cfg.Metrics,
		cache:    make(map[string]*Descriptor),
	}
	if f.timeout <= 0 {
		f.timeout = DefaultFetchTimeout
	}
	return f
}

// Get returns the descriptor for address, fetching it on first use. The only error
// is ctx's; the shared fetch keeps running when a caller gives up.
func (f *Factory) Get(ctx context.Context, address string) (*Descriptor, error) {
	addr := NormalizeAddress(address)
	if d, ok := f.Peek(addr); ok {
		return d, nil
	}

	ch := f.group.DoChan(addr, func() (any, error) {
		return f.load(addr), nil
	})
	select {
	case res := <-ch:
		return res.Val.(*Descriptor), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns a cached descriptor without fetching.
func (f *Factory) Peek(address string) (*Descriptor, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	d, ok := f.cache[NormalizeAddress(address)]
	return d, ok
}

// Put builds a descriptor from rec, registers its signatures and replaces any
// cached descriptor for the address.
func (f *Factory) Put(rec Record) *Descriptor {
	d := f.build(rec)
	f.mu.Lock()
	f.cache[d.Address] = d
	f.mu.Unlock()
	return d
}

// Len returns the number of cached descriptors.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

func (f *Factory) load(addr string) *Descriptor {
	if d, ok := f.Peek(addr); ok {
		return d
	}

	d := f.fetch(addr)

	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.cache[addr]; ok {
		return prev
	}
	f.cache[addr] = d
	return d
}

func (f *Factory) fetch(addr string) *Descriptor {
	if f.fetcher == nil {
		return Empty(addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	rec, err := f.fetcher.FetchContract(ctx, addr)
	switch {
	case errors.Is(err, ErrNotFound) || (err == nil && rec == nil):
		f.lggr.Debugw("No contract record", "address", addr)
		f.metrics.ContractFetched(metrics.OutcomeNotFound)
		return Empty(addr)
	case err != nil:
		f.lggr.Warnw("Contract fetch failed, caching empty descriptor", "address", addr, "err", err)
		f.metrics.ContractFetched(metrics.OutcomeError)
		return Empty(addr)
	}

	f.metrics.ContractFetched(metrics.OutcomeFound)
	if rec.Address == "" {
		rec.Address = addr
	}
	return f.build(*rec)
}

// build registers the record's signatures before returning, so that any decode
// using the descriptor sees them in the registry.
func (f *Factory) build(rec Record) *Descriptor {
	d := NewDescriptor(rec, f.lggr)
	if f.registry == nil {
		return d
	}
	if rec.Fragments != nil {
		for _, sig := range rec.Fragments.Functions {
			f.registry.Register(signature.Function, signature.Selector(sig), sig)
		}
		for _, sig := range rec.Fragments.Events {
			f.registry.Register(signature.Event, signature.Topic(sig), sig)
		}
	}
	if d.Verified {
		f.registry.RegisterABI(d.ABI)
	}
	return d
}
