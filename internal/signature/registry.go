// Package signature resolves 4-byte function selectors and 32-byte event topics to
// canonical text signatures.
//
// Resolution is layered: a static override table, an in-memory cache, then a
// remote Source. Remote results, including failures, are cached for the lifetime
// of the Registry, so each hash goes to the network at most once. Concurrent
// requests for the same hash share one lookup.
package signature

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dmagro/evm-decoder/internal/logger"
	"github.com/dmagro/evm-decoder/internal/metrics"
)

// DefaultLookupTimeout bounds a single remote resolution.
const DefaultLookupTimeout = 10 * time.Second

// Entry is the result of resolving a hash. An Entry with Resolved false is a valid
// result: the hash is unknown to every tier.
type Entry struct {
	Kind      Kind
	Hash      string
	Signature string
	Resolved  bool
}

// Name returns the function or event name, or "" for an unresolved entry.
func (e Entry) Name() string {
	if !e.Resolved {
		return ""
	}
	return Name(e.Signature)
}

// Config configures a Registry.
type Config struct {
	// Source is consulted on cache misses. Nil disables remote lookups.
	Source Source
	// Overrides extends the built-in override table; keys are selectors or topics.
	Overrides map[string]string
	// Timeout bounds one remote resolution; zero means DefaultLookupTimeout.
	Timeout time.Duration
	Logger  *zap.SugaredLogger
	Metrics *metrics.Collector
}

// Registry is safe for concurrent use.
type Registry struct {
	source    Source
	overrides map[string]string
	timeout   time.Duration
	lggr      *zap.SugaredLogger
	metrics   *metrics.Collector

	mu    sync.RWMutex
	cache map[string]Entry

	group singleflight.Group
}

// NewRegistry builds a Registry. Invalid override keys are logged and skipped.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		source:    cfg.Source,
		overrides: DefaultOverrides(),
		timeout:   cfg.Timeout,
		lggr:      logger.OrNop(cfg.Logger).Named("signature"),
		metrics:   cfg.Metrics,
		cache:     make(map[string]Entry),
	}
	if r.timeout <= 0 {
		r.timeout = DefaultLookupTimeout
	}
	for hash, sig := range cfg.Overrides {
		kind, ok := KindOf(hash)
		if !ok {
			r.lggr.Warnw("Ignoring signature override with invalid hash", "hash", hash)
			continue
		}
		norm, _ := NormalizeHash(kind, hash)
		r.overrides[norm] = sig
	}
	return r
}

func cacheKey(kind Kind, hash string) string {
	return kind.String() + ":" + hash
}

// Resolve returns the signature for hash. It consults the override table, then the
// cache, then the remote source, and caches whatever the source answers.
//
// The only error is ctx's: a caller that gives up stops waiting, while the shared
// lookup runs to completion and populates the cache for later callers.
func (r *Registry) Resolve(ctx context.Context, kind Kind, hash string) (Entry, error) {
	norm, ok := NormalizeHash(kind, hash)
	if !ok {
		r.metrics.SignatureResolved(kind.String(), metrics.TierUnresolved)
		return Entry{Kind: kind, Hash: hash}, nil
	}

	if e, ok := r.Lookup(kind, norm); ok {
		return e, nil
	}

	ch := r.group.DoChan(cacheKey(kind, norm), func() (any, error) {
		return r.resolveRemote(kind, norm), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Entry), nil
	case <-ctx.Done():
		return Entry{Kind: kind, Hash: norm}, ctx.Err()
	}
}

// Lookup answers from the override table and the cache only, without network.
func (r *Registry) Lookup(kind Kind, hash string) (Entry, bool) {
	norm, ok := NormalizeHash(kind, hash)
	if !ok {
		return Entry{}, false
	}
	if sig, ok := r.overrides[norm]; ok {
		r.metrics.SignatureResolved(kind.String(), metrics.TierOverride)
		return Entry{Kind: kind, Hash: norm, Signature: sig, Resolved: true}, true
	}

	r.mu.RLock()
	e, ok := r.cache[cacheKey(kind, norm)]
	r.mu.RUnlock()
	if ok {
		tier := metrics.TierCache
		if !e.Resolved {
			tier = metrics.TierUnresolved
		}
		r.metrics.SignatureResolved(kind.String(), tier)
	}
	return e, ok
}

func (r *Registry) resolveRemote(kind Kind, hash string) Entry {
	key := cacheKey(kind, hash)

	// A previous flight may have filled the cache between our miss and this call.
	r.mu.RLock()
	e, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return e
	}

	e = Entry{Kind: kind, Hash: hash}
	if r.source != nil {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		sig, err := lookup(ctx, r.source, kind, hash)
		switch {
		case err == nil && sig != "":
			e.Signature, e.Resolved = sig, true
			r.metrics.RemoteLookup(kind.String(), metrics.OutcomeFound)
		case err == nil || errors.Is(err, ErrNotFound):
			r.metrics.RemoteLookup(kind.String(), metrics.OutcomeNotFound)
		default:
			r.lggr.Debugw("Remote signature lookup failed", "kind", kind, "hash", hash, "err", err)
			r.metrics.RemoteLookup(kind.String(), metrics.OutcomeError)
		}
	}

	e, _ = r.store(e)
	tier := metrics.TierRemote
	if !e.Resolved {
		tier = metrics.TierUnresolved
	}
	r.metrics.SignatureResolved(kind.String(), tier)
	return e
}

// store caches e unless a resolved entry is already present. It returns the entry
// that ends up cached and whether e was written.
func (r *Registry) store(e Entry) (Entry, bool) {
	key := cacheKey(e.Kind, e.Hash)
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.cache[key]; ok && prev.Resolved {
		return prev, false
	}
	r.cache[key] = e
	return e, true
}

// Register records a signature learned from a verified ABI or an ABI fragment. It
// fills a missing or unresolved cache entry and never replaces a resolved one. It
// reports whether the entry was stored.
func (r *Registry) Register(kind Kind, hash, signature string) bool {
	norm, ok := NormalizeHash(kind, hash)
	if !ok || signature == "" {
		return false
	}
	if _, ok := r.overrides[norm]; ok {
		return false
	}
	_, stored := r.store(Entry{Kind: kind, Hash: norm, Signature: signature, Resolved: true})
	return stored
}

// RegisterABI registers every function and non-anonymous event of a, and returns
// the number of new entries.
func (r *Registry) RegisterABI(a *abi.ABI) int {
	if a == nil {
		return 0
	}
	n := 0
	for _, m := range a.Methods {
		if r.Register(Function, hexutil.Encode(m.ID), m.Sig) {
			n++
		}
	}
	for _, ev := range a.Events {
		if ev.Anonymous {
			continue
		}
		if r.Register(Event, ev.ID.Hex(), ev.Sig) {
			n++
		}
	}
	if n > 0 {
		r.lggr.Debugw("Registered signatures from ABI", "count", n)
	}
	return n
}

// Len returns the number of cached entries, resolved or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
