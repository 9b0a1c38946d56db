package contract

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dmagro/evm-decoder/internal/metrics"
	"github.com/dmagro/evm-decoder/internal/signature"
)

type fakeFetcher struct {
	records map[string]*Record
	err     error
	gate    chan struct{}
	calls   atomic.Int32
}

func (f *fakeFetcher) FetchContract(ctx context.Context, address string) (*Record, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[address]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

const vaultAddr = "0x5f3b5dfeb7b28cdbd7faba78963ee202a494e2a2"

func TestFactoryGetCaches(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]*Record{
		vaultAddr: {ABI: json.RawMessage(vaultABI), Name: "Vault"},
	}}
	m := metrics.NewCollector(nil)
	f := NewFactory(FactoryConfig{Fetcher: fetcher, Logger: zaptest.NewLogger(t).Sugar(), Metrics: m})

	d1, err := f.Get(context.Background(), "0x5F3B5DFEB7B28CDBD7FABA78963EE202A494E2A2")
	require.NoError(t, err)
	d2, err := f.Get(context.Background(), vaultAddr)
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, vaultAddr, d1.Address)
	assert.True(t, d1.Verified)
	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches(metrics.OutcomeFound)))
}

func TestFactoryFailuresCacheEmptyDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		outcome string
	}{
		{"not found", &fakeFetcher{}, metrics.OutcomeNotFound},
		{"network error", &fakeFetcher{err: errors.New("dial tcp: connection refused")}, metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewCollector(nil)
			f := NewFactory(FactoryConfig{Fetcher: tt.fetcher, Metrics: m})
			for i := 0; i < 3; i++ {
				d, err := f.Get(context.Background(), "0xdead")
				require.NoError(t, err)
				assert.Equal(t, "0xdead", d.Address)
				assert.False(t, d.HasABI())
				assert.False(t, d.Verified)
			}
			assert.EqualValues(t, 1, tt.fetcher.calls.Load())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches(tt.outcome)))
		})
	}
}

func TestFactoryNilFetcher(t *testing.T) {
	f := NewFactory(FactoryConfig{})
	d, err := f.Get(context.Background(), "0xAB")
	require.NoError(t, err)
	assert.Equal(t, "0xab", d.Address)
	assert.Equal(t, 1, f.Len())
}

func TestNewFactoryDefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultFetchTimeout, NewFactory(FactoryConfig{}).timeout)
	assert.Equal(t, time.Second, NewFactory(FactoryConfig{Timeout: time.Second}).timeout)
}

func TestFactoryCoalescesConcurrentGets(t *testing.T) {
	fetcher := &fakeFetcher{
		records: map[string]*Record{vaultAddr: {ABI: json.RawMessage(vaultABI)}},
		gate:    make(chan struct{}),
	}
	f := NewFactory(FactoryConfig{Fetcher: fetcher})

	const n = 10
	var wg sync.WaitGroup
	got := make([]*Descriptor, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := f.Get(context.Background(), vaultAddr)
			assert.NoError(t, err)
			got[i] = d
		}(i)
	}
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.EqualValues(t, 1, fetcher.calls.Load())
	for _, d := range got {
		assert.Same(t, got[0], d)
	}
}

func TestFactoryAbandonedGetStillCaches(t *testing.T) {
	fetcher := &fakeFetcher{
		records: map[string]*Record{vaultAddr: {ABI: json.RawMessage(vaultABI)}},
		gate:    make(chan struct{}),
	}
	f := NewFactory(FactoryConfig{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Get(ctx, vaultAddr)
	assert.ErrorIs(t, err, context.Canceled)

	close(fetcher.gate)
	require.Eventually(t, func() bool {
		d, ok := f.Peek(vaultAddr)
		return ok && d.Verified
	}, time.Second, time.Millisecond)
}

func TestFactoryRegistersSignatures(t *testing.T) {
	reg := signature.NewRegistry(signature.Config{})
	fetcher := &fakeFetcher{records: map[string]*Record{
		vaultAddr: {
			ABI: json.RawMessage(vaultABI),
			Fragments: &Fragments{
				Functions: []string{"harvest(address)"},
				Events:    []string{"Harvested(address,uint256)"},
			},
		},
		"0x0000000000000000000000000000000000000001": {SupportedInterfaces: []string{"erc20"}},
	}}
	f := NewFactory(FactoryConfig{Fetcher: fetcher, Registry: reg})

	_, err := f.Get(context.Background(), vaultAddr)
	require.NoError(t, err)

	for _, tc := range []struct {
		kind signature.Kind
		sig  string
	}{
		{signature.Function, "harvest(address)"},
		{signature.Event, "Harvested(address,uint256)"},
		{signature.Function, "deposit(uint256,address)"},
	} {
		e, ok := reg.Lookup(tc.kind, signature.Hash(tc.kind, tc.sig))
		require.True(t, ok, tc.sig)
		assert.Equal(t, tc.sig, e.Signature)
	}

	before := reg.Len()
	d, err := f.Get(context.Background(), "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, SourceStandard, d.ABISource)
	assert.Equal(t, before, reg.Len(), "standard ABIs are not registered")
}

func TestFactoryPutReplaces(t *testing.T) {
	f := NewFactory(FactoryConfig{})
	d, err := f.Get(context.Background(), vaultAddr)
	require.NoError(t, err)
	assert.False(t, d.HasABI())

	d = f.Put(Record{Address: vaultAddr, ABI: json.RawMessage(vaultABI)})
	got, ok := f.Peek(vaultAddr)
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.True(t, got.Verified)
}
