package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ms(v ...int) []time.Duration {
	out := make([]time.Duration, len(v))
	for i, n := range v {
		out[i] = time.Duration(n) * time.Millisecond
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})

	t.Run("single sample", func(t *testing.T) {
		s := Summarize(ms(42))
		assert.Equal(t, 1, s.Count)
		assert.Equal(t, 42*time.Millisecond, s.P50)
		assert.Equal(t, 42*time.Millisecond, s.P99)
		assert.Equal(t, 42*time.Millisecond, s.Mean)
	})

	t.Run("unsorted input is left alone", func(t *testing.T) {
		in := ms(30, 10, 20)
		s := Summarize(in)
		assert.Equal(t, ms(30, 10, 20), in)
		assert.Equal(t, 20*time.Millisecond, s.P50)
		assert.Equal(t, 30*time.Millisecond, s.Max)
		assert.Equal(t, 20*time.Millisecond, s.Mean)
	})

	t.Run("hundred samples", func(t *testing.T) {
		var in []int
		for i := 100; i >= 1; i-- {
			in = append(in, i)
		}
		s := Summarize(ms(in...))
		assert.Equal(t, 50*time.Millisecond, s.P50)
		assert.Equal(t, 95*time.Millisecond, s.P95)
		assert.Equal(t, 99*time.Millisecond, s.P99)
		assert.Equal(t, 100*time.Millisecond, s.Max)
	})
}

func TestPercentileSmallSamples(t *testing.T) {
	sorted := ms(10, 20, 30, 40, 50)
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 10 * time.Millisecond},
		{0.5, 30 * time.Millisecond},
		{0.95, 50 * time.Millisecond},
		{1, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentile(sorted, tt.p), "p=%v", tt.p)
	}
	assert.Zero(t, Percentile(nil, 0.5))
}
