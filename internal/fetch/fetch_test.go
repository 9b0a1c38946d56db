package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{"name":"USDC"}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 0, time.Millisecond)
	c.SetHeader("X-Api-Key", "secret")

	var out struct{ Name string }
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "USDC", out.Name)
}

func TestGetJSONRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
		check     func(t *testing.T, err error)
	}{
		{"server error is retried", http.StatusBadGateway, 3, func(t *testing.T, err error) {
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		}},
		{"rate limit is retried", http.StatusTooManyRequests, 3, func(t *testing.T, err error) {
			require.Error(t, err)
		}},
		{"not found is final", http.StatusNotFound, 1, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"bad request is final", http.StatusBadRequest, 1, func(t *testing.T, err error) {
			require.Error(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(time.Second, 2, time.Millisecond)
			var out map[string]any
			tt.check(t, c.GetJSON(context.Background(), srv.URL, &out))
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestGetJSONRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[1,2]`))
	}))
	defer srv.Close()

	var out []int
	require.NoError(t, NewClient(time.Second, 1, time.Millisecond).GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, []int{1, 2}, out)
}

func TestGetJSONInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClient(time.Second, 0, time.Millisecond).GetJSON(context.Background(), srv.URL, &out)
	assert.ErrorContains(t, err, "invalid JSON response")
}

func TestGetJSONBodyTooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`"` + strings.Repeat("a", 64) + `"`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, 2, time.Millisecond)
	c.maxBody = 32

	var out string
	err := c.GetJSON(context.Background(), srv.URL, &out)
	require.ErrorIs(t, err, errBodyTooLarge)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, out)

	c.maxBody = 66
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Len(t, out, 64)
}
