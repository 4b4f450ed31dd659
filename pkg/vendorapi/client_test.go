package vendorapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient() *Client {
	return NewClient(WithBackoff([]time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}))
}

func TestGetJSONDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{"name":"hushh"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	err := fastClient().GetJSON(context.Background(), srv.URL, "token-123", &out)

	require.NoError(t, err)
	assert.Equal(t, "hushh", out.Name)
}

func TestGetJSONSetsExtraHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, "t", &struct{}{},
		"X-Restli-Protocol-Version", "2.0.0")
	require.NoError(t, err)
}

func TestGetJSONRetriesRateLimits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := fastClient().GetJSON(context.Background(), srv.URL, "t", &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSONGivesUpAfterBackoffExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, "t", nil)

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	// Initial attempt plus one retry per backoff entry.
	assert.Equal(t, int32(4), calls.Load())
}

func TestGetJSONDoesNotRetryOtherErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	err := fastClient().GetJSON(context.Background(), srv.URL, "t", nil)

	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := NewClient(WithBackoff([]time.Duration{time.Minute}))
	calls := 0
	err := client.Retry(ctx, func() error {
		calls++
		cancel()
		return &APIError{Status: http.StatusTooManyRequests}
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
