package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T) *RateLimited {
	t.Helper()
	return NewRateLimited("test", zap.NewNop(),
		WithDelayWindow(0, time.Millisecond),
		WithBackoffStep(time.Millisecond),
		WithTimeout(time.Second))
}

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestFetchClassifiesHTTPStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, KindHTTPStatus, ferr.Kind)
	require.Equal(t, http.StatusServiceUnavailable, ferr.StatusCode)
	require.Equal(t, int32(4), hits.Load(), "one attempt plus three retries")
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
}

func TestFetchWaitsBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	window := 50 * time.Millisecond
	f := NewRateLimited("test", zap.NewNop(),
		WithDelayWindow(window, window+time.Millisecond),
		WithBackoffStep(time.Millisecond))

	ctx := context.Background()
	_, err := f.Fetch(ctx, srv.URL)
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), window/2, "second fetch should respect the delay window")
}

func TestFetchNetworkErrorAfterRetries(t *testing.T) {
	f := newTestFetcher(t)

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	require.NotEqual(t, KindHTTPStatus, ferr.Kind)
}
