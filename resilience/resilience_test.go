package resilience

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/stargazing/metrics"
)

func fastConfig() Config {
	cfg := DefaultConfig("test")
	cfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	cfg.RatePerSecond = 0
	return cfg
}

func statusSequence(codes ...int) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		code := codes[len(codes)-1]
		if int(n) <= len(codes) {
			code = codes[n-1]
		}
		w.WriteHeader(code)
		w.Write([]byte("body"))
	}))
	return srv, &hits
}

func builder(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	srv, hits := statusSequence(http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusOK)
	defer srv.Close()

	m := metrics.New()
	d := New(srv.Client(), fastConfig(), WithMetrics(m))

	resp, err := d.Do(context.Background(), builder(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderRetries.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("test", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("test", "error")))
}

func TestDoReturnsClientErrors(t *testing.T) {
	srv, hits := statusSequence(http.StatusNotFound)
	defer srv.Close()

	d := New(srv.Client(), fastConfig())
	resp, err := d.Do(context.Background(), builder(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestDoGivesUp(t *testing.T) {
	srv, hits := statusSequence(http.StatusInternalServerError)
	defer srv.Close()

	d := New(srv.Client(), fastConfig())
	_, err := d.Do(context.Background(), builder(srv.URL))
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestCircuitOpens(t *testing.T) {
	srv, hits := statusSequence(http.StatusBadGateway)
	defer srv.Close()

	cfg := fastConfig()
	cfg.Backoff.MaxRetries = 0
	cfg.FailureThreshold = 1
	d := New(srv.Client(), cfg)

	_, err := d.Do(context.Background(), builder(srv.URL))
	require.Error(t, err)
	assert.Equal(t, "open", d.State())

	_, err = d.Do(context.Background(), builder(srv.URL))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestDoHonoursContext(t *testing.T) {
	srv, _ := statusSequence(http.StatusOK)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(srv.Client(), fastConfig())
	_, err := d.Do(ctx, builder(srv.URL))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoBuilderErrors(t *testing.T) {
	d := New(nil, fastConfig())

	_, err := d.Do(context.Background(), nil)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = d.Do(context.Background(), func() (*http.Request, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestDelay(t *testing.T) {
	d := New(nil, Config{Name: "x", Backoff: BackoffConfig{InitialInterval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}})

	assert.Equal(t, 100*time.Millisecond, d.delay(0))
	assert.Equal(t, 200*time.Millisecond, d.delay(1))
	assert.Equal(t, 300*time.Millisecond, d.delay(2))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(429))
	assert.True(t, Retryable(500))
	assert.True(t, Retryable(503))
	assert.False(t, Retryable(404))
	assert.False(t, Retryable(200))
}
