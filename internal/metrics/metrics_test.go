package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, m interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetGauge().GetValue()
}

func counterValue(t *testing.T, m interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetCounter().GetValue()
}

func TestNew_BuildsIsolatedRegistryPerCall(t *testing.T) {
	a := New()
	b := New()

	a.QuotaUsed.Set(42)
	assert.Equal(t, float64(42), gaugeValue(t, a.QuotaUsed))
	assert.Equal(t, float64(0), gaugeValue(t, b.QuotaUsed), "a second registry must not share collector state with the first")
}

func TestRegistry_CountersAreUsable(t *testing.T) {
	reg := New()
	reg.RequestsTotal.WithLabelValues("videos.list", "ok").Inc()
	reg.CacheHits.Inc()
	reg.VideosEnriched.Inc()
	assert.Equal(t, float64(1), counterValue(t, reg.CacheHits))
}

func TestServe_ReturnsWhenContextIsCancelled(t *testing.T) {
	reg := New()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- reg.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.True(t, err == nil || err == http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}
