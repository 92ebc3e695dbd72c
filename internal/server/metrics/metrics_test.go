package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveDesign("generate", "basic", "ok", 2*time.Second)
	m.ObserveDesign("generate", "basic", "ok", time.Second)
	m.ObserveDesign("refine", "basic", "degraded", time.Second)
	m.AddCreditsSpent("basic", 2)
	m.AddCreditsSpent("basic", 0)
	m.IncRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.designs.WithLabelValues("generate", "basic", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.designs.WithLabelValues("refine", "basic", "degraded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.creditsSpent.WithLabelValues("basic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("/v1/generations", http.StatusPaymentRequired)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `brandforge_http_requests_total{code="402",route="/v1/generations"} 1`)
}
