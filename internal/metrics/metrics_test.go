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

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

func TestRecorder(t *testing.T) {
	t.Run("independent registries", func(t *testing.T) {
		assert.NotPanics(t, func() {
			New()
			New()
		})
	})

	t.Run("provider requests", func(t *testing.T) {
		r := New()
		r.ObserveProviderRequest("chart", "ok", 20*time.Millisecond)
		r.ObserveProviderRequest("chart", "ok", 30*time.Millisecond)
		r.ObserveProviderRequest("search", "network_error", time.Second)

		assert.Equal(t, 2.0, testutil.ToFloat64(r.providerRequests.WithLabelValues("chart", "ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.providerRequests.WithLabelValues("search", "network_error")))
	})

	t.Run("refresh summary", func(t *testing.T) {
		r := New()
		r.RecordRefresh(model.RefreshSummary{Updated: 3, Skipped: 1, Failed: 2}, time.Second)

		assert.Equal(t, 1.0, testutil.ToFloat64(r.refreshRuns))
		assert.Equal(t, 3.0, testutil.ToFloat64(r.refreshSymbols.WithLabelValues("updated")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.refreshSymbols.WithLabelValues("skipped")))
		assert.Equal(t, 2.0, testutil.ToFloat64(r.refreshSymbols.WithLabelValues("failed")))
	})

	t.Run("gauges", func(t *testing.T) {
		r := New()
		r.RecordLastPrice("AAPL", 189.5)
		r.LiveSessionOpened()
		r.LiveSessionOpened()
		r.LiveSessionClosed()
		r.HTTPInFlight(1)

		assert.Equal(t, 189.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.liveSessions))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.httpInFlight))
	})

	t.Run("handler exposes metrics", func(t *testing.T) {
		r := New()
		r.ObserveHTTPRequest("/api/chart/{symbol}", http.MethodGet, http.StatusOK, 5*time.Millisecond)

		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `snapcharts_http_requests_total{method="GET",route="/api/chart/{symbol}",status="200"} 1`)
		assert.Contains(t, string(body), "go_goroutines")
	})
}
