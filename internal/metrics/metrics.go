// Package metrics exposes Prometheus instrumentation for the HTTP layer, the
// quote provider client and the favorite price refresher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

const namespace = "snapcharts"

// Recorder owns every collector and the registry they are registered on.
type Recorder struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	refreshRuns     prometheus.Counter
	refreshSymbols  *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastPrice       *prometheus.GaugeVec

	liveSessions prometheus.Gauge
}

// New creates a Recorder backed by its own registry, so repeated construction
// in tests never collides with the default registerer.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		providerRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of quote provider requests",
			},
			[]string{"operation", "outcome"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of quote provider requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
		refreshRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refresh_runs_total",
			Help:      "Total number of favorite price refresh runs",
		}),
		refreshSymbols: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_refresh_symbols_total",
				Help:      "Favorites processed by the price refresher, by result",
			},
			[]string{"result"},
		),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_refresh_duration_seconds",
			Help:      "Duration of a full favorite price refresh in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "favorite_last_price",
				Help:      "Last recorded close for a favorite symbol",
			},
			[]string{"symbol"},
		),
		liveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_search_sessions",
			Help:      "Open live search WebSocket sessions",
		}),
	}
}

// ObserveProviderRequest records one quote provider round trip.
func (r *Recorder) ObserveProviderRequest(op, outcome string, elapsed time.Duration) {
	r.providerRequests.WithLabelValues(op, outcome).Inc()
	r.providerLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveHTTPRequest records a completed HTTP request. route should be the
// templated pattern, not the raw path.
func (r *Recorder) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// HTTPInFlight adjusts the in-flight request gauge by delta.
func (r *Recorder) HTTPInFlight(delta float64) {
	r.httpInFlight.Add(delta)
}

// RecordRefresh records the outcome of one price refresh run.
func (r *Recorder) RecordRefresh(summary model.RefreshSummary, elapsed time.Duration) {
	r.refreshRuns.Inc()
	r.refreshSymbols.WithLabelValues("updated").Add(float64(summary.Updated))
	r.refreshSymbols.WithLabelValues("skipped").Add(float64(summary.Skipped))
	r.refreshSymbols.WithLabelValues("failed").Add(float64(summary.Failed))
	r.refreshDuration.Observe(elapsed.Seconds())
}

// RecordLastPrice records the latest stored close for symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// LiveSessionOpened increments the open live search session gauge.
func (r *Recorder) LiveSessionOpened() { r.liveSessions.Inc() }

// LiveSessionClosed decrements the open live search session gauge.
func (r *Recorder) LiveSessionClosed() { r.liveSessions.Dec() }

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
