// Package observability exposes Prometheus metrics for model builds,
// predictions and the JSON API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry, so several instances
// can live in one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	buildsTotal       *prometheus.CounterVec
	buildDuration     prometheus.Histogram
	predictionsTotal  *prometheus.CounterVec
	tableSlots        prometheus.Gauge
	tableGaps         prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftcast_http_requests_total",
			Help: "Total count of API requests by route pattern and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "liftcast_http_request_duration_seconds",
			Help:    "Histogram of API request durations by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftcast_model_builds_total",
			Help: "Typicality table builds by result (ok or error).",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "liftcast_model_build_duration_seconds",
			Help:    "Histogram of load plus aggregation time per build.",
			Buckets: prometheus.DefBuckets,
		}),
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liftcast_predictions_total",
			Help: "Predictions by result (hit, missing_key or error).",
		}, []string{"result"}),
		tableSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liftcast_table_slots",
			Help: "Populated slots in the published typicality table.",
		}),
		tableGaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liftcast_table_gaps",
			Help: "Slots without history in the published typicality table.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.buildsTotal,
		m.buildDuration,
		m.predictionsTotal,
		m.tableSlots,
		m.tableGaps,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished API request.
func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// BuildSucceeded records a published table.
func (m *Metrics) BuildSucceeded(duration time.Duration, slots, gaps int) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues("ok").Inc()
	m.buildDuration.Observe(duration.Seconds())
	m.tableSlots.Set(float64(slots))
	m.tableGaps.Set(float64(gaps))
}

// BuildFailed records a build that kept the previous table.
func (m *Metrics) BuildFailed(duration time.Duration) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues("error").Inc()
	m.buildDuration.Observe(duration.Seconds())
}

// Prediction records one prediction outcome: hit, missing_key or error.
func (m *Metrics) Prediction(result string) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(result).Inc()
}
