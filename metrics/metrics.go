// Package metrics holds the Prometheus collectors of the card service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	RendersTotal       *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec
	UploadsTotal       *prometheus.CounterVec
	RenderCacheTotal   *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. When reg is also a
// prometheus.Gatherer, Handler serves its contents.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		RendersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogcard_renders_total",
				Help: "Total number of card rasterizations.",
			},
			[]string{"backend", "status"},
		),
		RenderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ogcard_render_duration_seconds",
				Help:    "Duration of card rasterizations.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"backend"},
		),
		UploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogcard_uploads_total",
				Help: "Total number of card uploads.",
			},
			[]string{"status"},
		),
		RenderCacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogcard_render_cache_total",
				Help: "Render cache lookups by result.",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ogcard_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ogcard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveRender records one rasterization.
func (m *Metrics) ObserveRender(backend string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(backend, status(ok)).Inc()
	m.RenderDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveUpload records one upload outcome.
func (m *Metrics) ObserveUpload(ok bool) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(status(ok)).Inc()
}

// ObserveCache records a render cache lookup. result is hit, miss or error.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.RenderCacheTotal.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
