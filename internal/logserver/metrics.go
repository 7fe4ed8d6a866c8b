package logserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-skyselect/internal/state"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the server collectors on reg. A nil reg uses the
// default registry. Store-derived gauges are read at scrape time.
func NewMetrics(reg prometheus.Registerer, store *state.Manager) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skyselect_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skyselect_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skyselect_payloads_rejected_total",
			Help: "Payloads refused with 400",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.rejected)

	if store != nil {
		stat := func(pick func(state.Stats) int) func() float64 {
			return func() float64 { return float64(pick(store.Stats())) }
		}
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "skyselect_selections_received",
				Help: "Payloads accepted on /api/log since start",
			}, stat(func(s state.Stats) int { return s.Received })),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "skyselect_selections_committed",
				Help: "Selections committed by the viewer since start",
			}, stat(func(s state.Stats) int { return s.Committed })),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "skyselect_selections_clipped",
				Help: "Committed selections that were clipped to the angular limit",
			}, stat(func(s state.Stats) int { return s.Clipped })),
		)
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}

	return m
}

// Handler serves the gathered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and duration.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := routeLabel(r.URL.Path)
		m.requests.WithLabelValues(path, r.Method, strconv.Itoa(rw.status)).Inc()
		m.duration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps label cardinality bounded to the known routes.
func routeLabel(path string) string {
	switch path {
	case "/api/log", "/api/selections", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
