package observability

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Histogram bucket definitions.
var requestDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds the Prometheus instruments for API calls. It satisfies
// operation.Recorder.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	PagesFetchedTotal  *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	OperationsVerified *prometheus.GaugeVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pscale_client_requests_total",
			Help: "Total number of API requests that received a response.",
		}, []string{"operation", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pscale_client_request_duration_seconds",
			Help:    "API request duration in seconds.",
			Buckets: requestDurationBuckets,
		}, []string{"operation"}),
		PagesFetchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pscale_client_pages_fetched_total",
			Help: "Total number of pages yielded by pagination streams.",
		}, []string{"operation"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pscale_client_errors_total",
			Help: "Total number of failed calls by error kind.",
		}, []string{"operation", "kind"}),
		OperationsVerified: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pscale_client_operations_verified",
			Help: "Operations checked against an OpenAPI document, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.PagesFetchedTotal,
		m.ErrorsTotal,
		m.OperationsVerified,
	)

	return m
}

// RecordRequest records a completed round trip.
func (m *Metrics) RecordRequest(operation string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError records a failed call.
func (m *Metrics) RecordError(operation, kind string) {
	m.ErrorsTotal.WithLabelValues(operation, kind).Inc()
}

// RecordPage records one page yielded by a pagination stream.
func (m *Metrics) RecordPage(operation string) {
	m.PagesFetchedTotal.WithLabelValues(operation).Inc()
}

// SetOperationsVerified records the outcome of a conformance check.
func (m *Metrics) SetOperationsVerified(matched, missing int) {
	m.OperationsVerified.WithLabelValues("matched").Set(float64(matched))
	m.OperationsVerified.WithLabelValues("missing").Set(float64(missing))
}

// WriteText writes every metric family in g to w in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", f.GetName(), err)
		}
	}
	return nil
}
