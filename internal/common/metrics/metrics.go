// internal/common/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "response_guard"

type Metrics struct {
	Registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Contract Metrics
	ContractChecksTotal     *prometheus.CounterVec
	ContractViolationsTotal *prometheus.CounterVec
	ContractsDeclared       prometheus.Gauge
	RegistryReloadsTotal    *prometheus.CounterVec

	// Violation Recorder Metrics
	ViolationsRecorded prometheus.Counter
	ViolationsDropped  prometheus.Counter
}

// New registers every collector on a private registry so that tests and
// multiple servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		ContractChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_checks_total",
				Help:      "Total number of response contract checks",
			},
			[]string{"handler", "result"},
		),
		ContractViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_violations_total",
				Help:      "Total number of responses replaced because of a contract violation",
			},
			[]string{"handler", "reason"},
		),
		ContractsDeclared: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "contracts_declared",
				Help:      "Number of handlers with a usable contract",
			},
		),
		RegistryReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contract_registry_reloads_total",
				Help:      "Total number of contract registry reloads",
			},
			[]string{"status"},
		),

		ViolationsRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_recorded_total",
				Help:      "Total number of violations written to the store",
			},
		),
		ViolationsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_dropped_total",
				Help:      "Total number of violations dropped because the recorder buffer was full or the store failed",
			},
		),
	}
}

// --- Recording Methods ---

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordContractCheck(handler string, ok bool) {
	result := "pass"
	if !ok {
		result = "fail"
	}
	m.ContractChecksTotal.WithLabelValues(handler, result).Inc()
}

func (m *Metrics) RecordContractViolation(handler, reason string) {
	m.ContractViolationsTotal.WithLabelValues(handler, reason).Inc()
}

func (m *Metrics) SetContractsDeclared(n int) {
	m.ContractsDeclared.Set(float64(n))
}

func (m *Metrics) RecordRegistryReload(ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.RegistryReloadsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordViolationStored() {
	m.ViolationsRecorded.Inc()
}

func (m *Metrics) RecordViolationDropped() {
	m.ViolationsDropped.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
