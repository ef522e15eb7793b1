// Package exporter implements the Prometheus exporter mode: probe workers
// record straight into a shared, thread-safe metrics registry which is
// served over HTTP. There is no aggregator and no windowed history here;
// Prometheus owns the time dimension.
package exporter

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder is the sink probe workers report into. Implementations must be
// safe for concurrent use by many workers.
type Recorder interface {
	RecordSuccess(target, ip string, rttMillis float64)
	RecordTimeout(target, ip string)
	RecordError(target, ip string)
}

// Metrics wraps a dedicated Prometheus registry with the probe metrics.
type Metrics struct {
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	requests  *prometheus.CounterVec
}

// NewMetrics builds and registers the probe metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pingwatch_ping_duration_seconds",
			Help:    "Histogram of ping durations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"target", "ip"},
	)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingwatch_ping_requests_total",
			Help: "Total number of ping requests",
		},
		[]string{"target", "ip", "status"},
	)

	registry.MustRegister(durations, requests)

	return &Metrics{
		registry:  registry,
		durations: durations,
		requests:  requests,
	}
}

// RecordSuccess counts a successful probe and observes its latency.
func (m *Metrics) RecordSuccess(target, ip string, rttMillis float64) {
	m.requests.WithLabelValues(target, ip, "success").Inc()
	m.durations.WithLabelValues(target, ip).Observe(rttMillis / 1000)
}

// RecordTimeout counts a probe that got no reply.
func (m *Metrics) RecordTimeout(target, ip string) {
	m.requests.WithLabelValues(target, ip, "timeout").Inc()
}

// RecordError counts a probe-level transport failure.
func (m *Metrics) RecordError(target, ip string) {
	m.requests.WithLabelValues(target, ip, "error").Inc()
}

// Registry exposes the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RenderText returns the metrics in the Prometheus text exposition format.
func (m *Metrics) RenderText() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return "", fmt.Errorf("encode metrics: %w", err)
		}
	}
	return buf.String(), nil
}
