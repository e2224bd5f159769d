// Package metrics defines the recorder the tool layer and orchestrator emit
// into, with a no-op default and a Prometheus-backed implementation.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder captures the events worth counting in a try-on session.
type Recorder interface {
	// IncToolCall counts one handled tool call. status is "ok" or "error".
	IncToolCall(group, tool, status string)
	// ObserveGeneration records one external generation call. kind is
	// "tryon" or "multiview"; status is "ok", "error" or "timeout".
	ObserveGeneration(kind, status string, seconds float64)
	// IncRateLimited counts one rejected acquisition, by operation.
	IncRateLimited(op string)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) IncToolCall(string, string, string)        {}
func (Noop) ObserveGeneration(string, string, float64) {}
func (Noop) IncRateLimited(string)                     {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	toolCalls   *prometheus.CounterVec
	generation  *prometheus.HistogramVec
	rateLimited *prometheus.CounterVec
	once        sync.Once
}

// NewProm builds and registers the collectors under namespace.
func NewProm(namespace string) *Prom {
	p := &Prom{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls handled, by group, tool and status",
		}, []string{"group", "tool", "status"}),
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_seconds",
			Help:      "External image-generation call duration, by kind and status",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"kind", "status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Generation attempts rejected by the cooldown gate, by operation",
		}, []string{"op"}),
	}
	p.register()
	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.toolCalls, p.generation, p.rateLimited)
	})
}

func (p *Prom) IncToolCall(group, tool, status string) {
	p.toolCalls.WithLabelValues(group, tool, status).Inc()
}

func (p *Prom) ObserveGeneration(kind, status string, seconds float64) {
	p.generation.WithLabelValues(kind, status).Observe(seconds)
}

func (p *Prom) IncRateLimited(op string) {
	p.rateLimited.WithLabelValues(op).Inc()
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
