// Package metrics exposes Prometheus collectors for tool calls, analysis
// passes, finding resolution and quota decisions. All methods are safe to
// call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inkpilot"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	analysisPasses   *prometheus.CounterVec
	annotateDuration *prometheus.HistogramVec
	findings         *prometheus.CounterVec
	quotaDecisions   *prometheus.CounterVec
	openSessions     prometheus.GaugeFunc
}

// New creates the collectors. sessions, when non-nil, reports the number of
// open editor sessions at scrape time.
func New(sessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and status.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "MCP tool call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		analysisPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_passes_total",
			Help:      "Analysis passes by kind and outcome.",
		}, []string{"kind", "outcome"}),
		annotateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "annotate_duration_seconds",
			Help:      "Annotator latency by annotator and kind.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"annotator", "kind"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings by kind and resolution outcome.",
		}, []string{"kind", "outcome"}),
		quotaDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Quota checks by kind and decision.",
		}, []string{"kind", "decision"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.toolCalls,
		m.toolDuration,
		m.analysisPasses,
		m.annotateDuration,
		m.findings,
		m.quotaDecisions,
	)

	if sessions != nil {
		m.openSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_sessions",
			Help:      "Open editor sessions.",
		}, func() float64 { return float64(sessions()) })
		m.registry.MustRegister(m.openSessions)
	}

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveToolCall records one MCP tool call.
func (m *Metrics) ObserveToolCall(tool string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, status(err)).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveAnnotate records one annotator request.
func (m *Metrics) ObserveAnnotate(annotator, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.annotateDuration.WithLabelValues(annotator, kind).Observe(d.Seconds())
}

// AnalysisPass records the outcome of one analysis pass: "ok", "error" or
// "quota_exceeded".
func (m *Metrics) AnalysisPass(kind, outcome string) {
	if m == nil {
		return
	}
	m.analysisPasses.WithLabelValues(kind, outcome).Inc()
}

// Findings records how many findings of kind were resolved, dropped at
// resolution and rejected at the wire boundary.
func (m *Metrics) Findings(kind string, resolved, dropped, rejected int) {
	if m == nil {
		return
	}
	m.findings.WithLabelValues(kind, "resolved").Add(float64(resolved))
	m.findings.WithLabelValues(kind, "dropped").Add(float64(dropped))
	m.findings.WithLabelValues(kind, "rejected").Add(float64(rejected))
}

// QuotaDecision records one quota check.
func (m *Metrics) QuotaDecision(kind string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.quotaDecisions.WithLabelValues(kind, decision).Inc()
}
