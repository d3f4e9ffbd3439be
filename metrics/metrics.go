package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WorkflowItems   *prometheus.CounterVec
	WorkflowRuns    *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

// New registers every collector on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cradi",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cradi",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		WorkflowRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cradi",
				Subsystem: "workflow",
				Name:      "runs_total",
				Help:      "Workflow invocations by component and outcome",
			},
			[]string{"component", "outcome"},
		),
		WorkflowItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cradi",
				Subsystem: "workflow",
				Name:      "items_total",
				Help:      "Per-item workflow results by component and outcome",
			},
			[]string{"component", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cradi",
				Subsystem: "notify",
				Name:      "sends_total",
				Help:      "Notification dispatches by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.WorkflowRuns,
		m.WorkflowItems,
		m.Notifications,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// Run records one workflow invocation. A nil receiver is a no-op.
func (m *Metrics) Run(component string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.WorkflowRuns.WithLabelValues(component, outcome).Inc()
}

// Item records per-item outcomes. A nil receiver is a no-op.
func (m *Metrics) Item(component, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.WorkflowItems.WithLabelValues(component, outcome).Add(float64(n))
}

// Notify records one channel dispatch. A nil receiver is a no-op.
func (m *Metrics) Notify(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Notifications.WithLabelValues(channel, outcome).Inc()
}
