package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	prometheus.Collector
}

// Metrics groups the observers the command core reports to. A nil *Metrics
// reports nothing.
type Metrics struct {
	// Events counts inbound gateway events by kind.
	Events Observer
	// Invocations counts handler invocations by kind and command label.
	Invocations Observer
	// Failures counts handlers that returned an error, by kind and label.
	Failures Observer
	// Panics counts handlers that panicked, by kind and label.
	Panics Observer
}

// New creates Prometheus-backed metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		Events: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "gateway",
					Name:      "events_total",
					Help:      "Number of gateway events routed, by kind.",
				},
				[]string{"kind"},
			),
		),
		Invocations: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "commands",
					Name:      "invocations_total",
					Help:      "Number of command handlers invoked.",
				},
				[]string{"kind", "command"},
			),
		),
		Failures: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "commands",
					Name:      "failures_total",
					Help:      "Number of command handlers that returned an error.",
				},
				[]string{"kind", "command"},
			),
		),
		Panics: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: "commands",
					Name:      "panics_total",
					Help:      "Number of command handlers that panicked.",
				},
				[]string{"kind", "command"},
			),
		),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.Events,
		m.Invocations,
		m.Failures,
		m.Panics,
	}
}

// Event records one inbound event.
func (m *Metrics) Event(kind string) {
	if m == nil || m.Events == nil {
		return
	}
	m.Events.Observe(1, kind)
}

// Invocation records one handler invocation.
func (m *Metrics) Invocation(kind, command string) {
	if m == nil || m.Invocations == nil {
		return
	}
	m.Invocations.Observe(1, kind, command)
}

// Failure records a handler error.
func (m *Metrics) Failure(kind, command string) {
	if m == nil || m.Failures == nil {
		return
	}
	m.Failures.Observe(1, kind, command)
}

// Panic records a recovered handler panic.
func (m *Metrics) Panic(kind, command string) {
	if m == nil || m.Panics == nil {
		return
	}
	m.Panics.Observe(1, kind, command)
}
