// Package metrics exposes dispatch, handler and task measurements to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Observer interface {
	Observe(val float64, labels ...string)

	// Tied to the prometheus collector type so a Metrics can be registered directly.
	prometheus.Collector
}

// Metrics groups the framework's observers. A nil *Metrics records nothing,
// so components take one unconditionally.
type Metrics struct {
	// DispatchCount counts messages by final dispatcher state.
	DispatchCount Observer
	// CommandLatency observes handler run time by command and outcome.
	CommandLatency Observer
	// EventCount counts event handler runs by event and outcome.
	EventCount Observer
	// TaskRuns counts task firings by task and outcome.
	TaskRuns Observer
	// TaskLatency observes task run time by task.
	TaskLatency Observer
}

// New creates the default prometheus observers under namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		DispatchCount: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Messages seen by the command dispatcher, by final state.",
		}, []string{"state"})),
		CommandLatency: NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command handler run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "outcome"})),
		EventCount: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_total",
			Help:      "Event handler runs, by event and outcome.",
		}, []string{"event", "outcome"})),
		TaskRuns: NewPromCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Scheduled task firings, by task and outcome.",
		}, []string{"task", "outcome"})),
		TaskLatency: NewPromObserverVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Scheduled task run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"})),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.DispatchCount,
		m.CommandLatency,
		m.EventCount,
		m.TaskRuns,
		m.TaskLatency,
	}
}

// Outcome labels.
const (
	OK    = "ok"
	Error = "error"
)

func outcome(err error) string {
	if err != nil {
		return Error
	}
	return OK
}

func (m *Metrics) Dispatched(state string) {
	if m == nil {
		return
	}
	m.DispatchCount.Observe(1, state)
}

func (m *Metrics) CommandRan(name string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.CommandLatency.Observe(took.Seconds(), name, outcome(err))
}

func (m *Metrics) EventHandled(event string, err error) {
	if m == nil {
		return
	}
	m.EventCount.Observe(1, event, outcome(err))
}

func (m *Metrics) TaskRan(name string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.TaskRuns.Observe(1, name, outcome(err))
	m.TaskLatency.Observe(took.Seconds(), name)
}
