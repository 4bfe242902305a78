// Package machinemetrics exports Prometheus metrics for machines by observing
// them through hooks.
package machinemetrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/machinekit/pkg/machine"
)

// Labels are bounded by the definition: "machine" is the name the caller gives
// a kind of machine, never an instance id.
const (
	labelMachine = "machine"
	labelState   = "state"
	labelFrom    = "from"
	labelTo      = "to"
)

// Collector holds the metric vectors shared by every instrumented machine.
type Collector struct {
	transitions *prometheus.CounterVec
	processes   *prometheus.CounterVec
	current     *prometheus.GaugeVec
}

// NewCollector creates the metric vectors and registers them with reg.
// A nil reg leaves them unregistered. Registration conflicts panic, as with
// promauto.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	f := promauto.With(reg)
	return &Collector{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "transitions_total",
			Help:      "Total number of state transitions, by machine and state pair.",
		}, []string{labelMachine, labelFrom, labelTo}),
		processes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "process_total",
			Help:      "Total number of process calls, by machine and state.",
		}, []string{labelMachine, labelState}),
		current: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "machine",
			Name:      "current_state",
			Help:      "Number of live instrumented machines in each state.",
		}, []string{labelMachine, labelState}),
	}
}

// Instrument attaches hooks to m that feed the collector under the given
// machine name. m is counted in its current state right away and stops being
// counted when it enters the free state. Detaching the returned group before
// release leaves m counted in the state it was in.
func (c *Collector) Instrument(m *machine.Machine, name string) (*machine.HookGroup, error) {
	def := m.Definition()
	g := m.NewHookGroup()

	entered := func(m *machine.Machine, from, to machine.StateID, _ any) {
		fromName, toName := m.StateName(from), m.StateName(to)
		c.transitions.WithLabelValues(name, fromName, toName).Inc()
		c.current.WithLabelValues(name, fromName).Dec()
		if to != def.Free {
			c.current.WithLabelValues(name, toName).Inc()
		}
	}
	processed := func(m *machine.Machine, from, _ machine.StateID, _ any) {
		c.processes.WithLabelValues(name, m.StateName(from)).Inc()
	}

	for _, st := range def.States {
		if _, err := g.Hook(st.Number, machine.PhaseEnter, machine.Post, entered, nil); err != nil {
			g.DetachAll()
			return nil, fmt.Errorf("instrument %q: %w", name, err)
		}
		if st.Number == def.Free {
			continue
		}
		if _, err := g.Hook(st.Number, machine.PhaseProcess, machine.Post, processed, nil); err != nil {
			g.DetachAll()
			return nil, fmt.Errorf("instrument %q: %w", name, err)
		}
	}

	c.current.WithLabelValues(name, m.StateName(m.Current())).Inc()
	return g, nil
}

// CurrentState returns the population gauge for one machine name and state.
func (c *Collector) CurrentState(name, state string) (prometheus.Gauge, error) {
	return c.current.GetMetricWithLabelValues(name, state)
}
