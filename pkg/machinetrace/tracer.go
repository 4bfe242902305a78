// Package machinetrace records OpenTelemetry spans for machine transitions
// and process calls.
package machinetrace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/machinekit/pkg/machine"
)

const instrumentationName = "github.com/dmitrymomot/machinekit/pkg/machinetrace"

// Span names.
const (
	SpanTransition = "machine.transition"
	SpanProcess    = "machine.process"
)

// Attribute keys.
const (
	AttrMachineID = attribute.Key("machine.id")
	AttrFrom      = attribute.Key("machine.from")
	AttrTo        = attribute.Key("machine.to")
	AttrState     = attribute.Key("machine.state")
)

// Tracer creates spans for instrumented machines.
type Tracer struct {
	tracer trace.Tracer
}

// New returns a Tracer backed by tracer, or by the global provider when
// tracer is nil.
func New(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &Tracer{tracer: tracer}
}

// Instrument attaches hooks to m. A transition span starts before the exit
// callback of the old state and ends after the enter hooks of the new one.
// A process span covers the process hooks and callback. Spans are children of
// the span in ctx.
func (t *Tracer) Instrument(ctx context.Context, m *machine.Machine) (*machine.HookGroup, error) {
	def := m.Definition()
	id := AttrMachineID.String(m.ID().String())
	g := m.NewHookGroup()

	// Handlers never nest, so at most one of each span is open at a time.
	var transition, process trace.Span

	exiting := func(m *machine.Machine, from, to machine.StateID, _ any) {
		_, transition = t.tracer.Start(ctx, SpanTransition,
			trace.WithAttributes(id,
				AttrFrom.String(m.StateName(from)),
				AttrTo.String(m.StateName(to)),
			))
	}
	entered := func(*machine.Machine, machine.StateID, machine.StateID, any) {
		if transition != nil {
			transition.End()
			transition = nil
		}
	}
	processing := func(m *machine.Machine, from, _ machine.StateID, _ any) {
		_, process = t.tracer.Start(ctx, SpanProcess,
			trace.WithAttributes(id, AttrState.String(m.StateName(from))))
	}
	processed := func(*machine.Machine, machine.StateID, machine.StateID, any) {
		if process != nil {
			process.End()
			process = nil
		}
	}

	register := func(state machine.StateID, phase machine.Phase, sense machine.Sense, fn machine.HookFunc) error {
		if _, err := g.Hook(state, phase, sense, fn, nil); err != nil {
			g.DetachAll()
			return fmt.Errorf("instrument machine %s: %w", m.ID(), err)
		}
		return nil
	}

	for _, st := range def.States {
		if err := register(st.Number, machine.PhaseEnter, machine.Post, entered); err != nil {
			return nil, err
		}
		if st.Number == def.Free {
			continue
		}
		if err := register(st.Number, machine.PhaseExit, machine.Pre, exiting); err != nil {
			return nil, err
		}
		if err := register(st.Number, machine.PhaseProcess, machine.Pre, processing); err != nil {
			return nil, err
		}
		if err := register(st.Number, machine.PhaseProcess, machine.Post, processed); err != nil {
			return nil, err
		}
	}
	return g, nil
}
