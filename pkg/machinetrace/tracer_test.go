package machinetrace_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dmitrymomot/machinekit/pkg/machine"
	"github.com/dmitrymomot/machinekit/pkg/machinetrace"
)

const (
	stInit machine.StateID = iota + 1
	stWait
	stRun
	stFree
)

type job struct{ next machine.StateID }

func jobDefinition() *machine.Definition {
	next := func(_ *machine.Machine, uctx any) machine.StateID {
		j := uctx.(*job)
		n := j.next
		j.next = machine.NoState
		return n
	}
	return machine.NewBuilder().
		Init(stInit).
		Free(stFree).
		State(stInit, "init", machine.WithProcess(func(*machine.Machine, any) machine.StateID { return stWait })).
		State(stWait, "wait", machine.WithProcess(next)).
		State(stRun, "run", machine.WithProcess(next)).
		State(stFree, "free", machine.WithEnter(func(*machine.Machine, any) {})).
		MustBuild()
}

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := make(map[attribute.Key]string)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value.AsString()
	}
	return out
}

func TestInstrument_Spans(t *testing.T) {
	t.Parallel()
	sr, tp := newRecorder(t)

	j := &job{}
	m, err := machine.New(jobDefinition(), j)
	require.NoError(t, err)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "session")
	g, err := machinetrace.New(tp.Tracer("machine")).Instrument(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 13, g.Len())

	j.next = stRun
	_, err = m.Process()
	require.NoError(t, err)
	require.NoError(t, m.Release())
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 4)

	id := m.ID().String()
	tests := []struct {
		name  string
		attrs map[attribute.Key]string
	}{
		{machinetrace.SpanProcess, map[attribute.Key]string{
			machinetrace.AttrMachineID: id, machinetrace.AttrState: "wait",
		}},
		{machinetrace.SpanTransition, map[attribute.Key]string{
			machinetrace.AttrMachineID: id, machinetrace.AttrFrom: "wait", machinetrace.AttrTo: "run",
		}},
		{machinetrace.SpanTransition, map[attribute.Key]string{
			machinetrace.AttrMachineID: id, machinetrace.AttrFrom: "run", machinetrace.AttrTo: "free",
		}},
		{"session", map[attribute.Key]string{}},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.name, spans[i].Name(), "span %d", i)
		assert.Equal(t, tt.attrs, attrs(spans[i]), "span %d", i)
		if i < 3 {
			assert.Equal(t, parent.SpanContext().SpanID(), spans[i].Parent().SpanID(), "span %d", i)
		}
	}
}

func TestInstrument_DetachedGroupStopsTracing(t *testing.T) {
	t.Parallel()
	sr, tp := newRecorder(t)

	j := &job{}
	m, err := machine.New(jobDefinition(), j)
	require.NoError(t, err)

	g, err := machinetrace.New(tp.Tracer("machine")).Instrument(context.Background(), m)
	require.NoError(t, err)
	g.DetachAll()

	require.NoError(t, m.Transition(stRun))
	require.NoError(t, m.Release())
	assert.Empty(t, sr.Ended())
	assert.Empty(t, sr.Started())
}

func TestInstrument_DeadMachine(t *testing.T) {
	t.Parallel()

	m, err := machine.New(jobDefinition(), &job{})
	require.NoError(t, err)
	require.NoError(t, m.Release())

	g, err := machinetrace.New(nil).Instrument(context.Background(), m)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, machine.ErrReleased)
}
