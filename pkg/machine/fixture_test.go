package machine_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/machinekit/pkg/logger"
	"github.com/dmitrymomot/machinekit/pkg/machine"
)

const (
	stInit machine.StateID = iota + 1
	stIdle
	stActive
	stClosing
	stFree
)

// session is the application context the test machine drives. Each callback
// records itself and then runs the matching test override, if any.
type session struct {
	log      []string
	initNext machine.StateID
	next     map[machine.StateID]machine.StateID

	onInit    func(m *machine.Machine)
	onEnter   map[machine.StateID]func(m *machine.Machine)
	onExit    map[machine.StateID]func(m *machine.Machine)
	onProcess map[machine.StateID]func(m *machine.Machine)
}

func newSessionState() *session {
	return &session{
		next:      make(map[machine.StateID]machine.StateID),
		onEnter:   make(map[machine.StateID]func(*machine.Machine)),
		onExit:    make(map[machine.StateID]func(*machine.Machine)),
		onProcess: make(map[machine.StateID]func(*machine.Machine)),
	}
}

func (s *session) record(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

func (s *session) reset() { s.log = nil }

func sessionDefinition() *machine.Definition {
	b := machine.NewBuilder().Init(stInit).Free(stFree)

	b.State(stInit, "init", machine.WithProcess(func(m *machine.Machine, uctx any) machine.StateID {
		s := uctx.(*session)
		s.record("init.process")
		if s.onInit != nil {
			s.onInit(m)
		}
		return s.initNext
	}))

	for _, st := range []struct {
		n    machine.StateID
		name string
	}{{stIdle, "idle"}, {stActive, "active"}, {stClosing, "closing"}} {
		b.State(st.n, st.name,
			machine.WithEnter(func(m *machine.Machine, uctx any) {
				s := uctx.(*session)
				s.record("%s.enter", st.name)
				if fn := s.onEnter[st.n]; fn != nil {
					fn(m)
				}
			}),
			machine.WithProcess(func(m *machine.Machine, uctx any) machine.StateID {
				s := uctx.(*session)
				s.record("%s.process", st.name)
				if fn := s.onProcess[st.n]; fn != nil {
					fn(m)
				}
				return s.next[st.n]
			}),
			machine.WithExit(func(m *machine.Machine, uctx any) {
				s := uctx.(*session)
				s.record("%s.exit", st.name)
				if fn := s.onExit[st.n]; fn != nil {
					fn(m)
				}
			}),
		)
	}

	b.State(stFree, "free", machine.WithEnter(func(m *machine.Machine, uctx any) {
		uctx.(*session).record("free.enter")
	}))

	return b.MustBuild()
}

func quietLogger() machine.Option {
	return machine.WithLogger(logger.New(logger.WithOutput(io.Discard)))
}

// newSession builds a machine that starts in idle with an empty log.
func newSession(t testing.TB, opts ...machine.Option) (*machine.Machine, *session) {
	t.Helper()
	s := newSessionState()
	s.initNext = stIdle
	m, err := machine.New(sessionDefinition(), s, append([]machine.Option{quietLogger()}, opts...)...)
	require.NoError(t, err)
	require.Equal(t, stIdle, m.Current())
	s.reset()
	return m, s
}

// recordHook returns a hook that logs its tag and the transition ends.
func recordHook(tag string) machine.HookFunc {
	return func(m *machine.Machine, from, to machine.StateID, hctx any) {
		hctx.(*session).record("%s %d->%d", tag, from, to)
	}
}
