package machine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/machinekit/pkg/logger"
)

// stateInstance is the runtime record of one defined state.
type stateInstance struct {
	def   *State
	hooks [numPhases][numSenses]hookList
}

// Machine is a running instance of a Definition.
//
// A Machine is not safe for concurrent use. It is owned by the driver that
// created it, and every call, including those made from callbacks, must come
// from that driver's goroutine.
type Machine struct {
	def     *Definition
	uctx    any
	byNum   []*State
	states  []stateInstance
	current *stateInstance

	inHandler handlerToken
	paused    int
	deferred  StateID
	dead      bool
	released  bool

	id               uuid.UUID
	logger           *slog.Logger
	panicOnViolation bool
}

// New creates a machine from def and runs the init state's process callback
// once. A non-zero result is transitioned to immediately, running the enter
// callback and hooks of that first real state.
//
// If the init process callback asks for the free state, the machine is
// released on the spot and New returns ErrShutdownRequested.
func New(def *Definition, uctx any, opts ...Option) (*Machine, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		def:    def,
		uctx:   uctx,
		byNum:  def.index(),
		states: make([]stateInstance, def.MaxState()+1),
		id:     uuid.New(),
		logger: Logger,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("apply machine option: %w", err)
		}
	}
	m.logger = m.logger.With(logger.Component("machine"), logger.MachineID(m.id))

	for n := 1; n < len(m.states); n++ {
		inst := &m.states[n]
		inst.def = m.byNum[n]
		for p := range inst.hooks {
			for s := range inst.hooks[p] {
				inst.hooks[p][s].init()
			}
		}
	}
	m.current = &m.states[def.Init]

	// The init state is never entered, so only its process callback runs.
	m.inHandler = allocating
	next := m.current.def.Process(m, uctx)
	m.inHandler = noHandler

	switch {
	case next == NoState:
		m.logger.Debug("machine allocated", logger.State(m.current.def.Name))
		return m, nil
	case next == def.Free:
		m.logger.Warn("init state requested shutdown", logger.State(m.current.def.Name))
		m.dead = true
		if err := m.Release(); err != nil {
			return nil, err
		}
		return nil, ErrShutdownRequested
	case next < NoState || next > def.MaxState():
		return nil, m.violation(allocating, "init process returned invalid state "+itoa(next))
	}

	if err := m.Transition(next); err != nil {
		return nil, err
	}
	m.logger.Debug("machine allocated", logger.State(m.current.def.Name))
	return m, nil
}

// MustNew works like New but panics on error.
func MustNew(def *Definition, uctx any, opts ...Option) *Machine {
	m, err := New(def, uctx, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// Process runs the current state's process phase and acts on its result.
//
// It returns (NoState, nil) when the state asked to stay, (s, nil) after
// transitioning to s, and ErrShutdownRequested when the state returned the
// free state. After a shutdown request the machine is dead and the only
// meaningful call left is Release.
//
// Process must not be called from a callback, while paused, or while a
// deferred transition is pending.
func (m *Machine) Process() (StateID, error) {
	if err := m.usable(); err != nil {
		return NoState, err
	}
	if m.inHandler != noHandler {
		return NoState, m.violation(processing, "process called while "+m.inHandler.String()+" is running")
	}
	if m.deferred != NoState {
		return NoState, m.violation(processing, "process called with deferred transition to "+m.nameOf(m.deferred)+" pending")
	}
	if m.paused > 0 {
		return NoState, m.violation(processing, "process called while paused")
	}

	next := m.runProcess()

	switch {
	case next == NoState:
		return NoState, nil
	case next == m.def.Free:
		m.dead = true
		m.logger.Warn("shutdown requested", logger.State(m.current.def.Name))
		return NoState, ErrShutdownRequested
	case next < NoState || next > m.def.MaxState():
		return NoState, m.violation(processing, "process returned invalid state "+itoa(next))
	}

	if err := m.Transition(next); err != nil {
		return NoState, err
	}
	return next, nil
}

func (m *Machine) runProcess() StateID {
	cur := m.current
	old := cur.def.Number

	m.inHandler = processing
	defer func() { m.inHandler = noHandler }()

	cur.hooks[PhaseProcess][Pre].run(m, old, old)
	next := NoState
	if cur.def.Process != nil {
		next = cur.def.Process(m, m.uctx)
	}
	cur.hooks[PhaseProcess][Post].run(m, old, old)
	return next
}

// Transition moves the machine to target. It is meant for the driver that owns
// the machine (timers, I/O callbacks); callbacks and hooks must instead return
// the target from a process callback.
//
// A transition to the current state does nothing. While paused, the transition
// is recorded and performed by the Resume that ends the pause; only one
// transition can be deferred at a time.
func (m *Machine) Transition(target StateID) error {
	if err := m.usable(); err != nil {
		return err
	}
	if target <= NoState || target > m.def.MaxState() {
		return invalidTarget(target)
	}
	if target == m.def.Free {
		return fmt.Errorf("%w: free state %s is only entered by Release", ErrInvalidTarget, m.nameOf(target))
	}
	if target == m.current.def.Number {
		return nil
	}
	if m.inHandler != noHandler {
		return m.violation(transitioning, "transition to "+m.nameOf(target)+" requested while "+m.inHandler.String()+" is running")
	}

	if m.paused > 0 {
		if m.deferred != NoState {
			return m.violation(transitioning, "transition to "+m.nameOf(target)+" requested with transition to "+m.nameOf(m.deferred)+" already deferred")
		}
		m.deferred = target
		m.logger.Debug("transition deferred",
			logger.From(m.current.def.Name),
			logger.To(m.nameOf(target)),
			logger.Depth(m.paused),
		)
		return nil
	}

	m.stateTransition(target, transitioning)
	return nil
}

// Pause suppresses transitions until a matching Resume. Pauses nest.
func (m *Machine) Pause() error {
	if err := m.usable(); err != nil {
		return err
	}
	m.paused++
	m.logger.Debug("transitions paused", logger.Depth(m.paused))
	return nil
}

// Resume ends one level of Pause. When the last level ends and a transition
// was deferred, that transition runs before Resume returns. Resuming a machine
// that is not paused does nothing.
func (m *Machine) Resume() error {
	if err := m.usable(); err != nil {
		return err
	}
	if m.paused == 0 {
		return nil
	}
	if m.paused == 1 && m.deferred != NoState && m.inHandler != noHandler {
		return m.violation(resuming, "resume would run deferred transition to "+m.nameOf(m.deferred)+" while "+m.inHandler.String()+" is running")
	}

	m.paused--
	m.logger.Debug("transitions resumed", logger.Depth(m.paused))
	if m.paused > 0 || m.deferred == NoState {
		return nil
	}

	target := m.deferred
	m.deferred = NoState
	if target != m.current.def.Number {
		m.stateTransition(target, resuming)
	}
	return nil
}

// Release exits the current state, enters the free state and detaches every
// hook. It is the only transition allowed after the machine died and must be
// called exactly once by the owner; further calls return ErrReleased. A pending
// deferred transition is discarded.
func (m *Machine) Release() error {
	if m.released {
		return ErrReleased
	}
	if m.inHandler != noHandler {
		return m.violation(releasing, "release called while "+m.inHandler.String()+" is running")
	}
	if m.deferred != NoState {
		m.logger.Debug("discarding deferred transition", logger.To(m.nameOf(m.deferred)))
		m.deferred = NoState
	}
	m.paused = 0

	m.stateTransition(m.def.Free, releasing)

	m.dead = true
	m.released = true
	for n := 1; n < len(m.states); n++ {
		for p := range m.states[n].hooks {
			for s := range m.states[n].hooks[p] {
				m.states[n].hooks[p][s].clear()
			}
		}
	}
	m.states = nil
	m.current = nil
	m.logger.Debug("machine released")
	return nil
}

// stateTransition runs the exit half of the current state and the enter half
// of target. Callers guarantee no deferred transition is pending and no
// handler is running.
func (m *Machine) stateTransition(target StateID, token handlerToken) {
	cur := m.current
	old := cur.def.Number

	m.inHandler = token
	defer func() { m.inHandler = noHandler }()

	m.logger.Debug("state transition",
		logger.Operation(token.String()),
		logger.From(cur.def.Name),
		logger.To(m.nameOf(target)),
	)

	cur.hooks[PhaseExit][Pre].run(m, old, target)
	if cur.def.Exit != nil {
		cur.def.Exit(m, m.uctx)
	}
	cur.hooks[PhaseExit][Post].run(m, old, target)

	cur = &m.states[target]
	m.current = cur

	cur.hooks[PhaseEnter][Pre].run(m, old, target)
	if cur.def.Enter != nil {
		cur.def.Enter(m, m.uctx)
	}
	cur.hooks[PhaseEnter][Post].run(m, old, target)
}

// Hook registers fn on the given state, phase and sense. Hooks on one slot run
// in registration order. Pass Oneshot() to have the hook removed after it
// first runs.
func (m *Machine) Hook(state StateID, phase Phase, sense Sense, fn HookFunc, hctx any, opts ...HookOption) (*Hook, error) {
	if err := m.usable(); err != nil {
		return nil, err
	}
	if !phase.valid() || !sense.valid() {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidPhase, phase, sense)
	}
	if state <= NoState || state > m.def.MaxState() {
		return nil, invalidTarget(state)
	}
	if fn == nil {
		return nil, ErrInvalidHook
	}

	h := &Hook{fn: fn, hctx: hctx, state: state, phase: phase, sense: sense}
	for _, opt := range opts {
		opt(h)
	}
	m.states[state].hooks[phase][sense].pushBack(h)

	m.logger.Debug("hook registered",
		logger.State(m.nameOf(state)),
		logger.Phase(phase.String()+"/"+sense.String()),
	)
	return h, nil
}

// Current returns the current state, or NoState once the machine is dead.
func (m *Machine) Current() StateID {
	if m.dead || m.current == nil {
		return NoState
	}
	return m.current.def.Number
}

// StateName returns the display name of a state. NoState resolves to the
// deferred target if one is pending and to the current state otherwise.
// Numbers that resolve to nothing yield UnknownStateName. Explicit numbers
// resolve even after the machine died, for diagnostics.
func (m *Machine) StateName(state StateID) string {
	if state == NoState {
		switch {
		case m.dead:
			return UnknownStateName
		case m.deferred != NoState:
			state = m.deferred
		case m.current != nil:
			state = m.current.def.Number
		default:
			return UnknownStateName
		}
	}
	return m.nameOf(state)
}

func (m *Machine) nameOf(state StateID) string {
	if state <= NoState || int(state) >= len(m.byNum) {
		return UnknownStateName
	}
	return m.byNum[state].Name
}

// ID returns the machine's identifier, used to correlate log records.
func (m *Machine) ID() uuid.UUID { return m.id }

// Context returns the application context passed to New.
func (m *Machine) Context() any { return m.uctx }

// Definition returns the table the machine was built from.
func (m *Machine) Definition() *Definition { return m.def }

// Dead reports whether the machine requested shutdown or was released.
func (m *Machine) Dead() bool { return m.dead }

// Released reports whether Release has run.
func (m *Machine) Released() bool { return m.released }

// PauseDepth returns the number of unmatched Pause calls.
func (m *Machine) PauseDepth() int { return m.paused }

// Deferred returns the pending deferred target, or NoState.
func (m *Machine) Deferred() StateID { return m.deferred }

func (m *Machine) usable() error {
	if m.released {
		return ErrReleased
	}
	if m.dead {
		return ErrDead
	}
	return nil
}

// violation logs and returns a contract violation, or panics with it when
// the machine was configured to.
func (m *Machine) violation(op handlerToken, reason string) error {
	state := UnknownStateName
	if m.current != nil {
		state = m.current.def.Name
	}
	err := &ContractViolationError{Op: op.String(), State: state, Reason: reason}
	m.logger.Error("contract violation", logger.Operation(err.Op), logger.State(state), logger.Error(err))
	if m.panicOnViolation {
		panic(err)
	}
	return err
}
