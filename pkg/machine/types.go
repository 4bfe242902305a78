package machine

import (
	"log/slog"
	"strconv"
)

// StateID is the number of a state in a Definition.
// Valid states are numbered densely from 1; NoState (0) means "no state".
type StateID int

// NoState is the reserved zero state. Returned from a ProcessFunc it means
// "stay where you are".
const NoState StateID = 0

// UnknownStateName is returned by StateName for numbers that do not resolve
// to any state.
const UnknownStateName = "???"

// ActionFunc is a state's enter or exit callback.
type ActionFunc func(m *Machine, uctx any)

// ProcessFunc is a state's process callback. It returns NoState to stay in the
// current state, the machine's free state to request shutdown, or any other
// state to move to.
type ProcessFunc func(m *Machine, uctx any) StateID

// HookFunc observes a phase of a state. For enter and exit hooks from and to
// are the two ends of the transition; for process hooks both are the current state.
type HookFunc func(m *Machine, from, to StateID, hctx any)

// Phase selects the point in a state's life a hook attaches to.
type Phase int

const (
	PhaseEnter Phase = iota
	PhaseProcess
	PhaseExit

	numPhases = 3
)

func (p Phase) String() string {
	switch p {
	case PhaseEnter:
		return "enter"
	case PhaseProcess:
		return "process"
	case PhaseExit:
		return "exit"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

func (p Phase) valid() bool { return p >= 0 && p < numPhases }

// Sense selects whether a hook runs before or after the phase's own callback.
type Sense int

const (
	Pre Sense = iota
	Post

	numSenses = 2
)

func (s Sense) String() string {
	switch s {
	case Pre:
		return "pre"
	case Post:
		return "post"
	default:
		return "sense(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Sense) valid() bool { return s >= 0 && s < numSenses }

// handlerToken identifies the engine entry point whose callbacks are running.
type handlerToken int

const (
	noHandler handlerToken = iota
	allocating
	processing
	transitioning
	resuming
	releasing
)

func (t handlerToken) String() string {
	switch t {
	case allocating:
		return "allocate"
	case processing:
		return "process"
	case transitioning:
		return "transition"
	case resuming:
		return "resume"
	case releasing:
		return "release"
	default:
		return "none"
	}
}

func itoa(n StateID) string { return strconv.Itoa(int(n)) }

// Logger is used by machines created without WithLogger or WithConfig.
var Logger = slog.Default()
