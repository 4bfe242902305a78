// Package machine is a synchronous, in-memory finite-state-machine engine for
// driving the lifecycle of long-lived objects such as protocol sessions.
//
// An application describes its states once in a Definition: a dense table of
// numbered states with optional enter, process and exit callbacks, plus the
// init state a machine starts in and the free state it ends in. The engine owns
// transition sequencing, a pre/post hook system for observing transitions, a
// reentrancy guard, and a pause/defer mechanism.
//
// # Lifecycle
//
// New builds a Machine and runs the init state's process callback once; a
// non-zero result becomes the first real state. The owning driver then calls
// Process whenever something happens (a timer fires, input arrives) and
// Transition when it decides on its own that the machine must move. Release
// exits the current state and enters the free state, whose enter callback
// performs all cleanup.
//
//	def := machine.NewBuilder().
//	    Init(stInit).
//	    Free(stFree).
//	    State(stInit, "init", machine.WithProcess(pickFirst)).
//	    State(stOpen, "open", machine.WithEnter(openConn), machine.WithProcess(readConn)).
//	    State(stFree, "free", machine.WithEnter(closeConn)).
//	    MustBuild()
//
//	m, err := machine.New(def, conn)
//	...
//	if _, err := m.Process(); machine.IsShutdownRequested(err) {
//	    _ = m.Release()
//	}
//
// Every transition runs in a fixed order:
//
//	exit/pre hooks -> Exit -> exit/post hooks -> (current changes) -> enter/pre hooks -> Enter -> enter/post hooks
//
// # Rules for callbacks
//
// Callbacks and hooks must not call Transition, Process, Release, or a Resume
// that would run a deferred transition. A state moves on by returning the
// target from its process callback. Breaking this rule is a contract
// violation: it is logged, returned as a *ContractViolationError and leaves
// the machine untouched, or panics when the machine was built with
// WithPanicOnViolation.
//
// # Pause and Resume
//
// Pause lets the driver change the objects surrounding the machine without a
// transition tearing them down halfway. While paused, one Transition is
// remembered and performed by the Resume that ends the outermost pause.
// Requesting a second one before then is a contract violation.
//
// # Hooks
//
// Hooks attach to a (state, phase, sense) slot and run in registration order.
// A hook may detach itself or any other hook while the slot is being walked.
// One-shot hooks detach themselves after their first call. A HookGroup
// detaches a set of hooks at once.
//
// # Concurrency
//
// A Machine is not safe for concurrent use and starts no goroutines. The owning
// driver serializes all calls.
package machine
