package machine

import (
	"errors"
	"fmt"
)

var (
	ErrDead              = errors.New("state machine is dead")
	ErrReleased          = errors.New("state machine has been released")
	ErrInvalidTarget     = errors.New("invalid target state")
	ErrInvalidPhase      = errors.New("invalid hook phase or sense")
	ErrInvalidHook       = errors.New("invalid hook: function cannot be nil")
	ErrShutdownRequested = errors.New("shutdown requested")
	ErrInvalidDefinition = errors.New("invalid state machine definition")
	ErrContractViolation = errors.New("contract violation")
)

// ContractViolationError reports a programming error in the embedding
// application, such as requesting a transition from inside a callback.
// The machine state is left untouched.
type ContractViolationError struct {
	Op     string // engine entry point that detected the violation
	State  string // name of the current state
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation in %s (state '%s'): %s", e.Op, e.State, e.Reason)
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// DefinitionError reports why a Definition was rejected.
type DefinitionError struct {
	State  StateID // offending state, NoState for table-wide problems
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.State == NoState {
		return fmt.Sprintf("invalid state machine definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid state machine definition: state %d: %s", e.State, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return ErrInvalidDefinition }

func IsContractViolation(err error) bool {
	var e *ContractViolationError
	return errors.As(err, &e)
}

func IsShutdownRequested(err error) bool {
	return errors.Is(err, ErrShutdownRequested)
}

func IsDefinitionError(err error) bool {
	var e *DefinitionError
	return errors.As(err, &e)
}

func invalidTarget(target StateID) error {
	return fmt.Errorf("%w: %d", ErrInvalidTarget, target)
}
