package machineevents

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/machinekit/pkg/machine"
)

// Kind tells what happened to a machine.
type Kind uint8

const (
	KindTransition Kind = iota + 1
	KindProcess
	KindRelease
)

func (k Kind) String() string {
	switch k {
	case KindTransition:
		return "transition"
	case KindProcess:
		return "process"
	case KindRelease:
		return "release"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event describes one observed step. For process events From and To are both
// the state that was processed.
type Event struct {
	Machine  uuid.UUID
	Kind     Kind
	From     machine.StateID
	To       machine.StateID
	FromName string
	ToName   string
}

func (e Event) String() string {
	if e.Kind == KindProcess {
		return fmt.Sprintf("%s %s %s", e.Machine, e.Kind, e.FromName)
	}
	return fmt.Sprintf("%s %s %s->%s", e.Machine, e.Kind, e.FromName, e.ToName)
}
