package machine

import (
	"fmt"
	"slices"
)

// Builder provides a fluent API for assembling a Definition.
type Builder struct {
	states []State
	init   StateID
	free   StateID
}

// StateOption configures a single state added through Builder.State.
type StateOption func(*State)

// NewBuilder creates an empty definition builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// State adds a state. Adding the same number twice keeps both entries and
// fails validation in Build.
func (b *Builder) State(number StateID, name string, opts ...StateOption) *Builder {
	s := State{Number: number, Name: name}
	for _, opt := range opts {
		opt(&s)
	}
	b.states = append(b.states, s)
	return b
}

// Init sets the construction state.
func (b *Builder) Init(number StateID) *Builder {
	b.init = number
	return b
}

// Free sets the terminal state.
func (b *Builder) Free(number StateID) *Builder {
	b.free = number
	return b
}

// Build validates and returns the definition. States are ordered by number.
func (b *Builder) Build() (*Definition, error) {
	states := slices.Clone(b.states)
	slices.SortStableFunc(states, func(a, c State) int { return int(a.Number - c.Number) })

	d := &Definition{States: states, Init: b.init, Free: b.free}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustBuild works like Build but panics on an invalid definition.
func (b *Builder) MustBuild() *Definition {
	d, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine definition: %v", err))
	}
	return d
}

// WithEnter sets the state's enter callback.
func WithEnter(fn ActionFunc) StateOption {
	return func(s *State) { s.Enter = fn }
}

// WithProcess sets the state's process callback.
func WithProcess(fn ProcessFunc) StateOption {
	return func(s *State) { s.Process = fn }
}

// WithExit sets the state's exit callback.
func WithExit(fn ActionFunc) StateOption {
	return func(s *State) { s.Exit = fn }
}
