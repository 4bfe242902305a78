package machine

// State describes one state of a machine. All callbacks are optional except
// where Definition.Validate says otherwise.
type State struct {
	Number  StateID
	Name    string
	Enter   ActionFunc
	Process ProcessFunc
	Exit    ActionFunc
}

// Definition is the static state table a Machine is built from.
// It is read-only once a machine has been created from it.
type Definition struct {
	// States lists every state exactly once, in any order. Numbers must
	// cover 1..len(States).
	States []State
	// Init is the state a new machine starts in. It is never entered: its
	// Process callback runs once at construction to pick the first real state.
	Init StateID
	// Free is the terminal state entered by Release. Its Enter callback owns
	// all cleanup.
	Free StateID
}

// MaxState returns the highest valid state number.
func (d *Definition) MaxState() StateID {
	return StateID(len(d.States))
}

// State returns the state with the given number.
func (d *Definition) State(n StateID) (*State, bool) {
	for i := range d.States {
		if d.States[i].Number == n {
			return &d.States[i], true
		}
	}
	return nil, false
}

// Validate checks the table for the invariants the engine relies on.
func (d *Definition) Validate() error {
	if d == nil {
		return &DefinitionError{Reason: "definition is nil"}
	}
	if len(d.States) < 2 {
		return &DefinitionError{Reason: "at least an init and a free state are required"}
	}

	maxState := d.MaxState()
	seen := make([]bool, maxState+1)
	for _, s := range d.States {
		if s.Number <= NoState || s.Number > maxState {
			return &DefinitionError{State: s.Number, Reason: "number out of range 1.." + itoa(maxState)}
		}
		if seen[s.Number] {
			return &DefinitionError{State: s.Number, Reason: "number defined more than once"}
		}
		seen[s.Number] = true
		if s.Name == "" {
			return &DefinitionError{State: s.Number, Reason: "name is empty"}
		}
	}

	if d.Init <= NoState || d.Init > maxState {
		return &DefinitionError{Reason: "init state " + itoa(d.Init) + " out of range"}
	}
	if d.Free <= NoState || d.Free > maxState {
		return &DefinitionError{Reason: "free state " + itoa(d.Free) + " out of range"}
	}
	if d.Init == d.Free {
		return &DefinitionError{State: d.Init, Reason: "init and free state must differ"}
	}

	init, _ := d.State(d.Init)
	if init.Process == nil {
		return &DefinitionError{State: d.Init, Reason: "init state needs a process callback"}
	}
	if init.Enter != nil || init.Exit != nil {
		return &DefinitionError{State: d.Init, Reason: "init state cannot have enter or exit callbacks"}
	}

	free, _ := d.State(d.Free)
	if free.Enter == nil {
		return &DefinitionError{State: d.Free, Reason: "free state needs an enter callback"}
	}
	if free.Process != nil {
		return &DefinitionError{State: d.Free, Reason: "free state cannot have a process callback"}
	}

	return nil
}

// index returns the states ordered by number, with a nil placeholder at 0.
func (d *Definition) index() []*State {
	idx := make([]*State, d.MaxState()+1)
	for i := range d.States {
		idx[d.States[i].Number] = &d.States[i]
	}
	return idx
}

// Names returns the state names ordered by number. The definition must be valid.
func (d *Definition) Names() []string {
	names := make([]string, 0, len(d.States))
	for _, s := range d.index()[1:] {
		if s != nil {
			names = append(names, s.Name)
		}
	}
	return names
}
