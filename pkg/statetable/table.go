package statetable

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/machinekit/pkg/machine"
)

// Document is the YAML form of a state table.
type Document struct {
	Name   string      `yaml:"name"`
	Init   string      `yaml:"init"`
	Free   string      `yaml:"free"`
	States []StateSpec `yaml:"states"`
}

// StateSpec is one state in a Document. Callback fields hold registry names.
type StateSpec struct {
	Number  int    `yaml:"number,omitempty"`
	Name    string `yaml:"name"`
	Enter   string `yaml:"enter,omitempty"`
	Process string `yaml:"process,omitempty"`
	Exit    string `yaml:"exit,omitempty"`
}

// Table is a compiled state table.
type Table struct {
	Name       string
	Definition *machine.Definition
	ids        map[string]machine.StateID
}

// ID returns the number assigned to the named state.
func (t *Table) ID(name string) (machine.StateID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// MustID works like ID but panics for unknown names. Meant for package-level
// state constants resolved once at startup.
func (t *Table) MustID(name string) machine.StateID {
	id, ok := t.ids[name]
	if !ok {
		panic(fmt.Sprintf("state table %q has no state %q", t.Name, name))
	}
	return id
}

// Load decodes a YAML document from r and compiles it against reg.
// Unknown fields are rejected.
func Load(r io.Reader, reg *Registry) (*Table, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrDecode)
		}
		return nil, errors.Join(ErrDecode, err)
	}
	return Compile(doc, reg)
}

// Parse works like Load on an in-memory document.
func Parse(data []byte, reg *Registry) (*Table, error) {
	return Load(bytes.NewReader(data), reg)
}

// Compile resolves callback names and state references and validates the
// resulting definition.
func Compile(doc Document, reg *Registry) (*Table, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	t := &Table{
		Name: doc.Name,
		ids:  make(map[string]machine.StateID, len(doc.States)),
	}
	states := make([]machine.State, 0, len(doc.States))

	for i, spec := range doc.States {
		num := machine.StateID(spec.Number)
		if num == machine.NoState {
			num = machine.StateID(i + 1)
		}
		if _, dup := t.ids[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name)
		}
		t.ids[spec.Name] = num

		enter, ok := reg.action(spec.Enter)
		if !ok {
			return nil, fmt.Errorf("%w: state %q enter %q", ErrUnknownCallback, spec.Name, spec.Enter)
		}
		process, ok := reg.process(spec.Process)
		if !ok {
			return nil, fmt.Errorf("%w: state %q process %q", ErrUnknownCallback, spec.Name, spec.Process)
		}
		exit, ok := reg.action(spec.Exit)
		if !ok {
			return nil, fmt.Errorf("%w: state %q exit %q", ErrUnknownCallback, spec.Name, spec.Exit)
		}

		states = append(states, machine.State{
			Number:  num,
			Name:    spec.Name,
			Enter:   enter,
			Process: process,
			Exit:    exit,
		})
	}

	initID, ok := t.ids[doc.Init]
	if !ok {
		return nil, fmt.Errorf("%w: init %q", ErrUnknownState, doc.Init)
	}
	freeID, ok := t.ids[doc.Free]
	if !ok {
		return nil, fmt.Errorf("%w: free %q", ErrUnknownState, doc.Free)
	}

	def := &machine.Definition{States: states, Init: initID, Free: freeID}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("state table %q: %w", doc.Name, err)
	}
	t.Definition = def
	return t, nil
}
