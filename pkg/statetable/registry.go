package statetable

import "github.com/dmitrymomot/machinekit/pkg/machine"

// Registry maps callback names used in a state table to functions.
type Registry struct {
	actions   map[string]machine.ActionFunc
	processes map[string]machine.ProcessFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:   make(map[string]machine.ActionFunc),
		processes: make(map[string]machine.ProcessFunc),
	}
}

// Action registers an enter or exit callback. A later registration with the
// same name replaces the earlier one.
func (r *Registry) Action(name string, fn machine.ActionFunc) *Registry {
	r.actions[name] = fn
	return r
}

// Process registers a process callback.
func (r *Registry) Process(name string, fn machine.ProcessFunc) *Registry {
	r.processes[name] = fn
	return r
}

func (r *Registry) action(name string) (machine.ActionFunc, bool) {
	if name == "" {
		return nil, true
	}
	fn, ok := r.actions[name]
	return fn, ok && fn != nil
}

func (r *Registry) process(name string) (machine.ProcessFunc, bool) {
	if name == "" {
		return nil, true
	}
	fn, ok := r.processes[name]
	return fn, ok && fn != nil
}
