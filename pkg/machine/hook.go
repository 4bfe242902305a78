package machine

// Hook is an observer attached to one (state, phase, sense) slot of a machine.
// It stays attached until Detach is called, its HookGroup is detached, the
// machine is released, or, for one-shot hooks, right after it first runs.
type Hook struct {
	fn      HookFunc
	hctx    any
	oneshot bool

	state StateID
	phase Phase
	sense Sense

	// list is nil once the hook is detached. prev and next are kept after
	// removal so an iteration positioned on this hook can still move forward.
	list       *hookList
	prev, next *Hook
}

// HookOption configures a hook at registration.
type HookOption func(*Hook)

// Oneshot makes the hook detach itself after its first invocation.
func Oneshot() HookOption {
	return func(h *Hook) { h.oneshot = true }
}

// Detach removes the hook from its list. It is safe to call more than once
// and from inside any hook, including the hook's own function.
func (h *Hook) Detach() {
	if h == nil || h.list == nil {
		return
	}
	h.list.remove(h)
}

// Attached reports whether the hook is still registered.
func (h *Hook) Attached() bool { return h != nil && h.list != nil }

func (h *Hook) State() StateID { return h.state }
func (h *Hook) Phase() Phase   { return h.phase }
func (h *Hook) Sense() Sense   { return h.sense }

// Oneshot reports whether the hook detaches itself after running once.
func (h *Hook) Oneshot() bool { return h.oneshot }

// hookList is an intrusive doubly linked list with a sentinel root.
// Insertion order is invocation order.
type hookList struct {
	root Hook
	len  int
}

func (l *hookList) init() {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
}

func (l *hookList) pushBack(h *Hook) {
	h.list = l
	h.prev = l.root.prev
	h.next = &l.root
	l.root.prev.next = h
	l.root.prev = h
	l.len++
}

func (l *hookList) remove(h *Hook) {
	h.prev.next = h.next
	h.next.prev = h.prev
	h.list = nil
	l.len--
}

// clear detaches every hook in the list.
func (l *hookList) clear() {
	for h := l.root.next; h != &l.root; {
		next := h.next
		h.list = nil
		h = next
	}
	l.init()
}

// run invokes the hooks in order. The successor is captured before each
// call; if the callback detached that successor, the walk follows the
// detached hooks' retained next pointers until it reaches a live hook or the
// root. Hooks appended during the walk run only if the walk reaches them.
func (l *hookList) run(m *Machine, from, to StateID) {
	for h := l.root.next; h != &l.root; {
		if h.list == nil {
			h = h.next
			continue
		}
		next := h.next
		h.fn(m, from, to, h.hctx)
		if h.oneshot {
			h.Detach()
		}
		h = next
	}
}

// HookGroup owns a set of hooks on one machine so they can be detached
// together, for example when the object that registered them goes away.
type HookGroup struct {
	m     *Machine
	hooks []*Hook
}

// NewHookGroup returns an empty group bound to m.
func (m *Machine) NewHookGroup() *HookGroup {
	return &HookGroup{m: m}
}

// Hook registers a hook on the group's machine and records it in the group.
func (g *HookGroup) Hook(state StateID, phase Phase, sense Sense, fn HookFunc, hctx any, opts ...HookOption) (*Hook, error) {
	h, err := g.m.Hook(state, phase, sense, fn, hctx, opts...)
	if err != nil {
		return nil, err
	}
	g.hooks = append(g.hooks, h)
	return h, nil
}

// Len returns the number of hooks in the group that are still attached.
func (g *HookGroup) Len() int {
	n := 0
	for _, h := range g.hooks {
		if h.Attached() {
			n++
		}
	}
	return n
}

// DetachAll detaches every hook in the group and empties it.
func (g *HookGroup) DetachAll() {
	for _, h := range g.hooks {
		h.Detach()
	}
	g.hooks = nil
}
