package machineevents

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/machinekit/pkg/machine"
)

// Subscription receives events from a Feed.
type Subscription struct {
	ch      chan Event
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	stop   func() bool
	feed   *Feed
}

// Events returns the delivery channel. It is closed when the subscription
// ends.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Dropped returns how many events were lost because the buffer was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close ends the subscription. Safe to call more than once.
func (s *Subscription) Close() error {
	if s.feed != nil {
		s.feed.remove(s)
	}
	s.shut()
	return nil
}

func (s *Subscription) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
	}
	close(s.ch)
}

func (s *Subscription) deliver(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
}

// Feed is an in-memory fan-out of machine events.
type Feed struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewFeed returns a feed whose subscriptions buffer up to buffer events.
// The buffer is at least 1.
func NewFeed(buffer int) *Feed {
	return &Feed{
		subs:   make(map[*Subscription]struct{}),
		buffer: max(buffer, 1),
	}
}

// Subscribe registers a subscription that lasts until it is closed, ctx is
// done or the feed is closed. Subscribing to a closed feed returns a closed
// subscription.
func (f *Feed) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{ch: make(chan Event, f.buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		sub.shut()
		return sub
	}
	sub.feed = f
	f.subs[sub] = struct{}{}
	sub.stop = context.AfterFunc(ctx, func() { _ = sub.Close() })
	return sub
}

// Publish delivers e to every subscription without blocking.
func (f *Feed) Publish(e Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	for sub := range f.subs {
		sub.deliver(e)
	}
}

// Len returns the number of open subscriptions.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close ends every subscription. Later publishes are ignored.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	subs := f.subs
	f.subs = make(map[*Subscription]struct{})
	f.mu.Unlock()

	for sub := range subs {
		sub.shut()
	}
	return nil
}

func (f *Feed) remove(sub *Subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
}

// Instrument attaches hooks to m that publish its events to the feed.
func (f *Feed) Instrument(m *machine.Machine) (*machine.HookGroup, error) {
	def := m.Definition()
	g := m.NewHookGroup()

	entered := func(m *machine.Machine, from, to machine.StateID, _ any) {
		kind := KindTransition
		if to == def.Free {
			kind = KindRelease
		}
		f.Publish(Event{
			Machine:  m.ID(),
			Kind:     kind,
			From:     from,
			To:       to,
			FromName: m.StateName(from),
			ToName:   m.StateName(to),
		})
	}
	processed := func(m *machine.Machine, from, _ machine.StateID, _ any) {
		name := m.StateName(from)
		f.Publish(Event{
			Machine:  m.ID(),
			Kind:     KindProcess,
			From:     from,
			To:       from,
			FromName: name,
			ToName:   name,
		})
	}

	for _, st := range def.States {
		if _, err := g.Hook(st.Number, machine.PhaseEnter, machine.Post, entered, nil); err != nil {
			g.DetachAll()
			return nil, fmt.Errorf("instrument machine %s: %w", m.ID(), err)
		}
		if st.Number == def.Free {
			continue
		}
		if _, err := g.Hook(st.Number, machine.PhaseProcess, machine.Post, processed, nil); err != nil {
			g.DetachAll()
			return nil, fmt.Errorf("instrument machine %s: %w", m.ID(), err)
		}
	}
	return g, nil
}
