// Package notify delivers change events to subscribers on a caller-chosen
// scheduling context.
//
// A Notifier snapshots its observers under a lock and invokes them outside
// it, so observers may subscribe or unsubscribe from inside a callback.
// Every delivery is handed to a Dispatcher; for a GUI that is the point where
// work is marshaled onto the UI goroutine.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oukeidos/vekotin/internal/logger"
)

// Dispatcher schedules fn on the context that owns the subscribers.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Immediate runs work inline on the publishing goroutine.
var Immediate Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Subscription represents an active observer registration.
type Subscription struct {
	id     uint64
	active atomic.Bool
	cancel func(uint64)
}

// Unsubscribe removes the observer. Deliveries that were already dispatched
// but have not run yet are dropped. Safe to call more than once and from
// inside a callback.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	if s.cancel != nil {
		s.cancel(s.id)
	}
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

type entry[E any] struct {
	sub      *Subscription
	observer func(E)
}

// Notifier fans out events of type E to its observers.
type Notifier[E any] struct {
	mu         sync.RWMutex
	observers  map[uint64]entry[E]
	order      []uint64
	nextID     uint64
	dispatcher Dispatcher
	log        *slog.Logger
	closed     bool
}

// Option configures a Notifier.
type Option func(*options)

type options struct {
	dispatcher Dispatcher
	log        *slog.Logger
}

// WithDispatcher sets the dispatcher used for every delivery.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

// WithLogger sets the logger used to report recovered observer panics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New creates a Notifier. Without WithDispatcher, delivery is Immediate.
func New[E any](opts ...Option) *Notifier[E] {
	o := options{dispatcher: Immediate}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Component("notify")
	}
	return &Notifier[E]{
		observers:  make(map[uint64]entry[E]),
		dispatcher: o.dispatcher,
		log:        o.log,
	}
}

// Subscribe registers observer for all future events. A nil observer or a
// closed notifier yields an inactive subscription.
func (n *Notifier[E]) Subscribe(observer func(E)) *Subscription {
	sub := &Subscription{cancel: n.unsubscribe}
	if observer == nil {
		return sub
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return sub
	}
	n.nextID++
	sub.id = n.nextID
	sub.active.Store(true)
	n.observers[sub.id] = entry[E]{sub: sub, observer: observer}
	n.order = append(n.order, sub.id)
	return sub
}

// Publish delivers ev to every current observer, in subscription order,
// through the dispatcher.
func (n *Notifier[E]) Publish(ev E) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	targets := make([]entry[E], 0, len(n.order))
	for _, id := range n.order {
		if e, ok := n.observers[id]; ok {
			targets = append(targets, e)
		}
	}
	d := n.dispatcher
	n.mu.RUnlock()

	for _, e := range targets {
		e := e
		d.Dispatch(func() {
			if !e.sub.Active() {
				return
			}
			n.call(e.observer, ev)
		})
	}
}

// Len returns the number of active observers.
func (n *Notifier[E]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close drops all observers; later Publish calls are ignored.
func (n *Notifier[E]) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	subs := make([]*Subscription, 0, len(n.observers))
	for _, e := range n.observers {
		subs = append(subs, e.sub)
	}
	n.observers = make(map[uint64]entry[E])
	n.order = nil
	n.mu.Unlock()

	for _, s := range subs {
		s.active.Store(false)
	}
}

func (n *Notifier[E]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.observers[id]; !ok {
		return
	}
	delete(n.observers, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *Notifier[E]) call(observer func(E), ev E) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("Recovered observer panic", "panic", fmt.Sprint(r))
		}
	}()
	observer(ev)
}
