package flux

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Observable is a push stream of values.
type Observable[T any] interface {
	Subscribe(fn func(T)) Disposable
}

// ObservableFunc adapts a subscribe function to Observable.
type ObservableFunc[T any] func(fn func(T)) Disposable

// Subscribe calls f(fn).
func (f ObservableFunc[T]) Subscribe(fn func(T)) Disposable {
	return f(fn)
}

type subscriber[T any] struct {
	fn       func(T)
	disposed atomic.Bool
}

// subscriberList is a copy-on-write list of subscribers shared by Subject,
// Relay and Dispatcher.
type subscriberList[T any] struct {
	mu   sync.Mutex
	subs []*subscriber[T]
}

func (l *subscriberList[T]) add(fn func(T)) *subscriber[T] {
	s := &subscriber[T]{fn: fn}
	l.mu.Lock()
	next := make([]*subscriber[T], len(l.subs), len(l.subs)+1)
	copy(next, l.subs)
	l.subs = append(next, s)
	l.mu.Unlock()
	return s
}

func (l *subscriberList[T]) remove(s *subscriber[T]) {
	s.disposed.Store(true)
	l.mu.Lock()
	defer l.mu.Unlock()
	next := make([]*subscriber[T], 0, len(l.subs))
	for _, cur := range l.subs {
		if cur != s {
			next = append(next, cur)
		}
	}
	l.subs = next
}

func (l *subscriberList[T]) snapshot() []*subscriber[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subs
}

func (l *subscriberList[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// deliver sends v to every live subscriber, recovering panics.
func (l *subscriberList[T]) deliver(logger *slog.Logger, name string, v T) {
	for _, s := range l.snapshot() {
		if s.disposed.Load() {
			continue
		}
		safeCall(logger, name, func() { s.fn(v) })
	}
}

// Subject publishes values to its current subscribers. There is no replay.
type Subject[T any] struct {
	name   string
	logger *slog.Logger
	serial *Serial
	subs   subscriberList[T]
}

// NewSubject creates a subject. name appears in logs.
func NewSubject[T any](name string) *Subject[T] {
	logger := slog.Default()
	return &Subject[T]{name: name, logger: logger, serial: NewSerial(name, logger)}
}

// Emit publishes v.
func (s *Subject[T]) Emit(v T) {
	s.serial.Run(func() { s.subs.deliver(s.logger, s.name, v) })
}

// Subscribe registers fn for values emitted after this call.
func (s *Subject[T]) Subscribe(fn func(T)) Disposable {
	sub := s.subs.add(fn)
	return NewDisposable(func() { s.subs.remove(sub) })
}

// Subscribers returns the number of live subscribers.
func (s *Subject[T]) Subscribers() int {
	return s.subs.len()
}

// Relay is a Subject that remembers its latest value.
//
// A subscriber receives the latest value, if any, before any newer value.
// When Subscribe is called outside a delivery the replay is synchronous.
type Relay[T any] struct {
	name   string
	logger *slog.Logger
	serial *Serial
	subs   subscriberList[T]

	mu       sync.Mutex
	value    T
	hasValue bool
}

// NewRelay creates a relay without an initial value.
func NewRelay[T any](name string) *Relay[T] {
	logger := slog.Default()
	return &Relay[T]{name: name, logger: logger, serial: NewSerial(name, logger)}
}

// NewRelayWith creates a relay holding initial.
func NewRelayWith[T any](name string, initial T) *Relay[T] {
	r := NewRelay[T](name)
	r.value = initial
	r.hasValue = true
	return r
}

// Emit stores v as the latest value and publishes it.
func (r *Relay[T]) Emit(v T) {
	r.serial.Run(func() {
		r.mu.Lock()
		r.value = v
		r.hasValue = true
		r.mu.Unlock()
		r.subs.deliver(r.logger, r.name, v)
	})
}

// Subscribe registers fn and replays the latest value to it.
func (r *Relay[T]) Subscribe(fn func(T)) Disposable {
	var sub *subscriber[T]
	var mu sync.Mutex
	cancelled := false

	r.serial.Run(func() {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		sub = r.subs.add(fn)
		s := sub
		mu.Unlock()

		if v, ok := r.Value(); ok && !s.disposed.Load() {
			safeCall(r.logger, r.name, func() { fn(v) })
		}
	})

	return NewDisposable(func() {
		mu.Lock()
		defer mu.Unlock()
		cancelled = true
		if sub != nil {
			r.subs.remove(sub)
		}
	})
}

// Value returns the latest value.
func (r *Relay[T]) Value() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.hasValue
}

// Subscribers returns the number of live subscribers.
func (r *Relay[T]) Subscribers() int {
	return r.subs.len()
}
