package flux

import (
	"log/slog"
	"sync/atomic"

	"github.com/diegolucasb/lockbox/internal/action"
)

// Hook observes every delivered action before subscribers do.
// The journal and metrics collector are hooks.
type Hook interface {
	ActionDispatched(seq int64, a action.Action)
}

// HookFunc adapts a function to Hook.
type HookFunc func(seq int64, a action.Action)

// ActionDispatched calls f(seq, a).
func (f HookFunc) ActionDispatched(seq int64, a action.Action) {
	f(seq, a)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHook adds a hook. Hooks run in registration order.
func WithHook(h Hook) Option {
	return func(d *Dispatcher) {
		d.hooks = append(d.hooks, h)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithClock sets the sequencer used to stamp actions.
func WithClock(c Sequencer) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// Dispatcher is the process-wide action bus.
//
// Dispatch never fails and never blocks on subscribers of other goroutines:
// if a delivery is already in progress the action is queued and delivered by
// the goroutine that is draining. All subscribers observe the same order.
type Dispatcher struct {
	logger *slog.Logger
	clock  Sequencer
	hooks  []Hook
	serial *Serial
	subs   subscriberList[action.Action]
	closed atomic.Bool
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger: slog.Default(),
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.serial = NewSerial("dispatcher", d.logger)
	return d
}

// Dispatch publishes a to every current subscriber.
//
// Nil actions and actions dispatched after Close are dropped.
func (d *Dispatcher) Dispatch(a action.Action) {
	if a == nil {
		d.logger.Warn("dropping nil action")
		return
	}
	if d.closed.Load() {
		d.logger.Warn("dropping action after close", "action", a.Name())
		return
	}

	ok := d.serial.Run(func() {
		seq := d.clock.Next()
		d.logger.Debug("dispatch", "seq", seq, "action", a.Name())

		for _, h := range d.hooks {
			safeCall(d.logger, "hook", func() { h.ActionDispatched(seq, a) })
		}
		d.subs.deliver(d.logger, a.Name(), a)
	})
	if !ok {
		d.logger.Warn("dropping action after close", "action", a.Name())
	}
}

// Subscribe registers fn for every action dispatched after this call.
func (d *Dispatcher) Subscribe(fn func(action.Action)) Disposable {
	sub := d.subs.add(fn)
	return NewDisposable(func() { d.subs.remove(sub) })
}

// Actions returns the dispatcher as an Observable.
func (d *Dispatcher) Actions() Observable[action.Action] {
	return ObservableFunc[action.Action](d.Subscribe)
}

// Subscribers returns the number of live subscribers.
func (d *Dispatcher) Subscribers() int {
	return d.subs.len()
}

// Seq returns the sequence number of the last delivered action.
func (d *Dispatcher) Seq() int64 {
	return d.clock.Current()
}

// Close stops accepting actions. Actions already queued are still delivered.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	d.serial.Close()
}
