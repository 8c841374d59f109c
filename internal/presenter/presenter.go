package presenter

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
)

// ErrAlreadyAttached is returned by OnViewReady when the previous lifetime
// has not been torn down.
var ErrAlreadyAttached = errors.New("presenter already attached")

// Dispatcher is the publish side of the action bus.
type Dispatcher interface {
	Dispatch(a action.Action)
}

// Metrics receives presenter events. The prometheus collector implements it.
type Metrics interface {
	RoutingError(item string)
	ViewUpdated(screen string)
}

type noopMetrics struct{}

func (noopMetrics) RoutingError(string) {}
func (noopMetrics) ViewUpdated(string)  {}

// Option configures a presenter.
type Option func(*base)

// WithScheduler sets the scheduler view updates run on.
// Defaults to flux.Immediate.
func WithScheduler(s flux.Scheduler) Option {
	return func(b *base) { b.scheduler = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(b *base) { b.metrics = m }
}

// base carries what every presenter shares: collaborators and the bag of
// the current lifetime.
type base struct {
	screen     string
	dispatcher Dispatcher
	scheduler  flux.Scheduler
	logger     *slog.Logger
	metrics    Metrics

	mu  sync.Mutex
	bag *flux.Bag
}

func newBase(screen string, d Dispatcher, opts []Option) base {
	b := base{
		screen:     screen,
		dispatcher: d,
		scheduler:  flux.Immediate,
		logger:     slog.Default(),
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With("screen", screen)
	return b
}

// begin starts a lifetime and returns its bag.
func (b *base) begin() (*flux.Bag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bag != nil && !b.bag.Disposed() {
		return nil, ErrAlreadyAttached
	}
	b.bag = flux.NewBag()
	return b.bag, nil
}

// end tears the current lifetime down.
func (b *base) end() {
	b.mu.Lock()
	bag := b.bag
	b.mu.Unlock()
	if bag != nil {
		bag.Dispose()
	}
}

// Attached reports whether the presenter is between OnViewReady and
// OnDestroy.
func (b *base) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bag != nil && !b.bag.Disposed()
}

// dispatch forwards a unless bag has been torn down.
func (b *base) dispatch(bag *flux.Bag, a action.Action) {
	if bag.Disposed() {
		b.logger.Debug("dropping action after teardown", "action", a.Name())
		return
	}
	b.dispatcher.Dispatch(a)
}

// schedule runs fn on the UI scheduler unless bag is torn down by then.
func (b *base) schedule(bag *flux.Bag, fn func()) {
	b.scheduler.Schedule(func() {
		if bag.Disposed() {
			return
		}
		fn()
	})
}
