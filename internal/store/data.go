package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// State is the lock state of the record list.
type State int

const (
	// StateLocked means records are not readable. Initial state.
	StateLocked State = iota
	// StateUnlocked means the list mirrors the record source.
	StateUnlocked
	// StateSyncing means a refresh of the record source is in flight.
	StateSyncing
	// StateErrored means the last refresh failed.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	case StateSyncing:
		return "syncing"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// RecordSource supplies password records.
//
// Records re-emits the full list whenever it changes. Refresh reloads the
// list from the backing storage.
type RecordSource interface {
	Records() flux.Observable[[]model.ServerPassword]
	Refresh(ctx context.Context) error
}

// Reduce returns the state that follows s when a is applied.
//
// Sync while locked is ignored. Unlock of an errored store retries through
// StateSyncing.
func Reduce(s State, a action.Action) State {
	switch a.(type) {
	case action.Unlock:
		switch s {
		case StateLocked:
			return StateUnlocked
		case StateErrored:
			return StateSyncing
		}
		return s
	case action.Lock:
		return StateLocked
	case action.Sync:
		if s == StateLocked {
			return s
		}
		return StateSyncing
	default:
		return s
	}
}

// DataStoreOption configures a DataStore.
type DataStoreOption func(*DataStore)

// WithRefreshTimeout bounds each Refresh of the record source.
func WithRefreshTimeout(d time.Duration) DataStoreOption {
	return func(s *DataStore) {
		s.timeout = d
	}
}

// WithDataLogger sets the logger. Defaults to slog.Default().
func WithDataLogger(l *slog.Logger) DataStoreOption {
	return func(s *DataStore) {
		s.logger = l
	}
}

// WithRefreshScheduler sets where source refreshes run. Defaults to
// flux.Background. flux.Immediate settles each refresh before Dispatch
// returns, which keeps traces deterministic.
func WithRefreshScheduler(sched flux.Scheduler) DataStoreOption {
	return func(s *DataStore) {
		s.runner = sched
	}
}

// DataStore owns the record list.
//
// Action handling, source emissions and refresh results are applied on one
// serial loop. A refresh runs on the refresh scheduler and settles the store
// on Unlocked or Errored when it completes, unless a later refresh or a Lock
// superseded it.
type DataStore struct {
	logger  *slog.Logger
	source  RecordSource
	timeout time.Duration
	runner  flux.Scheduler

	state  *flux.Relay[State]
	list   *flux.Relay[[]model.ServerPassword]
	serial *flux.Serial

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	current   State
	gen       uint64
	closed    bool
	inflight  sync.WaitGroup
	sourceSub flux.Disposable
	actions   flux.Disposable
}

// NewDataStore creates a locked store with an empty list and subscribes it
// to actions.
func NewDataStore(actions ActionSource, source RecordSource, opts ...DataStoreOption) *DataStore {
	s := &DataStore{
		logger:  slog.Default(),
		source:  source,
		timeout: 10 * time.Second,
		runner:  flux.Background,
		state:   flux.NewRelayWith("data.state", StateLocked),
		list:    flux.NewRelayWith("data.list", []model.ServerPassword{}),
		current: StateLocked,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.serial = flux.NewSerial("data", s.logger)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.actions = actions.Subscribe(s.handle)
	return s
}

// List streams the record list. Locked stores emit an empty list.
func (s *DataStore) List() *flux.Relay[[]model.ServerPassword] {
	return s.list
}

// State streams the lock state.
func (s *DataStore) State() *flux.Relay[State] {
	return s.state
}

// Current returns the current lock state.
func (s *DataStore) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close stops reacting to actions and waits for in-flight refreshes to
// return before it releases the record source.
func (s *DataStore) Close() {
	s.actions.Dispose()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.inflight.Wait()
	s.serial.Run(s.closeSource)
	s.serial.Close()
}

func (s *DataStore) handle(a action.Action) {
	s.serial.Run(func() { s.apply(a) })
}

func (s *DataStore) apply(a action.Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.current
	next := Reduce(prev, a)
	s.mu.Unlock()

	switch {
	case prev == StateLocked && next == StateUnlocked:
		s.set(StateUnlocked)
		s.openSource()
		s.refresh(a)
	case next == StateLocked && prev != StateLocked:
		s.supersede()
		s.closeSource()
		s.list.Emit([]model.ServerPassword{})
		s.set(StateLocked)
	case prev == StateSyncing && next == StateSyncing:
		s.logger.Debug("refresh already in flight", "action", a.Name())
	case next == StateSyncing:
		s.set(StateSyncing)
		s.refresh(a)
	case prev == StateLocked && next == StateLocked:
		if _, ok := a.(action.Sync); ok {
			s.logger.Debug("ignoring sync while locked")
		}
	}
}

// set records st and emits it if it differs from the current state.
func (s *DataStore) set(st State) {
	s.mu.Lock()
	changed := s.current != st
	s.current = st
	s.mu.Unlock()
	if changed {
		s.state.Emit(st)
	}
}

// supersede invalidates any refresh in flight.
func (s *DataStore) supersede() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

func (s *DataStore) openSource() {
	if s.source == nil {
		return
	}
	sub := s.source.Records().Subscribe(func(records []model.ServerPassword) {
		s.serial.Run(func() {
			if s.Current() == StateLocked {
				return
			}
			s.list.Emit(records)
		})
	})

	s.mu.Lock()
	s.sourceSub = sub
	s.mu.Unlock()
}

func (s *DataStore) closeSource() {
	s.mu.Lock()
	sub := s.sourceSub
	s.sourceSub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}
}

// refresh reloads the source on the refresh scheduler. The result is
// applied on the serial loop by settle.
func (s *DataStore) refresh(cause action.Action) {
	if s.source == nil {
		s.set(StateUnlocked)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.inflight.Add(1)
	s.mu.Unlock()

	s.runner.Schedule(func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		err := s.source.Refresh(ctx)
		s.serial.Run(func() { s.settle(gen, cause, err) })
	})
}

// settle applies the result of refresh gen. Results of superseded refreshes
// and results arriving after a Lock are dropped.
func (s *DataStore) settle(gen uint64, cause action.Action, err error) {
	s.mu.Lock()
	stale := s.closed || gen != s.gen || s.current == StateLocked
	s.mu.Unlock()
	if stale {
		s.logger.Debug("dropping superseded refresh", "cause", cause.Name(), "error", err)
		return
	}

	if err != nil {
		s.logger.Error("record refresh failed", "cause", cause.Name(), "error", err)
		s.set(StateErrored)
		return
	}
	s.set(StateUnlocked)
}
