package testutil

import (
	"sync"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
)

// ActionRecorder captures dispatched actions.
//
// It works as a standalone dispatcher for presenter tests (Dispatch records
// and does nothing else) and as a subscriber of a real dispatcher via Record.
type ActionRecorder struct {
	mu      sync.Mutex
	actions []action.Action
}

// NewActionRecorder creates an empty recorder.
func NewActionRecorder() *ActionRecorder {
	return &ActionRecorder{}
}

// Dispatch records a.
func (r *ActionRecorder) Dispatch(a action.Action) {
	r.Record(a)
}

// Record records a.
func (r *ActionRecorder) Record(a action.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// Attach subscribes the recorder to d.
func (r *ActionRecorder) Attach(d interface {
	Subscribe(fn func(action.Action)) flux.Disposable
}) flux.Disposable {
	return d.Subscribe(r.Record)
}

// All returns a copy of every recorded action in order.
func (r *ActionRecorder) All() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]action.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Last returns the most recent action, or nil.
func (r *ActionRecorder) Last() action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return nil
	}
	return r.actions[len(r.actions)-1]
}

// Names returns the names of the recorded actions in order.
func (r *ActionRecorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	for i, a := range r.actions {
		out[i] = a.Name()
	}
	return out
}

// Contains reports whether a was recorded.
func (r *ActionRecorder) Contains(a action.Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.actions {
		if got == a {
			return true
		}
	}
	return false
}

// Count returns the number of recorded actions.
func (r *ActionRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// Reset drops every recorded action.
func (r *ActionRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
