package flux

import "sync"

// Promise is a one-shot continuation.
//
// Resolve invokes the continuation at most once. Dispose invalidates a
// pending promise so later resolutions are ignored.
type Promise[T any] struct {
	mu   sync.Mutex
	fn   func(T)
	done bool
}

// NewPromise creates a pending promise that calls fn on resolution.
func NewPromise[T any](fn func(T)) *Promise[T] {
	return &Promise[T]{fn: fn}
}

// Resolve completes the promise with v.
// Returns false if it was already resolved or disposed.
func (p *Promise[T]) Resolve(v T) bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return false
	}
	p.done = true
	fn := p.fn
	p.fn = nil
	p.mu.Unlock()

	fn(v)
	return true
}

// Dispose invalidates the promise.
func (p *Promise[T]) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	p.fn = nil
}

// Pending reports whether the promise can still be resolved.
func (p *Promise[T]) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.done
}
