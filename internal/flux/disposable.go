package flux

import "sync"

// Disposable releases a subscription or pending continuation.
// Dispose must be safe to call more than once.
type Disposable interface {
	Dispose()
}

// NewDisposable wraps fn so it runs at most once.
func NewDisposable(fn func()) Disposable {
	return &onceDisposable{fn: fn}
}

type onceDisposable struct {
	once sync.Once
	fn   func()
}

func (d *onceDisposable) Dispose() {
	d.once.Do(d.fn)
}

// Bag owns a group of disposables and releases them together.
//
// Dispose marks the bag disposed before releasing its members. Anything
// added after that is disposed immediately.
type Bag struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// NewBag creates an empty bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add takes ownership of d.
func (b *Bag) Add(d Disposable) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		d.Dispose()
		return
	}
	b.items = append(b.items, d)
	b.mu.Unlock()
}

// Dispose releases every member in insertion order.
func (b *Bag) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	items := b.items
	b.items = nil
	b.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}

// Disposed reports whether Dispose has been called.
func (b *Bag) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// Len returns the number of live members.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
