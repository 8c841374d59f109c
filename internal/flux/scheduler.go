package flux

// Scheduler runs work on a particular goroutine, typically the UI loop.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Schedule calls f(fn).
func (f SchedulerFunc) Schedule(fn func()) {
	f(fn)
}

// Immediate runs work synchronously on the calling goroutine.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Background runs each piece of work on a new goroutine.
var Background Scheduler = SchedulerFunc(func(fn func()) { go fn() })
