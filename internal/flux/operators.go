package flux

import "sync/atomic"

// Filter forwards the values of src for which keep returns true.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return ObservableFunc[T](func(fn func(T)) Disposable {
		return src.Subscribe(func(v T) {
			if keep(v) {
				fn(v)
			}
		})
	})
}

// Map forwards f(v) for every value of src.
func Map[T, U any](src Observable[T], f func(T) U) Observable[U] {
	return ObservableFunc[U](func(fn func(U)) Disposable {
		return src.Subscribe(func(v T) {
			fn(f(v))
		})
	})
}

// ObserveOn delivers the values of src through sched.
//
// Work already handed to sched is dropped if the subscription is disposed
// before it runs.
func ObserveOn[T any](src Observable[T], sched Scheduler) Observable[T] {
	return ObservableFunc[T](func(fn func(T)) Disposable {
		var disposed atomic.Bool
		upstream := src.Subscribe(func(v T) {
			if disposed.Load() {
				return
			}
			sched.Schedule(func() {
				if disposed.Load() {
					return
				}
				fn(v)
			})
		})
		return NewDisposable(func() {
			disposed.Store(true)
			upstream.Dispose()
		})
	})
}
