package flux

import (
	"log/slog"
	"sync"
)

// Serial runs tasks one at a time, in submission order.
//
// The goroutine that finds the loop idle becomes the drainer and runs every
// queued task, including tasks submitted by the tasks themselves. Other
// callers enqueue and return. This makes re-entrant submission safe without
// recursion and without a dedicated goroutine.
type Serial struct {
	queue    *Queue[func()]
	mu       sync.Mutex
	draining bool
	logger   *slog.Logger
	name     string
}

// NewSerial creates a Serial. name labels panics in logs.
func NewSerial(name string, logger *slog.Logger) *Serial {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serial{
		queue:  NewQueue[func()](),
		logger: logger,
		name:   name,
	}
}

// Run submits task. Returns false if the Serial is closed.
func (s *Serial) Run(task func()) bool {
	if !s.queue.Enqueue(task) {
		return false
	}

	for {
		s.mu.Lock()
		if s.draining {
			s.mu.Unlock()
			return true
		}
		s.draining = true
		s.mu.Unlock()

		for {
			t, ok := s.queue.TryDequeue()
			if !ok {
				break
			}
			s.exec(t)
		}

		s.mu.Lock()
		s.draining = false
		empty := s.queue.Len() == 0
		s.mu.Unlock()

		// A task enqueued between the last TryDequeue and the reset above
		// saw draining=true and returned; pick it up here.
		if empty {
			return true
		}
	}
}

func (s *Serial) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "loop", s.name, "panic", r)
		}
	}()
	task()
}

// Close rejects further tasks. Queued tasks still run.
func (s *Serial) Close() {
	s.queue.Close()
}

// safeCall invokes fn, logging and swallowing a panic.
func safeCall(logger *slog.Logger, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("subscriber panicked", "stream", what, "panic", r)
		}
	}()
	fn()
}
