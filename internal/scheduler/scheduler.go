// Package scheduler runs one-shot delayed tasks keyed by an identifier.
// Scheduling a key that is already pending replaces the earlier task.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is the work run when a timer fires. It receives the scheduler's base
// context, which is cancelled by Stop.
type Task func(ctx context.Context)

type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*entry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger
	stopped bool
}

type entry struct {
	timer *time.Timer
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New returns a scheduler whose tasks run under a context derived from ctx.
func New(ctx context.Context, opts ...Option) *Scheduler {
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Scheduler{
		timers: make(map[string]*entry),
		ctx:    base,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule runs task after delay unless Cancel(key) or Stop is called first.
// It returns false once the scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if prev, ok := s.timers[key]; ok {
		if prev.timer.Stop() {
			s.wg.Done()
		}
	}
	e := &entry{}
	s.wg.Add(1)
	e.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		cur, ok := s.timers[key]
		if ok && cur == e {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		if !ok || cur != e || s.ctx.Err() != nil {
			return
		}
		s.run(key, task)
	})
	s.timers[key] = e
	return true
}

func (s *Scheduler) run(key string, task Task) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.ErrorContext(s.ctx, "scheduled task panicked",
				"key", key,
				"panic", r,
			)
		}
	}()
	task(s.ctx)
}

// Cancel stops the pending task for key. It reports whether a task was
// pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	if e.timer.Stop() {
		s.wg.Done()
	}
	return true
}

// Pending reports whether a task is scheduled for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for key, e := range s.timers {
		if e.timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
