package services

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Calling it after the task ran is a
// no-op.
type CancelFunc func()

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues tasks until RunNext or RunAll is called. It makes
// delayed flows deterministic in tests and tools.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Pending counts queued tasks that were not cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// RunNext runs the oldest live task and reports whether one ran.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	var next *manualTask
	for len(s.tasks) > 0 {
		t := s.tasks[0]
		s.tasks = s.tasks[1:]
		if !t.cancelled {
			next = t
			break
		}
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

// RunAll runs tasks, including ones scheduled by earlier tasks, until the
// queue is empty.
func (s *ManualScheduler) RunAll() int {
	n := 0
	for s.RunNext() {
		n++
	}
	return n
}

// RunCancelled runs every queued task, ignoring cancellation. It models a
// timer that already fired when its cancel arrived.
func (s *ManualScheduler) RunCancelled() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t.fn()
	}
	return len(tasks)
}
