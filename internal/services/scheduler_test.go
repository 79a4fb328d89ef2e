package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var order []int

	s.After(time.Second, func() {
		order = append(order, 1)
		s.After(time.Second, func() { order = append(order, 3) })
	})
	cancel := s.After(time.Second, func() { order = append(order, 2) })
	cancel()

	if s.Pending() != 1 {
		t.Errorf("Expected 1 live task, got %d", s.Pending())
	}
	if n := s.RunAll(); n != 2 {
		t.Errorf("Expected 2 tasks run, got %d", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("Unexpected run order %v", order)
	}
	if s.RunNext() {
		t.Error("Queue should be empty")
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	var fired atomic.Bool
	cancel := TimerScheduler{}.After(50*time.Millisecond, func() { fired.Store(true) })
	cancel()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("Cancelled timer fired")
	}

	done := make(chan struct{})
	TimerScheduler{}.After(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Timer did not fire")
	}
}
