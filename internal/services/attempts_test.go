package services

import (
	"context"
	"testing"
)

func TestAttemptTracker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryFlagStore()
	tracker := NewAttemptTracker(ctx, store, ScopeDurable)

	if tracker.Count() != 0 || tracker.IsExceeded(2) {
		t.Fatal("New tracker should start at zero")
	}
	if n := tracker.Increment(ctx); n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}
	tracker.Increment(ctx)
	if !tracker.IsExceeded(2) {
		t.Error("Two losses should reach a limit of 2")
	}
	if n, _ := store.GetAttemptCount(ctx, ScopeDurable); n != 2 {
		t.Errorf("Expected persisted count 2, got %d", n)
	}

	resumed := NewAttemptTracker(ctx, store, ScopeDurable)
	if resumed.Count() != 2 {
		t.Errorf("Expected resumed count 2, got %d", resumed.Count())
	}

	resumed.Reset(ctx)
	if n, _ := store.GetAttemptCount(ctx, ScopeDurable); n != 0 {
		t.Errorf("Expected reset count 0, got %d", n)
	}
}

func TestAttemptTrackerZeroLimit(t *testing.T) {
	tracker := NewAttemptTracker(context.Background(), NewMemoryFlagStore(), ScopeTab)
	if !tracker.IsExceeded(0) {
		t.Error("A limit of 0 is exceeded from the start")
	}
}

func TestAttemptTrackerStoreDown(t *testing.T) {
	ctx := context.Background()
	tracker := NewAttemptTracker(ctx, brokenFlags{}, ScopeDurable)
	if tracker.Count() != 0 {
		t.Errorf("Load failure should start at 0, got %d", tracker.Count())
	}
	if n := tracker.Increment(ctx); n != 1 {
		t.Errorf("Save failure should not block counting, got %d", n)
	}
}

func TestParseScope(t *testing.T) {
	for _, s := range []string{"durable", "tab"} {
		if _, err := ParseScope(s); err != nil {
			t.Errorf("ParseScope(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseScope("session"); err == nil {
		t.Error("Unknown scope should fail")
	}
}
