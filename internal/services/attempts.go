package services

import (
	"context"
	"log"
)

// AttemptTracker counts consecutive losses. The count is cached in memory
// and written through to the store; store failures never block play.
type AttemptTracker struct {
	store FlagStore
	scope Scope
	count int
}

// NewAttemptTracker loads the persisted count for scope.
func NewAttemptTracker(ctx context.Context, store FlagStore, scope Scope) *AttemptTracker {
	t := &AttemptTracker{store: store, scope: scope}
	count, err := store.GetAttemptCount(ctx, scope)
	if err != nil {
		log.Printf("Failed to load attempt count (%s): %v", scope, err)
		count = 0
	}
	if count < 0 {
		count = 0
	}
	t.count = count
	return t
}

func (t *AttemptTracker) Increment(ctx context.Context) int {
	t.count++
	t.save(ctx)
	return t.count
}

func (t *AttemptTracker) Reset(ctx context.Context) {
	t.count = 0
	t.save(ctx)
}

func (t *AttemptTracker) Count() int {
	return t.count
}

func (t *AttemptTracker) IsExceeded(max int) bool {
	return t.count >= max
}

func (t *AttemptTracker) save(ctx context.Context) {
	if err := t.store.SetAttemptCount(ctx, t.scope, t.count); err != nil {
		log.Printf("Failed to save attempt count (%s): %v", t.scope, err)
	}
}
