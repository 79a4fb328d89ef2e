package services

import (
	"context"
	"fmt"
	"sync"
)

// Scope selects how long an attempt counter survives.
type Scope string

const (
	// ScopeDurable survives restarts until explicitly cleared.
	ScopeDurable Scope = "durable"
	// ScopeTab lives as long as the player's connection, bounded by a TTL.
	ScopeTab Scope = "tab"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeDurable, ScopeTab:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown scope: %s", s)
}

// FlagStore persists the per-player unlock flag and attempt counters.
type FlagStore interface {
	GetUnlocked(ctx context.Context) (bool, error)
	SetUnlocked(ctx context.Context, unlocked bool) error
	GetAttemptCount(ctx context.Context, scope Scope) (int, error)
	SetAttemptCount(ctx context.Context, scope Scope, count int) error
}

// MemoryFlagStore is a process-local FlagStore.
type MemoryFlagStore struct {
	mu       sync.Mutex
	unlocked bool
	attempts map[Scope]int
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{attempts: make(map[Scope]int)}
}

func (m *MemoryFlagStore) GetUnlocked(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked, nil
}

func (m *MemoryFlagStore) SetUnlocked(ctx context.Context, unlocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked = unlocked
	return nil
}

func (m *MemoryFlagStore) GetAttemptCount(ctx context.Context, scope Scope) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[scope], nil
}

func (m *MemoryFlagStore) SetAttemptCount(ctx context.Context, scope Scope, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count == 0 {
		delete(m.attempts, scope)
		return nil
	}
	m.attempts[scope] = count
	return nil
}

// ClearScope drops the counter of one scope.
func (m *MemoryFlagStore) ClearScope(scope Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, scope)
}
