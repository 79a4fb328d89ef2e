package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"diamond-mines-backend/internal/models"
)

func TestSessionManager(t *testing.T) {
	ctx := context.Background()
	sched := NewManualScheduler()
	stores := map[string]*MemoryFlagStore{}
	cfg := models.DefaultGameConfig()

	manager := NewSessionManager(NewEngineFactory(FactoryDeps{
		Config:    cfg,
		Scope:     ScopeDurable,
		Gate:      NewAccessGate(cfg, NewMemoryUsedCodeStore(), nil),
		Scheduler: sched,
		FlagsFor: func(playerID string) FlagStore {
			if _, ok := stores[playerID]; !ok {
				stores[playerID] = NewMemoryFlagStore()
			}
			return stores[playerID]
		},
	}))

	a := manager.Get(ctx, "a")
	if a.State() != models.StateChecking {
		t.Errorf("New engine should be booting, got %s", a.State())
	}
	if manager.Get(ctx, "a") != a {
		t.Error("Get should return the same engine for a player")
	}
	manager.Get(ctx, "b")
	if manager.Count() != 2 {
		t.Errorf("Expected 2 engines, got %d", manager.Count())
	}

	sched.RunAll()
	if a.State() != models.StateLocked {
		t.Errorf("Expected Locked after boot, got %s", a.State())
	}

	a.Unlock(ctx, "ADMIN", nil)
	if unlocked, _ := stores["a"].GetUnlocked(ctx); !unlocked {
		t.Error("Unlock should persist to the player's store")
	}
	if unlocked, _ := stores["b"].GetUnlocked(ctx); unlocked {
		t.Error("Players must not share flags")
	}

	if n := manager.CleanupStale(time.Hour); n != 0 {
		t.Errorf("Active engines should stay, removed %d", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := manager.CleanupStale(time.Millisecond); n != 2 {
		t.Errorf("Expected 2 stale engines, removed %d", n)
	}
	if _, ok := manager.Lookup("a"); ok {
		t.Error("Evicted engine should be gone")
	}

	// a returning player resumes from the persisted flag
	again := manager.Get(ctx, "a")
	sched.RunAll()
	if again.State() != models.StateMenu {
		t.Errorf("Expected Menu for a returning player, got %s", again.State())
	}
}

func TestSessionManagerConcurrentGet(t *testing.T) {
	ctx := context.Background()
	sched := NewManualScheduler()
	cfg := models.DefaultGameConfig()
	manager := NewSessionManager(NewEngineFactory(FactoryDeps{Config: cfg, Scheduler: sched}))

	engines := make([]*SessionEngine, 16)
	var wg sync.WaitGroup
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i] = manager.Get(ctx, "same")
		}(i)
	}
	wg.Wait()

	for _, e := range engines {
		if e != engines[0] {
			t.Fatal("Concurrent Get returned different engines")
		}
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected a single boot, got %d pending tasks", sched.Pending())
	}

	// work done right after Get must survive, so boot has already happened
	sched.RunAll()
	engine := manager.Get(ctx, "same")
	if _, err := engine.Unlock(ctx, "ADMIN", nil); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	manager.Get(ctx, "same")
	if engine.State() != models.StateMenu {
		t.Errorf("Repeated Get must not reboot the engine, got %s", engine.State())
	}
}
