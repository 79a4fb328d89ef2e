package services

import (
	"context"
	"sync"
	"time"

	"diamond-mines-backend/internal/models"
)

// EngineFactory builds the engine of a player seen for the first time.
type EngineFactory func(ctx context.Context, playerID string) *SessionEngine

// FactoryDeps are the collaborators shared by every player's engine.
type FactoryDeps struct {
	Config     models.GameConfig
	Scope      Scope
	Gate       *AccessGate
	Audit      AuditSink
	Scheduler  Scheduler
	Random     RandomSource
	FlagsFor   func(playerID string) FlagStore
	PresentFor func(playerID string) Presenter
}

func NewEngineFactory(deps FactoryDeps) EngineFactory {
	grid := NewGridGenerator(deps.Random)
	rewards := NewRewardSelector(deps.Random)
	return func(ctx context.Context, playerID string) *SessionEngine {
		var flags FlagStore
		if deps.FlagsFor != nil {
			flags = deps.FlagsFor(playerID)
		}
		var presenter Presenter
		if deps.PresentFor != nil {
			presenter = deps.PresentFor(playerID)
		}
		return NewSessionEngine(ctx, EngineDeps{
			PlayerID:  playerID,
			Config:    deps.Config,
			Flags:     flags,
			Scope:     deps.Scope,
			Gate:      deps.Gate,
			Grid:      grid,
			Rewards:   rewards,
			Audit:     deps.Audit,
			Presenter: presenter,
			Scheduler: deps.Scheduler,
		})
	}
}

// SessionManager owns one SessionEngine per player.
type SessionManager struct {
	mu      sync.Mutex
	engines map[string]*SessionEngine
	factory EngineFactory
}

func NewSessionManager(factory EngineFactory) *SessionManager {
	return &SessionManager{
		engines: make(map[string]*SessionEngine),
		factory: factory,
	}
}

// Get returns the player's engine, creating and booting it on first use.
func (m *SessionManager) Get(ctx context.Context, playerID string) *SessionEngine {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.engines[playerID]
	if !ok {
		// boot before publishing so no caller sees the engine pre-boot
		engine = m.factory(ctx, playerID)
		engine.Boot(ctx)
		m.engines[playerID] = engine
	}
	return engine
}

func (m *SessionManager) Lookup(playerID string) (*SessionEngine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.engines[playerID]
	return engine, ok
}

func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

// CleanupStale drops engines idle for longer than maxAge. Persisted flags
// stay, so a returning player resumes from them.
func (m *SessionManager) CleanupStale(maxAge time.Duration) int {
	m.mu.Lock()
	var stale []*SessionEngine
	for id, engine := range m.engines {
		if time.Since(engine.LastActive()) > maxAge {
			stale = append(stale, engine)
			delete(m.engines, id)
		}
	}
	m.mu.Unlock()

	for _, engine := range stale {
		engine.Close()
	}
	return len(stale)
}
