package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"diamond-mines-backend/internal/models"
)

type EngineDeps struct {
	PlayerID  string
	Config    models.GameConfig
	Flags     FlagStore
	Scope     Scope
	Gate      *AccessGate
	Grid      *GridGenerator
	Rewards   *RewardSelector
	Audit     AuditSink
	Presenter Presenter
	Scheduler Scheduler
}

// RevealResult describes what a reveal did. Accepted is false when the call
// was ignored.
type RevealResult struct {
	Accepted      bool            `json:"accepted"`
	Index         int             `json:"index"`
	Cell          models.CellKind `json:"cell,omitempty"`
	DiamondsFound int             `json:"diamonds_found"`
	Result        *models.Outcome `json:"result,omitempty"`
	Reward        *models.Reward  `json:"reward,omitempty"`
}

// SessionEngine runs one player's game loop. Every public method and every
// scheduled callback holds mu, so transitions never interleave.
type SessionEngine struct {
	mu sync.Mutex

	playerID  string
	cfg       models.GameConfig
	flags     FlagStore
	gate      *AccessGate
	grid      *GridGenerator
	rewards   *RewardSelector
	audit     AuditSink
	presenter Presenter
	scheduler Scheduler

	session models.GameSession
	tracker *AttemptTracker

	// at most one delayed task; generation invalidates callbacks whose
	// timer fired after a cancel
	pending    CancelFunc
	generation uint64

	lastActive time.Time
}

func NewSessionEngine(ctx context.Context, deps EngineDeps) *SessionEngine {
	if deps.Scope == "" {
		deps.Scope = ScopeDurable
	}
	if deps.Flags == nil {
		deps.Flags = NewMemoryFlagStore()
	}
	if deps.Grid == nil {
		deps.Grid = NewGridGenerator(nil)
	}
	if deps.Rewards == nil {
		deps.Rewards = NewRewardSelector(nil)
	}
	if deps.Audit == nil {
		deps.Audit = NopAuditSink{}
	}
	if deps.Presenter == nil {
		deps.Presenter = NopPresenter{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Gate == nil {
		deps.Gate = NewAccessGate(deps.Config, NewMemoryUsedCodeStore(), deps.Audit)
	}

	return &SessionEngine{
		playerID:   deps.PlayerID,
		cfg:        deps.Config,
		flags:      deps.Flags,
		gate:       deps.Gate,
		grid:       deps.Grid,
		rewards:    deps.Rewards,
		audit:      deps.Audit,
		presenter:  deps.Presenter,
		scheduler:  deps.Scheduler,
		session:    models.GameSession{State: models.StateChecking},
		tracker:    NewAttemptTracker(ctx, deps.Flags, deps.Scope),
		lastActive: time.Now(),
	}
}

// SetPresenter swaps the notification target, e.g. when a websocket attaches.
func (e *SessionEngine) SetPresenter(p Presenter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == nil {
		p = NopPresenter{}
	}
	e.presenter = p
}

// Boot enters Checking and settles into Maintenance, Locked or Menu after
// the configured delay.
func (e *SessionEngine) Boot(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.cancelPending()
	e.setState(models.StateChecking)
	e.schedule(e.cfg.Timings.Settle(), func() {
		e.settle(context.Background())
	})
}

func (e *SessionEngine) settle(ctx context.Context) {
	if !e.cfg.Enabled {
		e.setState(models.StateMaintenance)
		return
	}
	unlocked, err := e.flags.GetUnlocked(ctx)
	if err != nil {
		log.Printf("Failed to read unlock flag for %s: %v", e.playerID, err)
		unlocked = false
	}
	if unlocked {
		e.setState(models.StateMenu)
	} else {
		e.setState(models.StateLocked)
	}
}

// Unlock redeems a one-time code. Denials are returned as *GateError after
// the player has been notified.
func (e *SessionEngine) Unlock(ctx context.Context, raw string, client ClientMetadata) (*Grant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	if !e.cfg.Enabled || e.session.State != models.StateLocked {
		return nil, ErrInvalidState
	}

	grant, err := e.gate.Redeem(ctx, raw, client)
	if err != nil {
		var gateErr *GateError
		if !errors.As(err, &gateErr) {
			gateErr = wrapGate(ErrPersistence, err)
		}
		if gateErr.Code != CodeEmptyInput {
			e.presenter.OnSoundCue(CueLock)
		}
		e.presenter.OnToast(Toast{Title: gateErr.Title, Message: gateErr.Message, Severity: ToastDestructive})
		return nil, gateErr
	}

	if err := e.flags.SetUnlocked(ctx, true); err != nil {
		log.Printf("Failed to persist unlock flag for %s: %v", e.playerID, err)
	}
	e.tracker.Reset(ctx)
	e.presenter.OnSoundCue(CueUnlock)
	e.presenter.OnToast(Toast{Title: "ACCESS GRANTED", Message: "Welcome to the Diamond Protocol.", Severity: ToastSuccess})
	e.setState(models.StateMenu)
	return grant, nil
}

// StartRound deals a fresh grid from Menu, or from Result for a retry.
func (e *SessionEngine) StartRound(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	if !e.cfg.Enabled {
		return ErrInvalidState
	}
	switch e.session.State {
	case models.StateMenu, models.StateResult:
	default:
		return ErrInvalidState
	}

	e.presenter.OnSoundCue(CueClick)
	e.session = models.GameSession{
		State:    models.StatePlaying,
		Grid:     e.grid.Generate(e.cfg.Grid.Rows, e.cfg.Grid.Columns, e.cfg.Odds.Diamond),
		Revealed: []int{},
	}
	e.setState(models.StatePlaying)
	return nil
}

// Reveal exposes one cell. It is ignored outside Playing, for out-of-range
// or already revealed cells, once the round has a result, and while a
// resolution is pending.
func (e *SessionEngine) Reveal(ctx context.Context, index int) RevealResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	s := &e.session
	ignored := RevealResult{Index: index, DiamondsFound: s.DiamondsFound, Result: s.Result}
	if s.State != models.StatePlaying || s.Result != nil || e.pending != nil {
		return ignored
	}
	if index < 0 || index >= len(s.Grid) || s.IsRevealed(index) {
		return ignored
	}

	s.Revealed = append(s.Revealed, index)
	cell := s.Grid[index]

	if cell == models.CellDiamond {
		s.DiamondsFound++
		e.presenter.OnSoundCue(CueDiamond)
		if s.DiamondsFound == e.cfg.WinThreshold {
			e.resolveWin(ctx)
		}
	} else {
		e.resolveLoss(ctx)
	}

	out := RevealResult{
		Accepted:      true,
		Index:         index,
		Cell:          cell,
		DiamondsFound: s.DiamondsFound,
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.WonReward != nil {
		w := *s.WonReward
		out.Reward = &w
	}
	return out
}

func (e *SessionEngine) resolveWin(ctx context.Context) {
	s := &e.session
	actual := VerifyDiamonds(s.Grid, s.Revealed)
	if actual != s.DiamondsFound {
		log.Printf("Integrity mismatch for %s: reported %d, actual %d", e.playerID, s.DiamondsFound, actual)
		e.audit.Emit(ctx, AuditTamper, map[string]string{
			"player":   e.playerID,
			"reported": strconv.Itoa(s.DiamondsFound),
			"actual":   strconv.Itoa(actual),
			"honored":  strconv.FormatBool(e.cfg.HonorTamperedWins),
		})
		if !e.cfg.HonorTamperedWins {
			e.resolveLoss(ctx)
			return
		}
	}

	reward, err := e.rewards.Select(e.cfg.Rewards)
	if err != nil {
		log.Printf("Reward selection failed for %s: %v", e.playerID, err)
	} else {
		s.WonReward = &reward
	}
	won := models.OutcomeWon
	s.Result = &won
	e.tracker.Reset(ctx)

	e.schedule(e.cfg.Timings.Win(), func() {
		e.presenter.OnSoundCue(CueWin)
		e.setState(models.StateResult)
	})
}

func (e *SessionEngine) resolveLoss(ctx context.Context) {
	s := &e.session
	lost := models.OutcomeLost
	s.Result = &lost
	e.presenter.OnSoundCue(CueBomb)

	e.tracker.Increment(ctx)
	lockout := e.tracker.IsExceeded(e.cfg.MaxFailedAttempts)

	e.schedule(e.cfg.Timings.BombReveal(), func() {
		e.discloseBombs()
		e.schedule(e.cfg.Timings.LossResolve(), func() {
			e.presenter.OnSoundCue(CueLose)
			if lockout {
				e.lockout(context.Background())
				return
			}
			e.setState(models.StateResult)
		})
	})
}

// discloseBombs adds every bomb to the revealed set. The board change is
// signalled by re-emitting the current state.
func (e *SessionEngine) discloseBombs() {
	s := &e.session
	for i, cell := range s.Grid {
		if cell == models.CellBomb && !s.IsRevealed(i) {
			s.Revealed = append(s.Revealed, i)
		}
	}
	e.presenter.OnStateChange(s.State)
}

func (e *SessionEngine) lockout(ctx context.Context) {
	e.clearAccess(ctx)
	e.presenter.OnSoundCue(CueLock)
	e.presenter.OnToast(Toast{
		Title:    "SYSTEM LOCKOUT",
		Message:  "Max attempts reached. Session terminated.",
		Severity: ToastDestructive,
	})
	e.audit.Emit(ctx, AuditLockout, map[string]string{
		"player":       e.playerID,
		"max_attempts": strconv.Itoa(e.cfg.MaxFailedAttempts),
	})
	e.session = models.GameSession{}
	e.setState(models.StateLocked)
}

// Logout returns to Locked from any state and makes pending callbacks inert.
// A disabled game stays in Maintenance.
func (e *SessionEngine) Logout(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	e.cancelPending()
	e.presenter.OnSoundCue(CueClick)
	e.clearAccess(ctx)
	e.session = models.GameSession{}
	if !e.cfg.Enabled {
		e.setState(models.StateMaintenance)
		return
	}
	e.setState(models.StateLocked)
}

func (e *SessionEngine) clearAccess(ctx context.Context) {
	if err := e.flags.SetUnlocked(ctx, false); err != nil {
		log.Printf("Failed to clear unlock flag for %s: %v", e.playerID, err)
	}
	e.tracker.Reset(ctx)
}

func (e *SessionEngine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	left := e.cfg.MaxFailedAttempts - e.tracker.Count()
	if left < 0 {
		left = 0
	}
	return models.Snapshot{
		GameSession:  e.session.Clone(),
		AttemptCount: e.tracker.Count(),
		AttemptsLeft: left,
		Pending:      e.pending != nil,
	}
}

func (e *SessionEngine) State() models.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.State
}

// LastActive is the time of the last player action.
func (e *SessionEngine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// Close cancels any pending task without touching persisted flags.
func (e *SessionEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
}

func (e *SessionEngine) setState(state models.SessionState) {
	e.session.State = state
	e.presenter.OnStateChange(state)
}

func (e *SessionEngine) touch() {
	e.lastActive = time.Now()
}

// schedule must be called with mu held.
func (e *SessionEngine) schedule(d time.Duration, fn func()) {
	gen := e.generation
	e.pending = e.scheduler.After(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.generation != gen {
			return
		}
		e.pending = nil
		fn()
	})
}

func (e *SessionEngine) cancelPending() {
	e.generation++
	if e.pending != nil {
		e.pending()
		e.pending = nil
	}
}
