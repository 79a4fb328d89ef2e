package services

import (
	"context"
	"errors"
	"sync"

	"diamond-mines-backend/internal/models"
)

// seqRand replays vals in order and then repeats the last one.
type seqRand struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.vals) == 0 {
		return 0
	}
	if r.i >= len(r.vals) {
		return r.vals[len(r.vals)-1]
	}
	v := r.vals[r.i]
	r.i++
	return v
}

type recordingPresenter struct {
	mu     sync.Mutex
	states []models.SessionState
	cues   []SoundCue
	toasts []Toast
}

func (p *recordingPresenter) OnStateChange(s models.SessionState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
}

func (p *recordingPresenter) OnSoundCue(c SoundCue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = append(p.cues, c)
}

func (p *recordingPresenter) OnToast(t Toast) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toasts = append(p.toasts, t)
}

func (p *recordingPresenter) lastCue() SoundCue {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cues) == 0 {
		return ""
	}
	return p.cues[len(p.cues)-1]
}

func (p *recordingPresenter) lastToast() Toast {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.toasts) == 0 {
		return Toast{}
	}
	return p.toasts[len(p.toasts)-1]
}

func (p *recordingPresenter) sawState(s models.SessionState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, got := range p.states {
		if got == s {
			return true
		}
	}
	return false
}

func (p *recordingPresenter) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states, p.cues, p.toasts = nil, nil, nil
}

type auditEvent struct {
	kind   string
	fields map[string]string
}

type recordingAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *recordingAudit) Emit(ctx context.Context, kind string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{kind: kind, fields: fields})
}

func (a *recordingAudit) byKind(kind string) []auditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []auditEvent
	for _, e := range a.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// stubUsedCodes fails the configured calls and otherwise delegates to an
// in-memory table.
type stubUsedCodes struct {
	*MemoryUsedCodeStore
	lookupErr error
	insertErr error
	hideUsed  bool
}

func (s *stubUsedCodes) Lookup(ctx context.Context, code string) (*models.RedemptionRecord, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.hideUsed {
		return nil, nil
	}
	return s.MemoryUsedCodeStore.Lookup(ctx, code)
}

func (s *stubUsedCodes) Insert(ctx context.Context, code string, meta models.RedemptionMetadata) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemoryUsedCodeStore.Insert(ctx, code, meta)
}

// brokenFlags fails every call.
type brokenFlags struct{}

var errStoreDown = errors.New("store down")

func (brokenFlags) GetUnlocked(context.Context) (bool, error)           { return false, errStoreDown }
func (brokenFlags) SetUnlocked(context.Context, bool) error             { return errStoreDown }
func (brokenFlags) GetAttemptCount(context.Context, Scope) (int, error) { return 0, errStoreDown }
func (brokenFlags) SetAttemptCount(context.Context, Scope, int) error   { return errStoreDown }
