package services

import "diamond-mines-backend/internal/models"

type SoundCue string

const (
	CueClick   SoundCue = "click"
	CueLock    SoundCue = "lock"
	CueUnlock  SoundCue = "unlock"
	CueDiamond SoundCue = "diamond"
	CueBomb    SoundCue = "bomb"
	CueWin     SoundCue = "win"
	CueLose    SoundCue = "lose"
)

type ToastSeverity string

const (
	ToastSuccess     ToastSeverity = "success"
	ToastDestructive ToastSeverity = "destructive"
)

type Toast struct {
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Severity ToastSeverity `json:"severity"`
}

// Presenter receives the engine's notifications. Implementations must not
// block; the engine never waits on them.
type Presenter interface {
	OnStateChange(state models.SessionState)
	OnSoundCue(cue SoundCue)
	OnToast(toast Toast)
}

type NopPresenter struct{}

func (NopPresenter) OnStateChange(models.SessionState) {}
func (NopPresenter) OnSoundCue(SoundCue)               {}
func (NopPresenter) OnToast(Toast)                     {}
