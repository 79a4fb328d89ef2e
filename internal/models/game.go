package models

type CellKind string

const (
	CellDiamond CellKind = "diamond"
	CellBomb    CellKind = "bomb"
)

type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

type SessionState string

const (
	StateChecking    SessionState = "checking"
	StateMaintenance SessionState = "maintenance"
	StateLocked      SessionState = "locked"
	StateMenu        SessionState = "menu"
	StatePlaying     SessionState = "playing"
	StateResult      SessionState = "result"
)

// GameSession is one round's state. Grid is fixed once generated; only
// Revealed grows.
type GameSession struct {
	State         SessionState `json:"state"`
	Grid          []CellKind   `json:"grid"`
	Revealed      []int        `json:"revealed"`
	DiamondsFound int          `json:"diamonds_found"`
	Result        *Outcome     `json:"result,omitempty"`
	WonReward     *Reward      `json:"won_reward,omitempty"`
}

// IsRevealed reports whether index is part of the revealed set.
func (s *GameSession) IsRevealed(index int) bool {
	for _, i := range s.Revealed {
		if i == index {
			return true
		}
	}
	return false
}

// Snapshot is a detached copy of the session handed out to callers.
type Snapshot struct {
	GameSession
	AttemptCount int  `json:"attempt_count"`
	AttemptsLeft int  `json:"attempts_left"`
	Pending      bool `json:"pending"`
}

// Clone returns a deep copy of the session.
func (s *GameSession) Clone() GameSession {
	out := GameSession{
		State:         s.State,
		DiamondsFound: s.DiamondsFound,
	}
	if s.Grid != nil {
		out.Grid = append([]CellKind(nil), s.Grid...)
	}
	if s.Revealed != nil {
		out.Revealed = append([]int(nil), s.Revealed...)
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.WonReward != nil {
		w := *s.WonReward
		out.WonReward = &w
	}
	return out
}
