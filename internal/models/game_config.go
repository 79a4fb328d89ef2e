package models

import (
	"fmt"
	"time"
)

type GridSize struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (g GridSize) Cells() int {
	return g.Rows * g.Columns
}

type Odds struct {
	Diamond float64 `json:"diamond"` // percent
	Bomb    float64 `json:"bomb"`
}

// Timings are the presentation delays, in milliseconds.
type Timings struct {
	SettleMS      int `json:"settle_ms"`
	WinMS         int `json:"win_ms"`
	BombRevealMS  int `json:"bomb_reveal_ms"`
	LossResolveMS int `json:"loss_resolve_ms"`
}

func (t Timings) Settle() time.Duration      { return ms(t.SettleMS) }
func (t Timings) Win() time.Duration         { return ms(t.WinMS) }
func (t Timings) BombReveal() time.Duration  { return ms(t.BombRevealMS) }
func (t Timings) LossResolve() time.Duration { return ms(t.LossResolveMS) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// GameConfig is the static rule set of the game.
type GameConfig struct {
	Enabled           bool         `json:"is_enabled"`
	DisabledMessage   string       `json:"disabled_message"`
	MaxFailedAttempts int          `json:"max_failed_attempts"`
	WinThreshold      int          `json:"win_threshold"`
	AccessCodes       []AccessCode `json:"time_codes"`
	Rewards           []Reward     `json:"rewards"`
	Odds              Odds         `json:"odds"`
	Grid              GridSize     `json:"grid_size"`
	ClaimLink         string       `json:"claim_link"`
	Timings           Timings      `json:"timings"`

	// EnforceCodeWindows turns the codes' time slots into an acceptance rule.
	EnforceCodeWindows bool `json:"enforce_code_windows"`
	// HonorTamperedWins keeps a win whose diamond count fails the recount.
	HonorTamperedWins bool `json:"honor_tampered_wins"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		Enabled:           true,
		DisabledMessage:   "SYSTEM MAINTENANCE IN PROGRESS",
		MaxFailedAttempts: 2,
		WinThreshold:      3,
		AccessCodes: []AccessCode{
			{Code: "I32YT0KB23", ValidFrom: MustTimeOfDay("00:00")},
			{Code: "TCPJRAB6XW", ValidFrom: MustTimeOfDay("06:00")},
			{Code: "RTQWOXBM42", ValidFrom: MustTimeOfDay("12:00")},
			{Code: "LZ7CAPZC6Z", ValidFrom: MustTimeOfDay("18:00")},
			{Code: "WJ8JBS0CPP", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "KMKKQ0NCUU", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "K03BAS3EGZ", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "U3LVNXFV8S", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "K4QCH07UQA", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "L0OXMNTPSF", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "TESTDEMO31", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "TESTDEMO4", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "TESTDEMO5", ValidFrom: MustTimeOfDay("23:59")},
			{Code: "ADMIN", ValidFrom: MustTimeOfDay("ANY")},
		},
		Rewards: []Reward{
			{Amount: 100, Label: "Tokens", Weight: 1},
			{Amount: 25, Label: "Gift card voucher", Weight: 1},
			{Amount: 5, Label: "Dantes", Weight: 1},
		},
		Odds:      Odds{Diamond: 30, Bomb: 70},
		Grid:      GridSize{Rows: 5, Columns: 5},
		ClaimLink: "https://discord.gg/yourcommunity",
		Timings: Timings{
			SettleMS:      1500,
			WinMS:         1000,
			BombRevealMS:  200,
			LossResolveMS: 1500,
		},
		HonorTamperedWins: true,
	}
}

func (c *GameConfig) Validate() error {
	if c.Grid.Rows <= 0 || c.Grid.Columns <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", c.Grid.Rows, c.Grid.Columns)
	}
	if c.Odds.Diamond < 0 || c.Odds.Diamond > 100 {
		return fmt.Errorf("diamond odds must be within [0, 100], got %g", c.Odds.Diamond)
	}
	if len(c.Rewards) == 0 {
		return fmt.Errorf("at least one reward is required")
	}
	if c.WinThreshold < 1 {
		return fmt.Errorf("win threshold must be at least 1, got %d", c.WinThreshold)
	}
	if c.MaxFailedAttempts < 0 {
		return fmt.Errorf("max failed attempts must not be negative, got %d", c.MaxFailedAttempts)
	}
	for i, code := range c.AccessCodes {
		if code.Code == "" {
			return fmt.Errorf("access code %d is empty", i)
		}
	}
	return nil
}
