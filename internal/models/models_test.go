package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"diamond-mines-backend/internal/models"
)

func TestModels(t *testing.T) {
	cfg := models.DefaultGameConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	if cfg.Grid.Cells() != 25 {
		t.Errorf("Expected 25 cells, got %d", cfg.Grid.Cells())
	}

	invalid := cfg
	invalid.Rewards = nil
	if err := invalid.Validate(); err == nil {
		t.Error("Config without rewards should fail validation")
	}

	invalid = cfg
	invalid.Odds.Diamond = 101
	if err := invalid.Validate(); err == nil {
		t.Error("Diamond odds above 100 should fail validation")
	}

	if models.GeneratePlayerID() == "" {
		t.Error("Player ID should not be empty")
	}
	if !strings.HasPrefix(models.GenerateEventID(), "evt_") {
		t.Error("Event ID should carry the evt_ prefix")
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		in   string
		at   string
		open bool
	}{
		{"00:00", "00:00", true},
		{"06:00", "05:59", false},
		{"06:00", "06:00", true},
		{"23:59", "12:00", false},
		{"ANY", "03:00", true},
		{"any", "23:00", true},
	}
	for _, tc := range tests {
		tod, err := models.ParseTimeOfDay(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		now, _ := time.Parse("15:04", tc.at)
		if got := tod.OpenAt(now); got != tc.open {
			t.Errorf("%s open at %s = %v, want %v", tc.in, tc.at, got, tc.open)
		}
	}

	if _, err := models.ParseTimeOfDay("25:00"); err == nil {
		t.Error("25:00 should not parse")
	}
}

func TestAccessCodeJSON(t *testing.T) {
	var codes []models.AccessCode
	raw := `[{"time":"06:00","code":"TCPJRAB6XW"},{"time":"ANY","code":"ADMIN"}]`
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(codes) != 2 || codes[0].ValidFrom.String() != "06:00" || !codes[1].ValidFrom.Any {
		t.Errorf("unexpected codes: %+v", codes)
	}
}

func TestRewardWeightDefaults(t *testing.T) {
	if w := (models.Reward{Amount: 5}).EffectiveWeight(); w != 1 {
		t.Errorf("missing weight should count as 1, got %g", w)
	}
	if w := (models.Reward{Weight: 4}).EffectiveWeight(); w != 4 {
		t.Errorf("expected weight 4, got %g", w)
	}
}

func TestSessionCloneIsDetached(t *testing.T) {
	won := models.OutcomeWon
	s := &models.GameSession{
		Grid:     []models.CellKind{models.CellDiamond, models.CellBomb},
		Revealed: []int{0},
		Result:   &won,
	}
	c := s.Clone()
	c.Revealed[0] = 1
	*c.Result = models.OutcomeLost
	if s.Revealed[0] != 0 || *s.Result != models.OutcomeWon {
		t.Error("clone shares memory with the original session")
	}

	masked := s.MaskedGrid()
	if masked[0] != models.CellDiamond || masked[1] != "" {
		t.Errorf("unexpected masked grid: %v", masked)
	}
}

func TestTruncate(t *testing.T) {
	if got := models.Truncate("abcdef", 3, "..."); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := models.Truncate("abc", 3, "..."); got != "abc" {
		t.Errorf("got %q", got)
	}
}
