package services

import (
	"errors"
	"math"
	"testing"

	"diamond-mines-backend/internal/models"
)

func TestSelectReward(t *testing.T) {
	rewards := []models.Reward{
		{Amount: 100, Label: "Tokens", Weight: 1},
		{Amount: 25, Label: "Gift card voucher", Weight: 2},
		{Amount: 5, Label: "Dantes", Weight: 1},
	}

	tests := []struct {
		roll float64
		want float64
	}{
		{0, 100},
		{0.25, 100}, // boundary goes to the earlier entry
		{0.26, 25},
		{0.75, 25},
		{0.99, 5},
	}
	for _, tc := range tests {
		sel := NewRewardSelector(&seqRand{vals: []float64{tc.roll}})
		got, err := sel.Select(rewards)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if got.Amount != tc.want {
			t.Errorf("roll %.2f: expected %g, got %g", tc.roll, tc.want, got.Amount)
		}
	}
}

func TestSelectRewardEmpty(t *testing.T) {
	if _, err := NewRewardSelector(nil).Select(nil); !errors.Is(err, ErrNoRewards) {
		t.Errorf("Expected ErrNoRewards, got %v", err)
	}
}

func TestSelectRewardDistribution(t *testing.T) {
	rewards := []models.Reward{
		{Amount: 1, Weight: 1},
		{Amount: 2, Weight: 3},
		{Amount: 3}, // counts as weight 1
	}
	sel := NewRewardSelector(NewRandomSource())

	counts := map[float64]int{}
	const draws = 20000
	for i := 0; i < draws; i++ {
		r, _ := sel.Select(rewards)
		counts[r.Amount]++
	}

	expected := map[float64]float64{1: 0.2, 2: 0.6, 3: 0.2}
	for amount, p := range expected {
		got := float64(counts[amount]) / draws
		if math.Abs(got-p) > 0.02 {
			t.Errorf("Reward %g: expected share %.2f, got %.3f", amount, p, got)
		}
	}
}
