package services

import (
	"errors"

	"diamond-mines-backend/internal/models"
)

var ErrNoRewards = errors.New("no rewards configured")

type RewardSelector struct {
	rng RandomSource
}

func NewRewardSelector(rng RandomSource) *RewardSelector {
	if rng == nil {
		rng = NewRandomSource()
	}
	return &RewardSelector{rng: rng}
}

// Select picks a reward with probability weight/total. Earlier entries win
// ties at a boundary, and the last entry absorbs floating point drift.
func (s *RewardSelector) Select(rewards []models.Reward) (models.Reward, error) {
	if len(rewards) == 0 {
		return models.Reward{}, ErrNoRewards
	}
	var total float64
	for _, r := range rewards {
		total += r.EffectiveWeight()
	}
	remaining := s.rng.Float64() * total
	for _, r := range rewards {
		remaining -= r.EffectiveWeight()
		if remaining <= 0 {
			return r, nil
		}
	}
	return rewards[len(rewards)-1], nil
}
