package models

import "fmt"

type Reward struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight,omitempty"`
}

// EffectiveWeight is the weight used for selection. Missing or sub-one
// weights count as 1.
func (r Reward) EffectiveWeight() float64 {
	if r.Weight < 1 {
		return 1
	}
	return r.Weight
}

func (r Reward) String() string {
	return fmt.Sprintf("%g %s", r.Amount, r.Label)
}
