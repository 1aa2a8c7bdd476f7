package model

import "math"

// RunStatistics accumulates results across calculations.
type RunStatistics struct {
	TotalDamageDealt float64 `json:"totalDamageDealt"`
	TotalEnergySpent float64 `json:"totalEnergySpent"`
	AttackCount      int     `json:"attackCount"`
	HighestDamage    float64 `json:"highestDamage"`
}

// Record adds one finished attack.
func (s *RunStatistics) Record(damage, energySpent float64) {
	s.TotalDamageDealt += damage
	s.TotalEnergySpent += energySpent
	s.AttackCount++
	s.HighestDamage = math.Max(s.HighestDamage, damage)
}

// ResetAttackCount clears only the attack counter.
func (s *RunStatistics) ResetAttackCount() {
	s.AttackCount = 0
}
