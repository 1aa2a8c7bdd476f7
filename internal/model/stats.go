package model

import (
	"fmt"
	"math"

	"github.com/udisondev/powerlevel/internal/formula"
)

// CharacterStats holds the raw character inputs the engine reads.
type CharacterStats struct {
	BaseHealth         float64 `json:"baseHealth" yaml:"base_health"`
	Vitality           float64 `json:"vitality" yaml:"vitality"`
	SoulPower          float64 `json:"soulPower" yaml:"soul_power"`
	SoulHP             float64 `json:"soulHp" yaml:"soul_hp"`
	BaseMultiplier     float64 `json:"baseMultiplier" yaml:"base_multiplier"`
	BaseArmorClass     float64 `json:"baseArmorClass" yaml:"base_armor_class"`
	BaseTrueResistance float64 `json:"baseTrueResistance" yaml:"base_true_resistance"`
	Speed              float64 `json:"speed" yaml:"speed"`
}

// DefaultCharacterStats returns neutral stats: everything zero except the
// base multiplier, which is 1.
func DefaultCharacterStats() CharacterStats {
	return CharacterStats{BaseMultiplier: 1}
}

// Scope returns the formula variable scope for these stats.
func (s CharacterStats) Scope() map[string]float64 {
	return map[string]float64{
		formula.VarBaseHP:    s.BaseHealth,
		formula.VarVitality:  s.Vitality,
		formula.VarSoulPower: s.SoulPower,
		formula.VarSoulHP:    s.SoulHP,
	}
}

// MaxHealth returns the health ceiling used by strain.
func (s CharacterStats) MaxHealth() float64 {
	return math.Max(0, s.BaseHealth)
}

// Validate reports the first non-finite stat.
func (s CharacterStats) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"baseHealth", s.BaseHealth},
		{"vitality", s.Vitality},
		{"soulPower", s.SoulPower},
		{"soulHp", s.SoulHP},
		{"baseMultiplier", s.BaseMultiplier},
		{"baseArmorClass", s.BaseArmorClass},
		{"baseTrueResistance", s.BaseTrueResistance},
		{"speed", s.Speed},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("stat %s is not a finite number", f.name)
		}
	}
	return nil
}
