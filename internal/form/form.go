// Package form models equippable buffs ("forms") and their aggregation
// into damage and pool multipliers.
package form

import (
	"errors"
	"math"
)

// TargetAll is the EnergyType value of a form that affects every pool.
const TargetAll = "None"

var (
	// ErrDuplicateName is returned when a form name is already taken.
	ErrDuplicateName = errors.New("form name already exists")
	// ErrNotFound is returned for unknown form ids.
	ErrNotFound = errors.New("form not found")
	// ErrInvalidName is returned for blank form names.
	ErrInvalidName = errors.New("form name is required")
)

// BuffKind defines how a buff escalates its target value.
type BuffKind string

const (
	BuffAdd      BuffKind = "add"
	BuffMultiply BuffKind = "multiply"
)

// Buff escalates a form value after every finished calculation.
type Buff struct {
	Enabled bool     `json:"enabled"`
	Value   float64  `json:"value"`
	Kind    BuffKind `json:"kind"`
}

// Apply returns v escalated by the buff, clamped at 0. Disabled buffs
// return v unchanged.
func (b Buff) Apply(v float64) float64 {
	if !b.Enabled {
		return v
	}
	switch b.Kind {
	case BuffMultiply:
		v *= b.Value
	default:
		v += b.Value
	}
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, v)
}

// Form is a named bundle of bonuses a character can equip.
type Form struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	FormMultiplier      float64 `json:"formMultiplier"`
	PoolMaxMultiplier   float64 `json:"poolMaxMultiplier"`
	EnergyType          string  `json:"energyType"`
	AffectsResistances  bool    `json:"affectsResistances"`
	ACBonus             float64 `json:"acBonus"`
	TrueResistanceBonus float64 `json:"trueResistanceBonus"`
	FormBuff            Buff    `json:"formBuff"`
	PoolBuff            Buff    `json:"poolBuff"`
}

// Targets reports whether the form's pool multiplier applies to typeID.
func (f Form) Targets(typeID string) bool {
	return f.EnergyType == "" || f.EnergyType == TargetAll || f.EnergyType == typeID
}

// Escalate applies both buffs to the form's multipliers.
func (f *Form) Escalate() {
	f.FormMultiplier = f.FormBuff.Apply(f.FormMultiplier)
	f.PoolMaxMultiplier = f.PoolBuff.Apply(f.PoolMaxMultiplier)
}
