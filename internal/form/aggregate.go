package form

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
)

// Aggregate is the combined effect of the active forms.
type Aggregate struct {
	FormMultiplier      float64
	PoolMultipliers     map[string]float64
	ACBonus             float64
	TrueResistanceBonus float64
	// Active lists the ids that contributed, in activation order.
	Active []string
}

// PoolMultiplier returns the multiplier for typeID, 1 when untouched.
func (a Aggregate) PoolMultiplier(typeID string) float64 {
	if m, ok := a.PoolMultipliers[typeID]; ok {
		return m
	}
	return 1
}

// Neutral returns the aggregate of an empty active set over typeIDs.
func Neutral(typeIDs []string) Aggregate {
	return ApplyActive(nil, nil, typeIDs)
}

// ApplyActive combines the active subset of forms.
//
// Form multipliers stack by sum; a zero sum yields 1. Pool multipliers stack
// by product per targeted type. Resistance bonuses are summed over forms
// that affect resistances.
func ApplyActive(forms []Form, activeIDs []string, typeIDs []string) Aggregate {
	byID := make(map[string]Form, len(forms))
	for _, f := range forms {
		byID[f.ID] = f
	}

	factors := make(map[string][]float64, len(typeIDs))
	var (
		formMults []float64
		ac, tr    float64
		active    []string
		seen      = make(map[string]bool, len(activeIDs))
	)

	for _, id := range activeIDs {
		f, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		active = append(active, id)

		formMults = append(formMults, f.FormMultiplier)
		for _, typeID := range typeIDs {
			if f.Targets(typeID) {
				factors[typeID] = append(factors[typeID], f.PoolMaxMultiplier)
			}
		}
		if f.AffectsResistances {
			ac += f.ACBonus
			tr += f.TrueResistanceBonus
		}
	}

	agg := Aggregate{
		FormMultiplier:      1,
		PoolMultipliers:     make(map[string]float64, len(typeIDs)),
		ACBonus:             ac,
		TrueResistanceBonus: tr,
		Active:              active,
	}
	if len(formMults) > 0 {
		if sum := floats.Sum(formMults); sum != 0 {
			agg.FormMultiplier = sum
		}
	}
	for _, typeID := range typeIDs {
		agg.PoolMultipliers[typeID] = 1
		if fs := factors[typeID]; len(fs) > 0 {
			agg.PoolMultipliers[typeID] = floats.Prod(fs)
		}
	}

	slog.Debug("forms aggregated",
		"active", len(active),
		"formMultiplier", agg.FormMultiplier,
		"acBonus", agg.ACBonus,
		"trBonus", agg.TrueResistanceBonus)

	return agg
}
