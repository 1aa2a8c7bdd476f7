package energy

import (
	"fmt"
	"math"
)

// Pool is the per-type energy reservoir.
//
// Invariant: Total = BaseMax × characterBaseMultiplier × PoolMultiplier,
// floored at 0, and 0 ≤ Current ≤ Total.
type Pool struct {
	TypeID         string
	BaseMax        float64
	PoolMultiplier float64
	Total          float64
	Current        float64
	DamagePerPoint float64
	RegenPercent   float64
	SliderPercent  float64
}

// NewPool returns an empty pool with neutral multipliers.
func NewPool(typeID string) *Pool {
	return &Pool{TypeID: typeID, PoolMultiplier: 1, DamagePerPoint: 1}
}

// Recompute sets BaseMax and Total and refills Current to Total.
func (p *Pool) Recompute(baseMax, characterBaseMultiplier float64) {
	p.BaseMax = math.Max(0, baseMax)
	total := p.BaseMax * characterBaseMultiplier * p.PoolMultiplier
	if math.IsNaN(total) || total < 0 {
		total = 0
	}
	p.Total = total
	p.Current = total
}

// Restore sets Current to saved, clamped into [0, Total].
func (p *Pool) Restore(saved float64) {
	if math.IsNaN(saved) {
		saved = 0
	}
	p.Current = clamp(saved, 0, p.Total)
}

// Regenerate adds percent of Total to Current, capped at Total.
// It returns the amount gained.
func (p *Pool) Regenerate(percent float64) (float64, error) {
	if p.Total <= 0 {
		return 0, fmt.Errorf("%w: pool %q has no capacity", ErrInvalidOperation, p.TypeID)
	}
	if percent <= 0 {
		return 0, fmt.Errorf("%w: regeneration rate %.2f%% for pool %q", ErrInvalidOperation, percent, p.TypeID)
	}
	before := p.Current
	p.Current = math.Min(p.Total, p.Current+p.Total*percent/100)
	return p.Current - before, nil
}

// Consumption is the outcome of spending energy from one pool.
type Consumption struct {
	TypeID     string
	Percent    float64
	EnergyUsed float64
	Damage     float64
}

// Consume spends up to requestedPercent of Current, limited by the
// attack mode's cap.
func (p *Pool) Consume(requestedPercent float64, mode AttackMode) Consumption {
	return p.ConsumeCapped(requestedPercent, mode.Cap())
}

// ConsumeCapped is Consume with an explicit cap in percent.
func (p *Pool) ConsumeCapped(requestedPercent, capPercent float64) Consumption {
	pct := clamp(math.Min(requestedPercent, capPercent), 0, 100)
	used := clamp(p.Current*pct/100, 0, p.Current)
	if p.Current <= 0 {
		used = 0
	}
	p.Current -= used
	return Consumption{
		TypeID:     p.TypeID,
		Percent:    pct,
		EnergyUsed: used,
		Damage:     used * p.DamagePerPoint,
	}
}

// Percent returns Current as a percentage of Total.
func (p *Pool) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return p.Current / p.Total * 100
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
