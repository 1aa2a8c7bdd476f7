package engine

import (
	"log/slog"
	"math"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/model"
)

// Result is the outcome of one Calculate call.
type Result struct {
	Damage         float64
	EnergyUsed     float64
	EnergyDamage   float64
	SpeedUsed      float64
	ExtraDamage    float64
	HealthDepleted bool
	Health         float64
	Consumptions   []energy.Consumption
	Warnings       []error
}

// CompressionFactor returns the damage factor for compression points:
// max(1, cp×1.5 + floor(cp/10)×3), or 1 when cp ≤ 0.
func CompressionFactor(points float64) float64 {
	if points <= 0 {
		return 1
	}
	return math.Max(1, points*1.5+math.Floor(points/10)*3)
}

// Calculate runs the damage pipeline. Step order matters: energy damage is
// added after multiplicative modifiers and before additive ones.
//
// Pools with a positive slider are spent, run statistics are updated and the
// buffs of the forms aggregated at the last Refresh escalate. The engine then
// refreshes, so every pool is full again when Calculate returns; the spend is
// reported in the Result.
func (e *Engine) Calculate() Result {
	var res Result

	// 1. base
	damage := e.baseDamage * e.stats.BaseMultiplier * e.aggregate.FormMultiplier

	// 2. compression
	damage *= CompressionFactor(e.compressionPoints)

	mods := model.ReduceModifiers(e.modifiers, e.opts.Evaluator, e.stats.Scope())
	res.Warnings = append(res.Warnings, mods.Warnings...)

	// 3. multiplicative modifiers
	for _, v := range mods.Multiplicative {
		damage *= v
	}

	// 4. energy
	for _, id := range e.registry.IDs() {
		p := e.pools[id]
		if p.SliderPercent <= 0 || p.Current <= 0 {
			continue
		}
		c := p.ConsumeCapped(p.SliderPercent, e.opts.Caps.For(e.AttackMode(id)))
		res.Consumptions = append(res.Consumptions, c)
		res.EnergyUsed += c.EnergyUsed
		res.EnergyDamage += c.Damage
	}
	damage += res.EnergyDamage

	// 5. additive modifiers
	damage += mods.Additive

	// 6. speed
	if e.stats.Speed > 0 && e.speedSlider > 0 {
		res.SpeedUsed = e.stats.Speed * e.speedSlider / 100
		damage += res.SpeedUsed
	}
	res.ExtraDamage = res.EnergyDamage + res.SpeedUsed

	// 7. strain
	if e.strain.Enabled && e.focusedType != "" && e.focusedType == e.opts.PrimaryType {
		cost := e.stats.MaxHealth() * e.strain.Percent / 100
		e.health = math.Max(0, e.health-cost)
		if e.health == 0 {
			res.HealthDepleted = true
			slog.Warn("strain depleted health", "type", e.focusedType)
		}
	}
	res.Health = e.health

	// 8. statistics
	if math.IsNaN(damage) {
		damage = 0
	}
	res.Damage = math.Max(0, damage)
	e.run.Record(res.Damage, res.EnergyUsed)

	// 9. escalate the forms that shaped this turn, then refresh for the next.
	e.forms.Escalate(e.aggregate.Active)
	res.Warnings = append(res.Warnings, e.Refresh()...)

	slog.Debug("calculation finished",
		"damage", res.Damage,
		"energyUsed", res.EnergyUsed,
		"extraDamage", res.ExtraDamage,
		"attackCount", e.run.AttackCount)

	return res
}
