package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/form"
	"github.com/udisondev/powerlevel/internal/model"
	"github.com/udisondev/powerlevel/internal/testutil"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(nil, Options{Evaluator: testutil.Evaluator(), PrimaryType: energy.TypeKi, Caps: energy.DefaultCaps()})
	require.NoError(t, e.SetStats(testutil.Stats()))
	require.Empty(t, e.Refresh())
	return e
}

func TestRefresh_RefillsEveryPool(t *testing.T) {
	e := newTestEngine(t)

	for _, p := range e.Pools() {
		assert.Equal(t, p.Total, p.Current, p.TypeID)
		assert.GreaterOrEqual(t, p.Current, 0.0, p.TypeID)
	}
	ki, ok := e.Pool(energy.TypeKi)
	require.True(t, ok)
	assert.Equal(t, 100.0, ki.BaseMax)
	assert.Equal(t, 100.0, ki.Total)
}

func TestRefresh_AppliesBaseAndPoolMultipliers(t *testing.T) {
	e := newTestEngine(t)
	stats := e.Stats()
	stats.BaseMultiplier = 2
	require.NoError(t, e.SetStats(stats))

	f, err := e.Forms().Create(form.Form{Name: "Kaioken", FormMultiplier: 1, PoolMaxMultiplier: 3, EnergyType: energy.TypeKi})
	require.NoError(t, err)
	require.NoError(t, e.Forms().SetActive(f.ID, true))
	e.Refresh()

	ki, _ := e.Pool(energy.TypeKi)
	assert.Equal(t, 600.0, ki.Total)
	nen, _ := e.Pool(energy.TypeNen)
	assert.Equal(t, 100.0, nen.Total, "nen = 10*5 * base 2 * untouched 1")
}

func TestCalculate_ModifierScenario(t *testing.T) {
	e := newTestEngine(t)
	stats := e.Stats()
	stats.BaseMultiplier = 2
	require.NoError(t, e.SetStats(stats))
	e.SetBaseDamage(100)
	e.Refresh()

	assert.Equal(t, 200.0, e.Calculate().Damage)

	require.NoError(t, e.AddModifier(model.Modifier{Name: "rage", Value: 1.5, Kind: model.ModifierMultiplicative}))
	assert.Equal(t, 300.0, e.Calculate().Damage)

	require.NoError(t, e.AddModifier(model.Modifier{Name: "sword", Value: 50, Kind: model.ModifierAdditive}))
	assert.Equal(t, 350.0, e.Calculate().Damage)
}

func TestCompressionFactor(t *testing.T) {
	tests := []struct {
		points float64
		want   float64
	}{
		{0, 1},
		{-3, 1},
		{0.5, 1},
		{1, 1.5},
		{4, 6},
		{10, 18},
		{25, 43.5},
	}
	for _, tt := range tests {
		if got := CompressionFactor(tt.points); got != tt.want {
			t.Errorf("CompressionFactor(%v) = %v, want %v", tt.points, got, tt.want)
		}
	}
}

func TestCalculate_StepOrder(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(10)
	e.SetCompressionPoints(2) // factor 3
	require.NoError(t, e.AddModifier(model.Modifier{Name: "add", Value: 7, Kind: model.ModifierAdditive}))
	require.NoError(t, e.AddModifier(model.Modifier{Name: "mul", Value: 2, Kind: model.ModifierMultiplicative}))
	require.NoError(t, e.SetSlider(energy.TypeKi, 50))
	require.NoError(t, e.SetDamagePerPoint(energy.TypeKi, 3))
	e.SetSpeedSlider(50)

	res := e.Calculate()

	// ((10*1*1)*3)*2 + 50*3 + 7 + 40*0.5
	assert.Equal(t, 60.0+150+7+20, res.Damage)
	assert.Equal(t, 50.0, res.EnergyUsed)
	assert.Equal(t, 150.0, res.EnergyDamage)
	assert.Equal(t, 20.0, res.SpeedUsed)
	assert.Equal(t, 170.0, res.ExtraDamage)
	require.Len(t, res.Consumptions, 1)
	assert.Equal(t, energy.TypeKi, res.Consumptions[0].TypeID)
}

func TestCalculate_SpendsPoolsAndHonoursAttackCap(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetSlider(energy.TypeKi, 100))
	require.NoError(t, e.SetAttackMode(energy.TypeKi, energy.AttackUltimate))
	require.NoError(t, e.SetSlider(energy.TypeNen, 100))
	require.NoError(t, e.SetAttackMode(energy.TypeNen, energy.AttackSuper))

	res := e.Calculate()

	require.Len(t, res.Consumptions, 2)
	used := map[string]float64{}
	for _, c := range res.Consumptions {
		used[c.TypeID] = c.EnergyUsed
	}
	testutil.AssertNear(t, 90.0, used[energy.TypeKi], 0, "ultimate spends 90% of 100")
	testutil.AssertNear(t, 47.5, used[energy.TypeNen], 0, "super spends 95% of 50")
	assert.InDelta(t, 90+47.5, res.EnergyUsed, 1e-9)

	for _, p := range e.Pools() {
		assert.Equal(t, p.Total, p.Current, "%s is refilled for the next turn", p.TypeID)
	}

	res = e.Calculate()
	assert.InDelta(t, 90+47.5, res.EnergyUsed, 1e-9, "second turn spends from full pools")
}

func TestCalculate_SkipsEmptyPools(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetSlider(energy.TypeKi, 100))
	e.pools[energy.TypeKi].Current = 0

	res := e.Calculate()
	assert.Empty(t, res.Consumptions)
	assert.Zero(t, res.EnergyUsed)
}

func TestCalculate_Strain(t *testing.T) {
	e := newTestEngine(t)
	e.SetStrain(Strain{Enabled: true, Percent: 40})

	res := e.Calculate()
	assert.Equal(t, 200.0, res.Health, "strain needs the primary type focused")

	require.NoError(t, e.SetFocusedType(energy.TypeNen))
	assert.Equal(t, 200.0, e.Calculate().Health)

	require.NoError(t, e.SetFocusedType(energy.TypeKi))
	res = e.Calculate()
	assert.Equal(t, 120.0, res.Health)
	assert.False(t, res.HealthDepleted)

	e.Calculate()
	res = e.Calculate()
	assert.Zero(t, res.Health)
	assert.True(t, res.HealthDepleted)

	e.Heal()
	assert.Equal(t, 200.0, e.Health())
}

func TestCalculate_StatisticsAccumulate(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(100)
	e.Calculate()
	e.SetBaseDamage(40)
	e.Calculate()
	e.SetBaseDamage(-500)
	res := e.Calculate()

	assert.Zero(t, res.Damage, "damage is floored at 0")
	st := e.Statistics()
	assert.Equal(t, 140.0, st.TotalDamageDealt)
	assert.Equal(t, 3, st.AttackCount)
	assert.Equal(t, 100.0, st.HighestDamage)

	e.ResetAttackCount()
	assert.Zero(t, e.Statistics().AttackCount)
	assert.Equal(t, 140.0, e.Statistics().TotalDamageDealt)
}

func TestCalculate_EscalatesActiveForms(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(10)

	f, err := e.Forms().Create(form.Form{
		Name:              "Ramp",
		FormMultiplier:    1,
		PoolMaxMultiplier: 1,
		EnergyType:        energy.TypeKi,
		FormBuff:          form.Buff{Enabled: true, Value: 1, Kind: form.BuffAdd},
		PoolBuff:          form.Buff{Enabled: true, Value: 2, Kind: form.BuffMultiply},
	})
	require.NoError(t, err)
	inactive, err := e.Forms().Create(form.Form{
		Name:           "Idle",
		FormMultiplier: 1,
		FormBuff:       form.Buff{Enabled: true, Value: 1, Kind: form.BuffAdd},
	})
	require.NoError(t, err)
	require.NoError(t, e.Forms().SetActive(f.ID, true))
	require.NoError(t, e.SetSlider(energy.TypeKi, 50))
	e.Refresh()

	res := e.Calculate()
	assert.Equal(t, 10.0+50, res.Damage)

	ki, _ := e.Pool(energy.TypeKi)
	assert.Equal(t, 200.0, ki.Total, "total reflects escalated pool multiplier")
	assert.Equal(t, 200.0, ki.Current, "pools refill after the turn")

	res = e.Calculate()
	assert.Equal(t, 20.0+100, res.Damage, "escalated multipliers apply next turn")

	got, _ := e.Forms().Get(inactive.ID)
	assert.Equal(t, 1.0, got.FormMultiplier, "inactive forms do not escalate")
}

func TestCalculate_FormActivatedWithoutRefreshDoesNotEscalate(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(10)

	f, err := e.Forms().Create(form.Form{
		Name:              "Late",
		FormMultiplier:    3,
		PoolMaxMultiplier: 1,
		FormBuff:          form.Buff{Enabled: true, Value: 1, Kind: form.BuffAdd},
	})
	require.NoError(t, err)
	require.NoError(t, e.Forms().SetActive(f.ID, true))

	res := e.Calculate()
	assert.Equal(t, 10.0, res.Damage, "form was not aggregated for this turn")
	got, _ := e.Forms().Get(f.ID)
	assert.Equal(t, 3.0, got.FormMultiplier, "only forms that shaped the turn escalate")

	res = e.Calculate()
	assert.Equal(t, 30.0, res.Damage, "the post-turn refresh picked the form up")
	got, _ = e.Forms().Get(f.ID)
	assert.Equal(t, 4.0, got.FormMultiplier)
}

func TestRefresh_BadCustomFormulaIsRecoverable(t *testing.T) {
	e := newTestEngine(t)
	e.setRegistry(energy.NewRegistry([]energy.TypeDefinition{
		{ID: "doom", Name: "Doom", Formula: "explodes"},
		{ID: "typo", Name: "Typo", Formula: "nonsense"},
		{ID: "spirit", Name: "Spirit", Formula: "soulHp * 2"},
	}, e.opts.Evaluator))

	warnings := e.Refresh()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, energy.ErrFormula)
	}

	doom, _ := e.Pool("doom")
	assert.Zero(t, doom.Total)
	spirit, _ := e.Pool("spirit")
	assert.Equal(t, 10.0, spirit.Total)

	require.NoError(t, e.SetSlider("doom", 100))
	require.NoError(t, e.SetSlider("spirit", 100))
	res := e.Calculate()
	assert.Equal(t, 10.0, res.EnergyUsed, "a broken type does not abort the others")
}

func TestCalculate_EquationModifierFallsBack(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(10)
	require.NoError(t, e.AddModifier(model.Modifier{Name: "power", Kind: model.ModifierMultiplicative, Equation: "power"}))
	require.NoError(t, e.AddModifier(model.Modifier{Name: "bad", Kind: model.ModifierMultiplicative, Equation: "explodes"}))
	require.NoError(t, e.AddModifier(model.Modifier{Name: "worse", Kind: model.ModifierAdditive, Equation: "garbage"}))

	res := e.Calculate()
	assert.Equal(t, 50.0, res.Damage)
	assert.Len(t, res.Warnings, 2)
}

func TestRegenerate(t *testing.T) {
	e := newTestEngine(t)
	e.pools[energy.TypeKi].Current = 0

	gained, err := e.Regenerate(energy.TypeKi, 25)
	require.NoError(t, err)
	assert.Equal(t, 25.0, gained)

	stats := e.Stats()
	stats.Vitality = 0
	require.NoError(t, e.SetStats(stats))
	e.Refresh()
	_, err = e.Regenerate(energy.TypeKi, 25)
	assert.True(t, errors.Is(err, energy.ErrInvalidOperation))

	_, err = e.Regenerate("missing", 10)
	assert.ErrorIs(t, err, energy.ErrUnknownType)
}

func TestRegenerateAll(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetRegenPercent(energy.TypeKi, 10))
	e.pools[energy.TypeKi].Current = 0
	e.pools[energy.TypeNen].Current = 0

	assert.Empty(t, e.RegenerateAll())
	ki, _ := e.Pool(energy.TypeKi)
	nen, _ := e.Pool(energy.TypeNen)
	assert.Equal(t, 10.0, ki.Current)
	assert.Zero(t, nen.Current, "pools without a rate are untouched")
}

func TestDefenses(t *testing.T) {
	e := newTestEngine(t)
	f, err := e.Forms().Create(form.Form{Name: "Armor", FormMultiplier: 1, PoolMaxMultiplier: 1, AffectsResistances: true, ACBonus: 4, TrueResistanceBonus: 2})
	require.NoError(t, err)
	require.NoError(t, e.Forms().SetActive(f.ID, true))
	e.Refresh()

	ac, tr := e.Defenses()
	assert.Equal(t, 14.0, ac)
	assert.Equal(t, 2.0, tr)
}

func TestCustomTypes(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.AddCustomType(energy.TypeDefinition{Name: "Spirit Energy", Formula: "soulHp * 2"}))
	assert.Error(t, e.AddCustomType(energy.TypeDefinition{ID: energy.TypeKi, Name: "Ki", Formula: "soulHp * 2"}))
	assert.Error(t, e.AddCustomType(energy.TypeDefinition{Name: "Broken", Formula: "unparseable"}))

	e.Refresh()
	p, ok := e.Pool("spirit-energy")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Total)
	require.NoError(t, e.SetAttackMode("spirit-energy", energy.AttackSuper))

	require.ErrorIs(t, e.RemoveCustomType(energy.TypeKi), energy.ErrInvalidOperation)
	require.NoError(t, e.RemoveCustomType("spirit-energy"))
	_, ok = e.Pool("spirit-energy")
	assert.False(t, ok)
	assert.Equal(t, energy.AttackNone, e.AttackMode("spirit-energy"))
}

func TestReset(t *testing.T) {
	e := newTestEngine(t)
	e.SetBaseDamage(10)
	require.NoError(t, e.SetSlider(energy.TypeKi, 100))
	_, err := e.Forms().Create(form.Form{Name: "X"})
	require.NoError(t, err)
	e.Calculate()

	e.Reset()

	assert.Equal(t, model.RunStatistics{}, e.Statistics())
	assert.Empty(t, e.Forms().Forms())
	ki, _ := e.Pool(energy.TypeKi)
	assert.Equal(t, ki.Total, ki.Current)
	assert.Zero(t, ki.SliderPercent)
	assert.Equal(t, 10.0, e.Stats().Vitality, "stats survive reset")
}

func TestSetters_RejectUnknownTypes(t *testing.T) {
	e := newTestEngine(t)
	assert.ErrorIs(t, e.SetSlider("nope", 1), energy.ErrUnknownType)
	assert.ErrorIs(t, e.SetAttackMode("nope", energy.AttackSuper), energy.ErrUnknownType)
	assert.ErrorIs(t, e.SetFocusedType("nope"), energy.ErrUnknownType)
	assert.Error(t, e.SetAttackMode(energy.TypeKi, "mega"))
	assert.Error(t, e.AddModifier(model.Modifier{Name: "x", Kind: "weird"}))
	assert.Error(t, e.RemoveModifier(3))
}
