package model_test

import (
	"math"
	"testing"

	"github.com/udisondev/powerlevel/internal/formula"
	"github.com/udisondev/powerlevel/internal/model"
	"github.com/udisondev/powerlevel/internal/testutil"
)

func TestReduceModifiers(t *testing.T) {
	mods := []model.Modifier{
		{Name: "sword", Value: 50, Kind: model.ModifierAdditive},
		{Name: "rage", Value: 1.5, Kind: model.ModifierMultiplicative},
		{Name: "ring", Value: -5, Kind: model.ModifierAdditive},
		{Name: "curse", Value: 0.5, Kind: model.ModifierMultiplicative},
	}

	totals := model.ReduceModifiers(mods, nil, nil)

	testutil.AssertNear(t, 45, totals.Additive, 0, "additive sum")
	testutil.AssertNear(t, 0.75, totals.Product(), 0, "multiplicative product")
	if len(totals.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", totals.Warnings)
	}
}

func TestReduceModifiers_Empty(t *testing.T) {
	totals := model.ReduceModifiers(nil, nil, nil)
	if totals.Additive != 0 || totals.Product() != 1 {
		t.Fatalf("empty list must be neutral, got %+v product %v", totals, totals.Product())
	}
}

func TestReduceModifiers_Equation(t *testing.T) {
	ev := formula.NewLuaEvaluator()
	stats := model.CharacterStats{SoulPower: 4, Vitality: 3, BaseMultiplier: 1}
	mods := []model.Modifier{
		{Name: "focus", Kind: model.ModifierMultiplicative, Equation: "1 + soulPower / 4"},
		{Name: "broken", Kind: model.ModifierMultiplicative, Equation: "os.exit()"},
		{Name: "bulk", Kind: model.ModifierAdditive, Value: 99, Equation: "vitality * 10"},
		{Name: "div", Kind: model.ModifierAdditive, Equation: "1 / 0"},
	}

	totals := model.ReduceModifiers(mods, ev, stats.Scope())

	testutil.AssertNear(t, 30, totals.Additive, 0, "equation replaces value, failure adds 0")
	testutil.AssertNear(t, 2, totals.Product(), 0, "failed multiplicative equation is 1")
	if len(totals.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", totals.Warnings)
	}
}

func TestModifier_ResolveWithoutEvaluator(t *testing.T) {
	m := model.Modifier{Name: "x", Kind: model.ModifierMultiplicative, Equation: "vitality"}
	v, err := m.Resolve(nil, nil)
	if err == nil {
		t.Fatal("expected error without evaluator")
	}
	if v != 1 {
		t.Fatalf("expected neutral 1, got %v", v)
	}
}

func TestCharacterStats(t *testing.T) {
	s := model.CharacterStats{BaseHealth: -5, BaseMultiplier: 1}
	if s.MaxHealth() != 0 {
		t.Errorf("MaxHealth floors at 0, got %v", s.MaxHealth())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	s.SoulHP = math.NaN()
	if err := s.Validate(); err == nil {
		t.Error("NaN stat must be rejected")
	}

	scope := model.CharacterStats{BaseHealth: 1, Vitality: 2, SoulPower: 3, SoulHP: 4}.Scope()
	for name, want := range map[string]float64{
		formula.VarBaseHP: 1, formula.VarVitality: 2, formula.VarSoulPower: 3, formula.VarSoulHP: 4,
	} {
		if scope[name] != want {
			t.Errorf("scope[%s] = %v, want %v", name, scope[name], want)
		}
	}
}

func TestRunStatistics(t *testing.T) {
	var s model.RunStatistics
	s.Record(100, 20)
	s.Record(40, 5)

	if s.AttackCount != 2 || s.HighestDamage != 100 || s.TotalDamageDealt != 140 || s.TotalEnergySpent != 25 {
		t.Fatalf("unexpected statistics %+v", s)
	}

	s.ResetAttackCount()
	if s.AttackCount != 0 || s.TotalDamageDealt != 140 {
		t.Fatalf("ResetAttackCount must only clear the counter, got %+v", s)
	}
}

