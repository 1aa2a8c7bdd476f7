// Package testutil holds fixtures and helpers shared by package tests.
package testutil

import (
	"fmt"

	"github.com/udisondev/powerlevel/internal/formula"
	"github.com/udisondev/powerlevel/internal/model"
)

// Stats returns the character sheet most engine tests start from.
// Standard ki resolves to 100 and health to 200.
func Stats() model.CharacterStats {
	return model.CharacterStats{
		BaseHealth:     200,
		Vitality:       10,
		SoulPower:      5,
		SoulHP:         5,
		BaseMultiplier: 1,
		BaseArmorClass: 10,
		Speed:          40,
	}
}

type fakeExpr struct {
	src string
	fn  func(map[string]float64) (float64, error)
}

func (f fakeExpr) Eval(scope map[string]float64) (float64, error) { return f.fn(scope) }
func (f fakeExpr) Source() string                                 { return f.src }

// FakeEvaluator compiles only the sources it was seeded with, mapping each to a Go closure.
type FakeEvaluator map[string]func(map[string]float64) (float64, error)

// Compile implements formula.Evaluator.
func (f FakeEvaluator) Compile(src string) (formula.Expression, error) {
	fn, ok := f[src]
	if !ok {
		return nil, fmt.Errorf("%w: %q", formula.ErrSyntax, src)
	}
	return fakeExpr{src: src, fn: fn}, nil
}

// Evaluator returns a FakeEvaluator seeded with the formulas used across tests:
// "soulHp * 2", "power" (soulPower) and "explodes" (always fails).
func Evaluator() FakeEvaluator {
	return FakeEvaluator{
		"soulHp * 2": func(s map[string]float64) (float64, error) { return s[formula.VarSoulHP] * 2, nil },
		"explodes":   func(map[string]float64) (float64, error) { return 0, formula.ErrEval },
		"power":      func(s map[string]float64) (float64, error) { return s[formula.VarSoulPower], nil },
	}
}
