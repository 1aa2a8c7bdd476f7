package model

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/powerlevel/internal/formula"
	"gonum.org/v1/gonum/floats"
)

// ModifierKind defines how a modifier combines with damage.
type ModifierKind string

const (
	ModifierAdditive       ModifierKind = "additive"
	ModifierMultiplicative ModifierKind = "multiplicative"
)

// Modifier is an ad-hoc damage adjustment entered by the user.
// When Equation is set it replaces Value and is evaluated against the
// character's formula scope on every calculation.
type Modifier struct {
	Name     string       `json:"name"`
	Value    float64      `json:"value"`
	Kind     ModifierKind `json:"kind"`
	Equation string       `json:"equation,omitempty"`
}

// Neutral returns the value that leaves damage unchanged for this kind.
func (m Modifier) Neutral() float64 {
	if m.Kind == ModifierMultiplicative {
		return 1
	}
	return 0
}

// Resolve returns the effective value. A failing equation yields the
// neutral value together with the error.
func (m Modifier) Resolve(ev formula.Evaluator, scope map[string]float64) (float64, error) {
	if strings.TrimSpace(m.Equation) == "" {
		return m.Value, nil
	}
	if ev == nil {
		return m.Neutral(), fmt.Errorf("modifier %q: no evaluator for equation", m.Name)
	}
	expr, err := ev.Compile(m.Equation)
	if err != nil {
		return m.Neutral(), fmt.Errorf("modifier %q: %w", m.Name, err)
	}
	v, err := expr.Eval(scope)
	if err != nil {
		return m.Neutral(), fmt.Errorf("modifier %q: %w", m.Name, err)
	}
	return v, nil
}

// ModifierTotals is the reduced form of a modifier list.
type ModifierTotals struct {
	Additive       float64
	Multiplicative []float64
	Warnings       []error
}

// Product returns the combined multiplicative factor, 1 when empty.
func (t ModifierTotals) Product() float64 {
	if len(t.Multiplicative) == 0 {
		return 1
	}
	return floats.Prod(t.Multiplicative)
}

// ReduceModifiers splits mods into an additive sum and the ordered list of
// multiplicative factors. Groups are reduced independently.
func ReduceModifiers(mods []Modifier, ev formula.Evaluator, scope map[string]float64) ModifierTotals {
	var (
		totals ModifierTotals
		adds   []float64
	)
	for _, m := range mods {
		v, err := m.Resolve(ev, scope)
		if err != nil {
			slog.Warn("modifier equation failed, using neutral value", "modifier", m.Name, "error", err)
			totals.Warnings = append(totals.Warnings, err)
		}
		switch m.Kind {
		case ModifierMultiplicative:
			totals.Multiplicative = append(totals.Multiplicative, v)
		default:
			adds = append(adds, v)
		}
	}
	if len(adds) > 0 {
		totals.Additive = floats.Sum(adds)
	}
	return totals
}
