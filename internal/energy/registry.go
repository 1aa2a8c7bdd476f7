package energy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/udisondev/powerlevel/internal/formula"
	"github.com/udisondev/powerlevel/internal/model"
)

// Capacity is the base capacity formula of an energy type:
// either a StandardFormula or a Custom expression.
type Capacity interface {
	isCapacity()
}

// Custom is a user-authored capacity formula.
// Err holds the compile error when the formula could not be compiled.
type Custom struct {
	Expr formula.Expression
	Err  error
}

func (Custom) isCapacity() {}

// TypeDefinition describes one energy type.
type TypeDefinition struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Color    string   `json:"color,omitempty" yaml:"color"`
	Standard bool     `json:"standard" yaml:"-"`
	Formula  string   `json:"formula,omitempty" yaml:"formula"`
	Capacity Capacity `json:"-" yaml:"-"`
}

// Compile binds a Custom capacity for a non-standard definition.
// A compile failure is kept on the capacity and surfaces from BaseMax.
func (d TypeDefinition) Compile(ev formula.Evaluator) TypeDefinition {
	if d.Standard {
		return d
	}
	if ev == nil {
		d.Capacity = Custom{Err: fmt.Errorf("%w: no evaluator for %q", ErrFormula, d.ID)}
		return d
	}
	expr, err := ev.Compile(d.Formula)
	if err != nil {
		slog.Warn("custom energy formula rejected", "type", d.ID, "formula", d.Formula, "error", err)
		d.Capacity = Custom{Err: err}
		return d
	}
	d.Capacity = Custom{Expr: expr}
	return d
}

// BaseMax returns the base capacity of def for stats, floored at 0.
// Custom formula failures and non-finite results yield 0 and an ErrFormula.
func BaseMax(def TypeDefinition, stats model.CharacterStats) (float64, error) {
	var v float64
	switch c := def.Capacity.(type) {
	case StandardFormula:
		v = c.Apply(stats)
	case Custom:
		if c.Err != nil {
			return 0, fmt.Errorf("%w: type %q: %v", ErrFormula, def.ID, c.Err)
		}
		if c.Expr == nil {
			return 0, fmt.Errorf("%w: type %q has no compiled formula", ErrFormula, def.ID)
		}
		res, err := c.Expr.Eval(stats.Scope())
		if err != nil {
			return 0, fmt.Errorf("%w: type %q: %v", ErrFormula, def.ID, err)
		}
		v = res
	default:
		return 0, fmt.Errorf("%w: type %q has no capacity formula", ErrFormula, def.ID)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: type %q produced non-finite capacity", ErrFormula, def.ID)
	}
	return math.Max(0, v), nil
}

// Merge concatenates standard definitions with custom ones in load order.
// A custom id that repeats an earlier id replaces that entry in place.
func Merge(standard, custom []TypeDefinition) []TypeDefinition {
	merged := make([]TypeDefinition, 0, len(standard)+len(custom))
	index := make(map[string]int, len(standard)+len(custom))

	add := func(d TypeDefinition) {
		if i, ok := index[d.ID]; ok {
			slog.Warn("energy type id collision, last definition wins", "type", d.ID)
			merged[i] = d
			return
		}
		index[d.ID] = len(merged)
		merged = append(merged, d)
	}
	for _, d := range standard {
		add(d)
	}
	for _, d := range custom {
		add(d)
	}
	return merged
}

// CustomTypeSource loads user-defined energy types.
type CustomTypeSource interface {
	LoadCustomTypes(ctx context.Context) ([]TypeDefinition, error)
}

// Registry is the merged, ordered set of energy types.
type Registry struct {
	defs  []TypeDefinition
	index map[string]int
}

// NewRegistry merges the standard types with custom and compiles custom formulas.
func NewRegistry(custom []TypeDefinition, ev formula.Evaluator) *Registry {
	compiled := make([]TypeDefinition, 0, len(custom))
	for _, d := range custom {
		d.Standard = false
		compiled = append(compiled, d.Compile(ev))
	}

	defs := Merge(StandardTypes(), compiled)
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.ID] = i
	}
	return &Registry{defs: defs, index: index}
}

// LoadRegistry builds a registry from src. A failing source is logged and
// treated as an empty custom set.
func LoadRegistry(ctx context.Context, src CustomTypeSource, ev formula.Evaluator) *Registry {
	var custom []TypeDefinition
	if src != nil {
		loaded, err := src.LoadCustomTypes(ctx)
		if err != nil {
			slog.Error("loading custom energy types, continuing with standard set", "error", err)
		} else {
			custom = loaded
		}
	}
	return NewRegistry(custom, ev)
}

// Types returns all definitions in registry order.
func (r *Registry) Types() []TypeDefinition {
	out := make([]TypeDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// IDs returns type ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.defs))
	for i, d := range r.defs {
		ids[i] = d.ID
	}
	return ids
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (TypeDefinition, bool) {
	i, ok := r.index[id]
	if !ok {
		return TypeDefinition{}, false
	}
	return r.defs[i], true
}

// Custom returns the non-standard definitions in load order.
func (r *Registry) Custom() []TypeDefinition {
	var out []TypeDefinition
	for _, d := range r.defs {
		if !d.Standard {
			out = append(out, d)
		}
	}
	return out
}

// NormalizeID turns a display name into a type id: lower case, spaces as dashes.
func NormalizeID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
