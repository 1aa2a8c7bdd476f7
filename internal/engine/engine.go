// Package engine is the derived-state calculation engine: it owns the
// character's pools, forms, modifiers and run statistics and turns them
// into pool totals, a damage figure and persistable snapshots.
//
// An Engine is owned by a single caller and is not safe for concurrent use.
// Input setters never recompute; call Refresh after a batch of edits.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/form"
	"github.com/udisondev/powerlevel/internal/formula"
	"github.com/udisondev/powerlevel/internal/model"
)

var (
	// ErrMissingStats is returned by Gather when character stats are unavailable.
	ErrMissingStats = errors.New("character stats are not available")
	// ErrUnsupportedSnapshot is returned by Apply for snapshots from a newer engine.
	ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")
)

// Options configures an Engine.
type Options struct {
	Evaluator formula.Evaluator
	// PrimaryType is the energy type whose focus enables strain.
	PrimaryType string
	Caps        energy.Caps
}

// DefaultOptions returns options with the Lua evaluator, ki as primary type
// and default attack caps.
func DefaultOptions() Options {
	return Options{
		Evaluator:   formula.NewLuaEvaluator(),
		PrimaryType: energy.TypeKi,
		Caps:        energy.DefaultCaps(),
	}
}

// Strain drains health each calculation while the primary type is focused.
type Strain struct {
	Enabled bool
	Percent float64
}

// Engine is the calculation context.
type Engine struct {
	opts     Options
	registry *energy.Registry
	pools    map[string]*energy.Pool

	stats    model.CharacterStats
	statsSet bool

	forms     *form.Set
	aggregate form.Aggregate
	modifiers []model.Modifier
	attack    map[string]energy.AttackMode
	run       model.RunStatistics

	baseDamage        float64
	compressionPoints float64
	speedSlider       float64
	focusedType       string
	strain            Strain
	health            float64

	viewFlags map[string]bool
}

// New creates an Engine over registry. A nil registry means standard types only.
func New(registry *energy.Registry, opts Options) *Engine {
	if registry == nil {
		registry = energy.NewRegistry(nil, opts.Evaluator)
	}
	e := &Engine{
		opts:      opts,
		stats:     model.DefaultCharacterStats(),
		forms:     form.NewSet(),
		attack:    make(map[string]energy.AttackMode),
		viewFlags: make(map[string]bool),
	}
	e.setRegistry(registry)
	e.aggregate = form.Neutral(registry.IDs())
	return e
}

// setRegistry rebuilds pools for registry, keeping inputs of surviving types.
func (e *Engine) setRegistry(registry *energy.Registry) {
	old := e.pools
	e.registry = registry
	e.pools = make(map[string]*energy.Pool, len(registry.IDs()))
	for _, id := range registry.IDs() {
		if p, ok := old[id]; ok {
			e.pools[id] = p
			continue
		}
		e.pools[id] = energy.NewPool(id)
	}
	for id := range e.attack {
		if _, ok := e.pools[id]; !ok {
			delete(e.attack, id)
		}
	}
	if _, ok := e.pools[e.focusedType]; !ok {
		e.focusedType = ""
	}
}

// Registry returns the active energy type registry.
func (e *Engine) Registry() *energy.Registry { return e.registry }

// Forms returns the engine's form set. Call Refresh after editing it.
func (e *Engine) Forms() *form.Set { return e.forms }

// SetStats replaces the character stats.
func (e *Engine) SetStats(stats model.CharacterStats) error {
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("setting stats: %w", err)
	}
	first := !e.statsSet
	e.stats = stats
	e.statsSet = true
	if first || e.health > stats.MaxHealth() {
		e.health = stats.MaxHealth()
	}
	return nil
}

// Stats returns the current character stats.
func (e *Engine) Stats() model.CharacterStats { return e.stats }

// Refresh runs form aggregation and recomputes every pool, refilling each
// to its new total. It returns recoverable formula errors, one per failing type.
func (e *Engine) Refresh() []error {
	e.aggregate = e.forms.Aggregate(e.registry.IDs())

	var warnings []error
	for _, def := range e.registry.Types() {
		p := e.pools[def.ID]
		baseMax, err := energy.BaseMax(def, e.stats)
		if err != nil {
			slog.Warn("energy capacity fell back to zero", "type", def.ID, "error", err)
			warnings = append(warnings, err)
		}
		p.PoolMultiplier = e.aggregate.PoolMultiplier(def.ID)
		p.Recompute(baseMax, e.stats.BaseMultiplier)
	}
	return warnings
}

// Aggregate returns the most recent form aggregation.
func (e *Engine) Aggregate() form.Aggregate { return e.aggregate }

// Pool returns a copy of the pool for typeID.
func (e *Engine) Pool(typeID string) (energy.Pool, bool) {
	p, ok := e.pools[typeID]
	if !ok {
		return energy.Pool{}, false
	}
	return *p, true
}

// Pools returns copies of all pools in registry order.
func (e *Engine) Pools() []energy.Pool {
	out := make([]energy.Pool, 0, len(e.pools))
	for _, id := range e.registry.IDs() {
		out = append(out, *e.pools[id])
	}
	return out
}

func (e *Engine) pool(typeID string) (*energy.Pool, error) {
	p, ok := e.pools[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", energy.ErrUnknownType, typeID)
	}
	return p, nil
}

// SetSlider sets the percentage of typeID's pool to spend per calculation.
func (e *Engine) SetSlider(typeID string, percent float64) error {
	p, err := e.pool(typeID)
	if err != nil {
		return err
	}
	p.SliderPercent = clampPercent(percent)
	return nil
}

// SetDamagePerPoint sets the damage dealt per energy point of typeID.
func (e *Engine) SetDamagePerPoint(typeID string, v float64) error {
	p, err := e.pool(typeID)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("damage per point for %q must be finite", typeID)
	}
	p.DamagePerPoint = v
	return nil
}

// SetRegenPercent sets the regeneration rate of typeID used by RegenerateAll.
func (e *Engine) SetRegenPercent(typeID string, percent float64) error {
	p, err := e.pool(typeID)
	if err != nil {
		return err
	}
	p.RegenPercent = math.Max(0, percent)
	return nil
}

// SetAttackMode sets the attack mode gate for typeID.
func (e *Engine) SetAttackMode(typeID string, mode energy.AttackMode) error {
	if _, err := e.pool(typeID); err != nil {
		return err
	}
	if _, err := energy.ParseAttackMode(string(mode)); err != nil {
		return err
	}
	if mode == energy.AttackNone || mode == "" {
		delete(e.attack, typeID)
		return nil
	}
	e.attack[typeID] = mode
	return nil
}

// AttackMode returns the attack mode of typeID, AttackNone by default.
func (e *Engine) AttackMode(typeID string) energy.AttackMode {
	if m, ok := e.attack[typeID]; ok {
		return m
	}
	return energy.AttackNone
}

// SetFocusedType selects the energy type the character is focusing. Empty clears.
func (e *Engine) SetFocusedType(typeID string) error {
	if typeID != "" {
		if _, err := e.pool(typeID); err != nil {
			return err
		}
	}
	e.focusedType = typeID
	return nil
}

// SetBaseDamage sets the base damage input.
func (e *Engine) SetBaseDamage(v float64) { e.baseDamage = finiteOrZero(v) }

// SetCompressionPoints sets the compression point input.
func (e *Engine) SetCompressionPoints(v float64) { e.compressionPoints = math.Max(0, finiteOrZero(v)) }

// SetSpeedSlider sets the percentage of speed converted into damage.
func (e *Engine) SetSpeedSlider(percent float64) { e.speedSlider = clampPercent(percent) }

// SetStrain configures health strain.
func (e *Engine) SetStrain(s Strain) {
	s.Percent = clampPercent(s.Percent)
	e.strain = s
}

// Health returns the character's current health.
func (e *Engine) Health() float64 { return e.health }

// Heal restores health to the maximum.
func (e *Engine) Heal() { e.health = e.stats.MaxHealth() }

// AddModifier appends a modifier.
func (e *Engine) AddModifier(m model.Modifier) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Kind != model.ModifierAdditive && m.Kind != model.ModifierMultiplicative {
		return fmt.Errorf("modifier %q: unknown kind %q", m.Name, m.Kind)
	}
	e.modifiers = append(e.modifiers, m)
	return nil
}

// RemoveModifier deletes the modifier at index i.
func (e *Engine) RemoveModifier(i int) error {
	if i < 0 || i >= len(e.modifiers) {
		return fmt.Errorf("modifier index %d out of range", i)
	}
	e.modifiers = append(e.modifiers[:i], e.modifiers[i+1:]...)
	return nil
}

// Modifiers returns a copy of the modifier list.
func (e *Engine) Modifiers() []model.Modifier {
	out := make([]model.Modifier, len(e.modifiers))
	copy(out, e.modifiers)
	return out
}

// Defenses returns armor class and true resistance including form bonuses.
func (e *Engine) Defenses() (armorClass, trueResistance float64) {
	return e.stats.BaseArmorClass + e.aggregate.ACBonus,
		e.stats.BaseTrueResistance + e.aggregate.TrueResistanceBonus
}

// Regenerate restores percent of typeID's total energy.
func (e *Engine) Regenerate(typeID string, percent float64) (float64, error) {
	p, err := e.pool(typeID)
	if err != nil {
		return 0, err
	}
	return p.Regenerate(percent)
}

// RegenerateAll regenerates every pool at its own rate. Pools that cannot
// regenerate are skipped and reported.
func (e *Engine) RegenerateAll() []error {
	var errs []error
	for _, id := range e.registry.IDs() {
		p := e.pools[id]
		if p.RegenPercent <= 0 {
			continue
		}
		if _, err := p.Regenerate(p.RegenPercent); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// AddCustomType registers a user-defined energy type and rebuilds the registry.
func (e *Engine) AddCustomType(def energy.TypeDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.ID == "" {
		def.ID = energy.NormalizeID(def.Name)
	}
	if def.ID == "" {
		return fmt.Errorf("custom energy type requires a name")
	}
	if _, exists := e.registry.Get(def.ID); exists {
		return fmt.Errorf("energy type %q already exists", def.ID)
	}
	if e.opts.Evaluator != nil {
		if _, err := e.opts.Evaluator.Compile(def.Formula); err != nil {
			return fmt.Errorf("energy type %q: %w", def.ID, err)
		}
	}
	custom := append(e.registry.Custom(), def)
	e.setRegistry(energy.NewRegistry(custom, e.opts.Evaluator))
	return nil
}

// RemoveCustomType deletes a user-defined energy type and its pool.
func (e *Engine) RemoveCustomType(id string) error {
	def, ok := e.registry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", energy.ErrUnknownType, id)
	}
	if def.Standard {
		return fmt.Errorf("%w: standard type %q cannot be removed", energy.ErrInvalidOperation, id)
	}
	var custom []energy.TypeDefinition
	for _, d := range e.registry.Custom() {
		if d.ID != id {
			custom = append(custom, d)
		}
	}
	e.setRegistry(energy.NewRegistry(custom, e.opts.Evaluator))
	return nil
}

// SetViewFlag stores a presentation flag that travels with snapshots.
func (e *Engine) SetViewFlag(name string, on bool) { e.viewFlags[name] = on }

// ViewFlags returns a copy of the presentation flags.
func (e *Engine) ViewFlags() map[string]bool {
	out := make(map[string]bool, len(e.viewFlags))
	for k, v := range e.viewFlags {
		out[k] = v
	}
	return out
}

// Statistics returns the run statistics.
func (e *Engine) Statistics() model.RunStatistics { return e.run }

// ResetAttackCount clears the attack counter only.
func (e *Engine) ResetAttackCount() { e.run.ResetAttackCount() }

// Reset clears statistics, forms, modifiers and action inputs, restores
// health and refreshes pools. Stats and custom types are kept.
func (e *Engine) Reset() []error {
	e.run = model.RunStatistics{}
	e.forms = form.NewSet()
	e.modifiers = nil
	e.attack = make(map[string]energy.AttackMode)
	e.baseDamage = 0
	e.compressionPoints = 0
	e.speedSlider = 0
	e.focusedType = ""
	e.strain = Strain{}
	for _, p := range e.pools {
		p.SliderPercent = 0
	}
	e.Heal()
	return e.Refresh()
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, finiteOrZero(v)))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
