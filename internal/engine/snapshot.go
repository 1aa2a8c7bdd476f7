package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/form"
	"github.com/udisondev/powerlevel/internal/model"
)

// SnapshotVersion is the schema version written by Gather.
const SnapshotVersion = 1

// PoolSnapshot holds the persisted inputs of one pool. Totals are never
// stored; they are recomputed on Apply.
type PoolSnapshot struct {
	TypeID         string  `json:"typeId"`
	Multiplier     float64 `json:"multiplier"`
	DamagePerPoint float64 `json:"damagePerPoint"`
	RegenPercent   float64 `json:"regenPercent"`
	Current        float64 `json:"current"`
	SliderPercent  float64 `json:"sliderPercent"`
}

// ActionSnapshot holds the pending-action inputs.
type ActionSnapshot struct {
	BaseDamage        float64 `json:"baseDamage"`
	CompressionPoints float64 `json:"compressionPoints"`
	SpeedSlider       float64 `json:"speedSlider"`
	FocusedType       string  `json:"focusedType,omitempty"`
	StrainEnabled     bool    `json:"strainEnabled"`
	StrainPercent     float64 `json:"strainPercent"`
	Health            float64 `json:"health"`
}

// Snapshot is the full persistable engine state.
type Snapshot struct {
	Version     int                          `json:"version"`
	Stats       model.CharacterStats         `json:"stats"`
	CustomTypes []energy.TypeDefinition      `json:"customTypes,omitempty"`
	Pools       []PoolSnapshot               `json:"pools"`
	Forms       []form.Form                  `json:"forms"`
	ActiveForms []string                     `json:"activeForms"`
	Modifiers   []model.Modifier             `json:"modifiers"`
	AttackModes map[string]energy.AttackMode `json:"attackModes"`
	Statistics  model.RunStatistics          `json:"statistics"`
	Action      ActionSnapshot               `json:"action"`
	ViewFlags   map[string]bool              `json:"viewFlags"`
}

// Encode marshals the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot unmarshals a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}

// Gather captures the engine state. It fails with ErrMissingStats, without
// side effects, when the character stats were never provided.
func (e *Engine) Gather() (*Snapshot, error) {
	if !e.statsSet {
		return nil, ErrMissingStats
	}
	if err := e.stats.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingStats, err)
	}

	s := &Snapshot{
		Version:     SnapshotVersion,
		Stats:       e.stats,
		Forms:       e.forms.Forms(),
		ActiveForms: e.forms.ActiveIDs(),
		Modifiers:   e.Modifiers(),
		AttackModes: make(map[string]energy.AttackMode, len(e.attack)),
		Statistics:  e.run,
		Action: ActionSnapshot{
			BaseDamage:        e.baseDamage,
			CompressionPoints: e.compressionPoints,
			SpeedSlider:       e.speedSlider,
			FocusedType:       e.focusedType,
			StrainEnabled:     e.strain.Enabled,
			StrainPercent:     e.strain.Percent,
			Health:            e.health,
		},
		ViewFlags: e.ViewFlags(),
	}
	for _, d := range e.registry.Custom() {
		s.CustomTypes = append(s.CustomTypes, energy.TypeDefinition{
			ID: d.ID, Name: d.Name, Color: d.Color, Formula: d.Formula,
		})
	}
	for _, id := range e.registry.IDs() {
		p := e.pools[id]
		s.Pools = append(s.Pools, PoolSnapshot{
			TypeID:         id,
			Multiplier:     p.PoolMultiplier,
			DamagePerPoint: p.DamagePerPoint,
			RegenPercent:   p.RegenPercent,
			Current:        p.Current,
			SliderPercent:  p.SliderPercent,
		})
	}
	for id, m := range e.attack {
		s.AttackModes[id] = m
	}
	return s, nil
}

// Apply restores a snapshot. The snapshot is validated before anything is
// mutated. Pool totals are recomputed from the restored stats and forms
// first; saved current energy is then clamped into the new totals.
// It returns recoverable formula warnings from the recompute.
func (e *Engine) Apply(s *Snapshot) ([]error, error) {
	if s == nil {
		return nil, fmt.Errorf("applying snapshot: %w", ErrUnsupportedSnapshot)
	}
	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshot, s.Version)
	}
	if err := s.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("applying snapshot: %w", err)
	}
	for id, m := range s.AttackModes {
		if _, err := energy.ParseAttackMode(string(m)); err != nil {
			return nil, fmt.Errorf("applying snapshot: type %q: %w", id, err)
		}
	}
	for _, m := range s.Modifiers {
		if m.Kind != model.ModifierAdditive && m.Kind != model.ModifierMultiplicative {
			return nil, fmt.Errorf("applying snapshot: modifier %q: unknown kind %q", m.Name, m.Kind)
		}
	}
	for _, d := range s.CustomTypes {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("applying snapshot: custom energy type without id")
		}
	}

	e.setRegistry(energy.NewRegistry(s.CustomTypes, e.opts.Evaluator))

	e.stats = s.Stats
	e.statsSet = true
	e.forms.Restore(s.Forms, s.ActiveForms)
	e.modifiers = append([]model.Modifier(nil), s.Modifiers...)
	e.attack = make(map[string]energy.AttackMode, len(s.AttackModes))
	for id, m := range s.AttackModes {
		if _, ok := e.pools[id]; ok && m != energy.AttackNone {
			e.attack[id] = m
		}
	}
	e.run = s.Statistics
	e.baseDamage = s.Action.BaseDamage
	e.compressionPoints = s.Action.CompressionPoints
	e.speedSlider = s.Action.SpeedSlider
	e.focusedType = ""
	if _, ok := e.pools[s.Action.FocusedType]; ok {
		e.focusedType = s.Action.FocusedType
	}
	e.strain = Strain{Enabled: s.Action.StrainEnabled, Percent: s.Action.StrainPercent}
	e.health = math.Max(0, math.Min(s.Action.Health, s.Stats.MaxHealth()))
	e.viewFlags = make(map[string]bool, len(s.ViewFlags))
	for k, v := range s.ViewFlags {
		e.viewFlags[k] = v
	}

	for id := range e.pools {
		e.pools[id] = energy.NewPool(id)
	}
	saved := make(map[string]PoolSnapshot, len(s.Pools))
	for _, ps := range s.Pools {
		p, ok := e.pools[ps.TypeID]
		if !ok {
			continue
		}
		saved[ps.TypeID] = ps
		p.DamagePerPoint = ps.DamagePerPoint
		p.RegenPercent = ps.RegenPercent
		p.SliderPercent = ps.SliderPercent
	}

	// The saved multiplier is informational; forms are the source of truth.
	warnings := e.Refresh()

	for id, ps := range saved {
		e.pools[id].Restore(ps.Current)
	}
	return warnings, nil
}
