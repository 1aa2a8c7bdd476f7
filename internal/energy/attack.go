package energy

import "fmt"

// AttackMode gates the fraction of a pool usable in one action.
type AttackMode string

const (
	AttackNone     AttackMode = "none"
	AttackSuper    AttackMode = "super"
	AttackUltimate AttackMode = "ultimate"
)

// Slider caps per mode, in percent.
const (
	SuperCap    = 95.0
	UltimateCap = 90.0
)

// Cap returns the maximum usable slider percentage for the mode.
func (m AttackMode) Cap() float64 {
	switch m {
	case AttackSuper:
		return SuperCap
	case AttackUltimate:
		return UltimateCap
	default:
		return 100
	}
}

// ParseAttackMode converts user input into an AttackMode. Empty means none.
func ParseAttackMode(s string) (AttackMode, error) {
	switch AttackMode(s) {
	case "", AttackNone:
		return AttackNone, nil
	case AttackSuper:
		return AttackSuper, nil
	case AttackUltimate:
		return AttackUltimate, nil
	default:
		return AttackNone, fmt.Errorf("unknown attack mode %q", s)
	}
}

// Caps overrides the per-mode slider caps.
type Caps struct {
	Super    float64 `yaml:"super"`
	Ultimate float64 `yaml:"ultimate"`
}

// DefaultCaps returns the 95/90 caps.
func DefaultCaps() Caps {
	return Caps{Super: SuperCap, Ultimate: UltimateCap}
}

// For returns the cap for mode, falling back to the default when unset.
func (c Caps) For(m AttackMode) float64 {
	switch m {
	case AttackSuper:
		if c.Super > 0 {
			return c.Super
		}
	case AttackUltimate:
		if c.Ultimate > 0 {
			return c.Ultimate
		}
	}
	return m.Cap()
}
