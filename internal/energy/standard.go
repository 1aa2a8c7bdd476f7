package energy

import "github.com/udisondev/powerlevel/internal/model"

// StandardFormula identifies one of the builtin capacity formulas.
type StandardFormula uint8

const (
	FormulaNen StandardFormula = iota + 1
	FormulaChakra
	FormulaReiatsu
	FormulaCursed
	FormulaKi
	FormulaHaki
	FormulaFundamental
	FormulaAlchemy
	FormulaNature
	FormulaMagic
	FormulaForce
	FormulaOrigin
	FormulaOther
)

func (StandardFormula) isCapacity() {}

// Apply evaluates the builtin formula over stats.
func (f StandardFormula) Apply(s model.CharacterStats) float64 {
	switch f {
	case FormulaNen:
		return s.Vitality * s.SoulHP
	case FormulaChakra:
		return s.Vitality * (0.5*s.SoulHP + 0.5*s.SoulPower)
	case FormulaReiatsu:
		return s.SoulHP * s.Vitality * s.SoulPower
	case FormulaCursed:
		return s.SoulPower * s.SoulHP
	case FormulaKi, FormulaHaki, FormulaFundamental:
		return s.Vitality * (s.SoulPower + s.SoulHP)
	case FormulaAlchemy:
		return s.SoulPower * s.BaseHealth
	case FormulaNature:
		return s.Vitality * (s.SoulHP + s.BaseHealth + s.SoulPower)
	case FormulaMagic:
		return s.SoulPower * (s.SoulHP + s.BaseHealth + s.Vitality)
	case FormulaForce:
		return s.SoulHP + s.Vitality
	case FormulaOrigin:
		return s.Vitality * s.SoulPower * s.SoulHP
	case FormulaOther:
		return s.Vitality + s.SoulPower + s.SoulHP
	default:
		return 0
	}
}

// Standard type ids.
const (
	TypeNen         = "nen"
	TypeChakra      = "chakra"
	TypeReiatsu     = "reiatsu"
	TypeCursed      = "cursed"
	TypeKi          = "ki"
	TypeHaki        = "haki"
	TypeFundamental = "fundamental"
	TypeAlchemy     = "alchemy"
	TypeNature      = "nature"
	TypeMagic       = "magic"
	TypeForce       = "force"
	TypeOrigin      = "origin"
	TypeOther       = "other"
)

// StandardTypes returns the builtin energy types in display order.
func StandardTypes() []TypeDefinition {
	return []TypeDefinition{
		standard(TypeNen, "Nen", "#4caf50", FormulaNen),
		standard(TypeChakra, "Chakra", "#2196f3", FormulaChakra),
		standard(TypeReiatsu, "Reiatsu", "#9c27b0", FormulaReiatsu),
		standard(TypeCursed, "Cursed Energy", "#673ab7", FormulaCursed),
		standard(TypeKi, "Ki", "#ff9800", FormulaKi),
		standard(TypeHaki, "Haki", "#f44336", FormulaHaki),
		standard(TypeFundamental, "Fundamental", "#795548", FormulaFundamental),
		standard(TypeAlchemy, "Alchemy", "#ffc107", FormulaAlchemy),
		standard(TypeNature, "Nature", "#8bc34a", FormulaNature),
		standard(TypeMagic, "Magic", "#3f51b5", FormulaMagic),
		standard(TypeForce, "Force", "#607d8b", FormulaForce),
		standard(TypeOrigin, "Origin", "#e91e63", FormulaOrigin),
		standard(TypeOther, "Other", "#9e9e9e", FormulaOther),
	}
}

func standard(id, name, color string, f StandardFormula) TypeDefinition {
	return TypeDefinition{ID: id, Name: name, Color: color, Standard: true, Capacity: f}
}
