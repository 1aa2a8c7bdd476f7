// Package formula compiles user-authored energy capacity formulas.
//
// The grammar is deliberately small: numeric literals, the operators
// + - * / with parentheses, and the variables baseHp, vitality, soulPower
// and soulHp. Anything else is rejected at compile time.
package formula

import (
	"errors"
	"fmt"
)

// Formula scope variable names.
const (
	VarBaseHP    = "baseHp"
	VarVitality  = "vitality"
	VarSoulPower = "soulPower"
	VarSoulHP    = "soulHp"
)

// Variables lists the identifiers a formula may reference, in scope order.
var Variables = []string{VarBaseHP, VarVitality, VarSoulPower, VarSoulHP}

var (
	// ErrSyntax is returned when a formula does not match the grammar.
	ErrSyntax = errors.New("formula syntax error")
	// ErrUnknownIdentifier is returned for identifiers outside Variables.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrEval is returned when a compiled formula fails at evaluation time.
	ErrEval = errors.New("formula evaluation failed")
)

// Expression is a compiled formula.
type Expression interface {
	// Eval evaluates the formula against scope. Missing variables are an error.
	Eval(scope map[string]float64) (float64, error)
	// Source returns the normalized source text.
	Source() string
}

// Evaluator compiles formula source into an Expression.
type Evaluator interface {
	Compile(src string) (Expression, error)
}

func isVariable(name string) bool {
	for _, v := range Variables {
		if v == name {
			return true
		}
	}
	return false
}

func checkScope(scope map[string]float64) error {
	for _, v := range Variables {
		if _, ok := scope[v]; !ok {
			return fmt.Errorf("%w: variable %q missing from scope", ErrEval, v)
		}
	}
	return nil
}
