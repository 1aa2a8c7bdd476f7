package energy

import "errors"

var (
	// ErrInvalidOperation is returned for operations that cannot apply to
	// the pool's current state, such as regenerating an empty pool.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrFormula wraps capacity formula failures. BaseMax falls back to 0.
	ErrFormula = errors.New("capacity formula failed")
	// ErrUnknownType is returned for energy type ids missing from the registry.
	ErrUnknownType = errors.New("unknown energy type")
)
