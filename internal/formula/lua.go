package formula

import (
	"fmt"
	"math"
	"sync"

	"github.com/Shopify/go-lua"
)

// chunkGlobal holds the compiled chunk inside each expression's state.
const chunkGlobal = "formula"

// LuaEvaluator compiles formulas into sandboxed Lua chunks.
// No Lua libraries are opened; the tokenizer guarantees the chunk can only
// do arithmetic over the scope variables.
type LuaEvaluator struct{}

// NewLuaEvaluator returns the default Evaluator.
func NewLuaEvaluator() *LuaEvaluator {
	return &LuaEvaluator{}
}

// Compile validates src against the grammar and loads it into a fresh Lua state.
func (LuaEvaluator) Compile(src string) (Expression, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	normalized := normalize(tokens)

	state := lua.NewState()
	if err := lua.LoadString(state, "return "+normalized); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	state.SetGlobal(chunkGlobal)

	return &luaExpression{state: state, source: normalized}, nil
}

type luaExpression struct {
	mu     sync.Mutex
	state  *lua.State
	source string
}

func (e *luaExpression) Source() string { return e.source }

func (e *luaExpression) Eval(scope map[string]float64) (float64, error) {
	if err := checkScope(scope); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	l := e.state
	for _, name := range Variables {
		l.PushNumber(scope[name])
		l.SetGlobal(name)
	}

	l.Global(chunkGlobal)
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		l.Pop(1)
		return 0, fmt.Errorf("%w: %q: %v", ErrEval, e.source, err)
	}
	v, ok := l.ToNumber(-1)
	l.Pop(1)
	if !ok {
		return 0, fmt.Errorf("%w: %q did not produce a number", ErrEval, e.source)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q produced non-finite result", ErrEval, e.source)
	}
	return v, nil
}
