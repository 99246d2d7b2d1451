package form

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrFormula is wrapped by formula compile and evaluation failures
var ErrFormula = errors.New("invalid formula")

// Evaluator compiles computed formulas against a fixed set of field IDs and
// runs them over committed values. Every identifier in a formula must name
// a field; the result is always a float64.
//
// Besides the expr builtins (abs, round, min, max, ...) formulas can call
// clamp(x, lo, hi) and pct(x), which multiplies by 100.
type Evaluator struct {
	mu       sync.Mutex
	fields   []string
	programs map[string]*vm.Program
}

// NewEvaluator creates an evaluator for formulas over the given field IDs
func NewEvaluator(fieldIDs []string) *Evaluator {
	return &Evaluator{
		fields:   append([]string(nil), fieldIDs...),
		programs: make(map[string]*vm.Program),
	}
}

// Compile checks formula and caches the program
func (e *Evaluator) Compile(formula string) error {
	_, err := e.program(formula)
	return err
}

// Eval runs formula with values keyed by field ID. Missing IDs read as zero.
func (e *Evaluator) Eval(formula string, values map[string]float64) (float64, error) {
	program, err := e.program(formula)
	if err != nil {
		return 0, err
	}

	env := e.env(values)
	out, err := vm.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormula, err)
	}
	n, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: result is %T, not a number", ErrFormula, out)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: result is not finite", ErrFormula)
	}
	return n, nil
}

func (e *Evaluator) program(formula string) (*vm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.programs[formula]; ok {
		return p, nil
	}

	options := []expr.Option{
		expr.Env(e.env(nil)),
		expr.AsFloat64(),
		expr.Function("clamp", func(params ...any) (any, error) {
			x, lo, hi := toFloat(params[0]), toFloat(params[1]), toFloat(params[2])
			return math.Min(math.Max(x, lo), hi), nil
		}, new(func(float64, float64, float64) float64)),
		expr.Function("pct", func(params ...any) (any, error) {
			return toFloat(params[0]) * 100, nil
		}, new(func(float64) float64)),
	}

	p, err := expr.Compile(formula, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormula, err)
	}
	e.programs[formula] = p
	return p, nil
}

func (e *Evaluator) env(values map[string]float64) map[string]any {
	env := make(map[string]any, len(e.fields))
	for _, id := range e.fields {
		env[id] = values[id]
	}
	return env
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return math.NaN()
}
