// Package celpred compiles CEL expressions over context variables into
// condition predicates.
//
// Expressions are compiled once, up front; the returned predicate is a
// thin wrapper around the compiled program and is safe for concurrent use,
// so a single compiled leaf can serve unlimited concurrent evaluations.
package celpred

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/interpreter"

	"github.com/verdict-eval/verdict/condition"
)

// costLimit caps expression evaluation cost to prevent runaway
// expressions from exhausting resources.
const costLimit = 1_000_000

// NewEnv returns a CEL environment declaring each of the given variable
// names as a dynamic type. Expressions may only reference declared names;
// facts are plain Go values resolved through the evaluation context at
// runtime.
func NewEnv(vars ...string) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(vars))
	for _, v := range vars {
		opts = append(opts, cel.Variable(v, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return env, nil
}

// Compile compiles a boolean CEL expression into a condition predicate.
//
// A non-boolean result is treated as false rather than an error, so
// expressions that short-circuit to non-boolean values degrade to a
// non-match instead of failing the whole tree.
func Compile(env *cel.Env, expr string) (condition.Predicate, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}

	prog, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}

	return func(ctx *condition.Context) (bool, error) {
		out, _, err := prog.Eval(activation{ctx: ctx})
		if err != nil {
			return false, fmt.Errorf("evaluate %q: %w", expr, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return false, nil
		}
		return matched, nil
	}, nil
}

// activation resolves CEL identifiers through the evaluation context's
// variables.
type activation struct {
	ctx *condition.Context
}

// ResolveName implements interpreter.Activation.
func (a activation) ResolveName(name string) (any, bool) {
	return a.ctx.Variable(name)
}

// Parent implements interpreter.Activation.
func (a activation) Parent() interpreter.Activation { return nil }
