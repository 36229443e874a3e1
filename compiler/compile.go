// Package compiler builds condition trees from declarative CUE documents.
//
// A document declares conditions under the top-level "condition" struct:
//
//	condition: ready: {
//		op: "and"
//		cancellable: true
//		children: [
//			{op: "leaf", predicate: "warmed_up"},
//			{op: "leaf", expr: "temperature > 20", async: true, timeout: "2s"},
//			{op: "not", child: {op: "leaf", predicate: "faulted"}},
//		]
//	}
//
// Leaves reference either a named predicate from the caller's Registry or
// a CEL expression compiled through celpred. Executors are resolved by
// name from the caller's Executors map.
package compiler

import (
	"fmt"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
	"github.com/google/cel-go/cel"

	"github.com/verdict-eval/verdict/celpred"
	"github.com/verdict-eval/verdict/condition"
)

// Registry maps predicate names to implementations.
type Registry map[string]condition.Predicate

// Executors maps executor names available to condition documents.
type Executors map[string]condition.Executor

// Options configures compilation.
type Options struct {
	// Predicates resolves leaf "predicate" references.
	Predicates Registry

	// Executors resolves "executor" references. Documents that name no
	// executor leave async nodes on the default pool.
	Executors Executors

	// CELEnv enables leaf "expr" fields. Nil makes "expr" a compile
	// error.
	CELEnv *cel.Env
}

// CompileError reports a problem in a condition document, with the CUE
// position when available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses a CUE value describing a single condition into a tree.
//
// The value should be the condition struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`{op: "leaf", predicate: "ok"}`)
//	node, err := compiler.Compile(v, opts)
func Compile(v cue.Value, opts Options) (*condition.Node, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "condition", Message: err.Error(), Pos: v.Pos()}
	}

	op, err := requiredString(v, "op")
	if err != nil {
		return nil, err
	}

	var node *condition.Node
	switch op {
	case "leaf":
		node, err = compileLeaf(v, opts)
	case "and", "or":
		node, err = compileComposite(v, op, opts)
	case "not":
		node, err = compileNot(v, opts)
	default:
		return nil, &CompileError{
			Field:   "op",
			Message: fmt.Sprintf("invalid op %q, must be \"leaf\", \"and\", \"or\", or \"not\"", op),
			Pos:     v.Pos(),
		}
	}
	if err != nil {
		return nil, err
	}

	return applyAttributes(v, node, opts)
}

// compileLeaf resolves a leaf's predicate: a named Registry entry or a CEL
// expression, exactly one of which must be present.
func compileLeaf(v cue.Value, opts Options) (*condition.Node, error) {
	name, hasName, err := optionalString(v, "predicate")
	if err != nil {
		return nil, err
	}
	expr, hasExpr, err := optionalString(v, "expr")
	if err != nil {
		return nil, err
	}

	switch {
	case hasName && hasExpr:
		return nil, &CompileError{
			Field:   "predicate",
			Message: "leaf declares both \"predicate\" and \"expr\"; pick one",
			Pos:     v.Pos(),
		}
	case hasName:
		pred, ok := opts.Predicates[name]
		if !ok {
			return nil, &CompileError{
				Field:   "predicate",
				Message: fmt.Sprintf("unknown predicate %q", name),
				Pos:     v.Pos(),
			}
		}
		return condition.NewLeaf(pred), nil
	case hasExpr:
		if opts.CELEnv == nil {
			return nil, &CompileError{
				Field:   "expr",
				Message: "no CEL environment configured for expression leaves",
				Pos:     v.Pos(),
			}
		}
		pred, err := celpred.Compile(opts.CELEnv, expr)
		if err != nil {
			return nil, &CompileError{Field: "expr", Message: err.Error(), Pos: v.Pos()}
		}
		return condition.NewLeaf(pred), nil
	default:
		return nil, &CompileError{
			Field:   "predicate",
			Message: "leaf requires \"predicate\" or \"expr\"",
			Pos:     v.Pos(),
		}
	}
}

// compileComposite parses the ordered children list of an and/or node.
func compileComposite(v cue.Value, op string, opts Options) (*condition.Node, error) {
	childrenVal := v.LookupPath(cue.ParsePath("children"))
	if !childrenVal.Exists() {
		return nil, &CompileError{
			Field:   "children",
			Message: fmt.Sprintf("%q requires a children list", op),
			Pos:     v.Pos(),
		}
	}

	iter, err := childrenVal.List()
	if err != nil {
		return nil, &CompileError{Field: "children", Message: err.Error(), Pos: childrenVal.Pos()}
	}

	var children []*condition.Node
	for iter.Next() {
		child, err := Compile(iter.Value(), opts)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 0 {
		return nil, &CompileError{
			Field:   "children",
			Message: fmt.Sprintf("%q requires at least one child", op),
			Pos:     childrenVal.Pos(),
		}
	}

	if op == "and" {
		return condition.AllOf(children...)
	}
	return condition.AnyOf(children...)
}

// compileNot parses the single inner node of a negation.
func compileNot(v cue.Value, opts Options) (*condition.Node, error) {
	childVal := v.LookupPath(cue.ParsePath("child"))
	if !childVal.Exists() {
		return nil, &CompileError{
			Field:   "child",
			Message: "\"not\" requires a child",
			Pos:     v.Pos(),
		}
	}
	inner, err := Compile(childVal, opts)
	if err != nil {
		return nil, err
	}
	return condition.Not(inner), nil
}

// applyAttributes layers the optional attribute fields onto a built node
// via its copy-on-write mutators.
func applyAttributes(v cue.Value, node *condition.Node, opts Options) (*condition.Node, error) {
	if alias, ok, err := optionalString(v, "alias"); err != nil {
		return nil, err
	} else if ok {
		node = node.WithAlias(alias)
	}

	if async, ok, err := optionalBool(v, "async"); err != nil {
		return nil, err
	} else if ok {
		node = node.WithAsync(async)
	}

	if d, ok, err := optionalDuration(v, "delay"); err != nil {
		return nil, err
	} else if ok {
		node = node.WithDelay(d)
	}

	if d, ok, err := optionalDuration(v, "timeout"); err != nil {
		return nil, err
	} else if ok {
		node = node.WithTimeout(d)
	}

	if cancellable, ok, err := optionalBool(v, "cancellable"); err != nil {
		return nil, err
	} else if ok {
		node = node.WithCancellable(cancellable)
	}

	if name, ok, err := optionalString(v, "executor"); err != nil {
		return nil, err
	} else if ok {
		exec, found := opts.Executors[name]
		if !found {
			return nil, &CompileError{
				Field:   "executor",
				Message: fmt.Sprintf("unknown executor %q", name),
				Pos:     v.Pos(),
			}
		}
		node = node.WithExecutor(exec)
	}

	return node, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fieldVal.Pos()}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", false, nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", false, &CompileError{Field: field, Message: err.Error(), Pos: fieldVal.Pos()}
	}
	return s, true, nil
}

func optionalBool(v cue.Value, field string) (bool, bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return false, false, nil
	}
	b, err := fieldVal.Bool()
	if err != nil {
		return false, false, &CompileError{Field: field, Message: err.Error(), Pos: fieldVal.Pos()}
	}
	return b, true, nil
}

// optionalDuration parses Go duration strings ("250ms", "2s").
func optionalDuration(v cue.Value, field string) (time.Duration, bool, error) {
	s, ok, err := optionalString(v, field)
	if err != nil || !ok {
		return 0, ok, err
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, false, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid duration %q: %v", s, err),
			Pos:     v.LookupPath(cue.ParsePath(field)).Pos(),
		}
	}
	if d < 0 {
		return 0, false, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("duration %q is negative", s),
			Pos:     v.LookupPath(cue.ParsePath(field)).Pos(),
		}
	}
	return d, true, nil
}
