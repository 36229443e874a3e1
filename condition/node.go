package condition

import (
	"fmt"
	"time"
)

// Predicate is the boolean test a leaf wraps. It may read the context's
// variables; it must not retain the context past its return.
type Predicate func(*Context) (bool, error)

// Operator selects how a composite folds its children.
type Operator int

const (
	// OpAnd is true only when every child is true.
	OpAnd Operator = iota + 1
	// OpOr is true when any child is true.
	OpOr
)

// String returns "and" or "or".
func (op Operator) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "unknown"
	}
}

// shortCircuit returns the boolean that alone decides a composite under
// this operator: false for AND, true for OR.
func (op Operator) shortCircuit() bool { return op == OpOr }

// fold combines an accumulated value with the next child value.
func (op Operator) fold(acc, next bool) bool {
	if op == OpAnd {
		return acc && next
	}
	return acc || next
}

type nodeKind int

const (
	kindLeaf nodeKind = iota + 1
	kindComposite
	kindNot
)

// Node is a condition tree node: a Leaf wrapping a predicate, a Composite
// combining ordered children with AND/OR, or a negation wrapping a single
// inner node. The variant is a tag, not a subclass: composite evaluation is
// a genuinely different algorithm from a leaf's and is implemented as one.
//
// Published nodes are immutable and safe to evaluate concurrently from any
// number of goroutines, each against its own Context. The one exception is
// construction time: the And/Or combinators flatten into a same-operator
// composite by appending to its child list, so a tree is "published" only
// once its combinator chain is done.
type Node struct {
	id       string
	kind     nodeKind
	pred     Predicate // kindLeaf only
	op       Operator  // kindComposite only
	children []*Node   // kindComposite: >=1, kindNot: exactly 1
	attrs    Attributes
}

// NewLeaf creates a leaf condition wrapping pred.
// Panics on a nil predicate: that is a programming error, not a runtime
// condition.
func NewLeaf(pred Predicate) *Node {
	if pred == nil {
		panic("condition: nil predicate")
	}
	return &Node{id: newNodeID(), kind: kindLeaf, pred: pred}
}

// ID returns the node's stable identity. Attribute copies share it.
func (n *Node) ID() string { return n.id }

// Alias returns the configured alias, or a name derived from the node
// shape: "condition" for leaves, the operator name for composites, and
// "not(<inner>)" for negations (the inversion shows up in the alias too).
func (n *Node) Alias() string {
	if n.attrs.Alias != "" {
		return n.attrs.Alias
	}
	switch n.kind {
	case kindNot:
		return "not(" + n.children[0].Alias() + ")"
	case kindComposite:
		return n.op.String()
	default:
		return "condition"
	}
}

// Attributes returns the node's attributes.
func (n *Node) Attributes() Attributes { return n.attrs }

// IsComposite reports whether the node combines children with AND/OR.
func (n *Node) IsComposite() bool { return n.kind == kindComposite }

// Operator returns the composite operator; zero for non-composites.
func (n *Node) Operator() Operator {
	if n.kind != kindComposite {
		return 0
	}
	return n.op
}

// Children returns a copy of the child list (composite children or the
// single negated inner node).
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// clone copies the node header. Predicate, children, and identity are
// shared; With* callers adjust exactly one attribute on the copy.
func (n *Node) clone() *Node {
	c := *n
	return &c
}

// executor returns the node's executor, falling back to the shared default
// pool.
func (n *Node) executor() Executor {
	if n.attrs.Executor != nil {
		return n.attrs.Executor
	}
	return DefaultPool()
}

// checkConfig validates the delay/timeout pair. Checked on every Matches
// call, not at construction, because the attributes can be rebuilt
// independently of each other.
func (n *Node) checkConfig() error {
	if n.attrs.Delay < 0 {
		return &ConfigError{Alias: n.Alias(), Message: fmt.Sprintf("delay %s is negative", n.attrs.Delay)}
	}
	if n.attrs.Timeout > 0 && n.attrs.Delay >= n.attrs.Timeout {
		return &ConfigError{
			Alias:   n.Alias(),
			Message: fmt.Sprintf("delay %s must be shorter than timeout %s", n.attrs.Delay, n.attrs.Timeout),
		}
	}
	return nil
}

// unitCaller labels work executing inline on the caller's goroutine.
const unitCaller = "caller"

// Matches evaluates the tree against ctx, blocking until it resolves.
// It returns the boolean result or exactly one of ConfigError,
// PredicateError, TimeoutError, CancelledError.
//
// Every invocation that actually runs appends exactly one Outcome for this
// node to ctx's log before returning, plus one per executed descendant.
func (n *Node) Matches(ctx *Context) (bool, error) {
	return n.match(ctx, unitCaller)
}

// MatchesAsync dispatches the evaluation without blocking and returns its
// handle. A nil exec selects the node's own executor (or the default pool).
func (n *Node) MatchesAsync(ctx *Context, exec Executor) *Handle {
	if exec == nil {
		exec = n.executor()
	}
	return n.dispatchOn(ctx, exec)
}

// match runs the per-node orchestration: config check, delay, work, and
// the timeout wrapper, recording exactly one outcome.
func (n *Node) match(ctx *Context, unit string) (bool, error) {
	if err := n.checkConfig(); err != nil {
		return false, err
	}
	inv := invocation{node: n, ctx: ctx, start: time.Now()}
	if n.attrs.Timeout <= 0 {
		return inv.run(unit)
	}
	return inv.runBounded(unit)
}

// dispatch schedules an asynchronous evaluation on the node's executor.
func (n *Node) dispatch(ctx *Context) *Handle {
	return n.dispatchOn(ctx, n.executor())
}

// dispatchOn schedules an asynchronous evaluation on exec.
//
// Leaf work occupies a pool slot. Composites and negations orchestrate
// child evaluations and wait on them, so they run on a dedicated goroutine
// labeled "<pool>/waiter": a bounded pool must never host waiter logic, or
// nested composites sharing a single worker could deadlock.
func (n *Node) dispatchOn(ctx *Context, exec Executor) *Handle {
	h := newHandle(n)
	if n.kind == kindLeaf {
		accepted := exec.Submit(func(unit string) {
			h.runTask(ctx, unit)
		})
		if !accepted {
			h.reject(ctx, exec.Name())
		}
		return h
	}
	go h.runTask(ctx, exec.Name()+"/waiter")
	return h
}

// eval produces the node's raw boolean: the predicate for a leaf, the
// inverted inner result for a negation, the fan-out algorithm for a
// composite.
func (n *Node) eval(ctx *Context, unit string) (bool, error) {
	switch n.kind {
	case kindLeaf:
		matched, err := n.pred(ctx)
		if err != nil {
			return false, &PredicateError{Alias: n.Alias(), Cause: err}
		}
		return matched, nil
	case kindNot:
		matched, err := n.children[0].match(ctx, unit)
		if err != nil {
			return false, err
		}
		return !matched, nil
	case kindComposite:
		return n.evalComposite(ctx, unit)
	default:
		panic(fmt.Sprintf("condition: unknown node kind %d", n.kind))
	}
}

// invocation is the per-Matches state of one node: it owns the start
// timestamp and guarantees the single outcome append.
type invocation struct {
	node  *Node
	ctx   *Context
	start time.Time
}

// run executes delay + work on the current goroutine.
func (inv invocation) run(unit string) (bool, error) {
	n := inv.node
	if n.attrs.Delay > 0 {
		time.Sleep(n.attrs.Delay)
	}
	matched, err := n.eval(inv.ctx, unit)
	inv.record(unit, matched, err)
	return matched, err
}

// runBounded races delay + work against the node's timeout. The work runs
// on its own goroutine; on expiry the node resolves as TimedOut and the
// still-running work's eventual result is discarded (the buffered channel
// keeps the worker from leaking).
func (inv invocation) runBounded(unit string) (bool, error) {
	n := inv.node

	type result struct {
		matched bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		if n.attrs.Delay > 0 {
			time.Sleep(n.attrs.Delay)
		}
		matched, err := n.eval(inv.ctx, unit)
		done <- result{matched: matched, err: err}
	}()

	timer := time.NewTimer(n.attrs.Timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		inv.record(unit, r.matched, r.err)
		return r.matched, r.err
	case <-timer.C:
		err := &TimeoutError{Alias: n.Alias(), Timeout: n.attrs.Timeout}
		inv.record(unit, false, err)
		return false, err
	}
}

// record appends the node's single outcome for this invocation.
func (inv invocation) record(unit string, matched bool, err error) {
	n := inv.node
	inv.ctx.log.append(Outcome{
		Kind:    outcomeKindFor(err),
		Matched: err == nil && matched,
		Err:     err,
		NodeID:  n.id,
		Alias:   n.Alias(),
		Async:   n.attrs.Async,
		Unit:    unit,
		Delay:   n.attrs.Delay,
		Timeout: n.attrs.Timeout,
		Start:   inv.start,
		End:     time.Now(),
	})
}

// outcomeKindFor maps an evaluation error to the outcome variant. The kind
// a composite records mirrors the decisive child error it re-raises.
func outcomeKindFor(err error) OutcomeKind {
	switch {
	case err == nil:
		return OutcomeCompleted
	case IsTimeout(err):
		return OutcomeTimedOut
	case IsCancelled(err):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}
