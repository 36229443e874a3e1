// Package condition implements a tree of boolean-valued conditions and the
// engine that evaluates them.
//
// Leaves wrap a predicate over a shared evaluation Context; composites
// combine an ordered list of children with AND/OR. Evaluation short-circuits
// as soon as a decisive result is known, optionally fanning out asynchronous
// children onto bounded worker pools, and records one Outcome per executed
// node into the context's append-only log, in true completion order.
//
// ARCHITECTURE:
//
// Fan-out with a single waiter:
// A composite walks its children in list order. Synchronous children run
// inline and block the evaluating goroutine; asynchronous children are
// dispatched to their executor without blocking. Once the walk finishes,
// completion callbacks on every pending handle feed a single channel and
// the composite's waiter consumes it: the first short-circuit value or
// error concludes the composite, cancelling the rest.
//
// Deadlock avoidance:
// Pool worker slots gate leaf work only. Composite orchestration dispatched
// asynchronously runs on a dedicated goroutine, so a bounded pool is never
// required to host waiter logic. Nested asynchronous composites sharing a
// single-worker pool therefore always make progress.
//
// Cancellation is best-effort and non-preemptive:
// Cancel prevents an uncompleted pending handle from being folded into a
// result. A task cancelled before it started resolves as Cancelled and logs
// a Cancelled outcome; a task already executing runs to completion and logs
// its natural outcome, which the concluded composite discards.
//
// Trees are immutable value objects once published: attribute "mutators"
// (WithAlias, WithAsync, ...) are copy-on-write and a single tree is safe
// to evaluate from any number of goroutines concurrently, each against its
// own Context.
package condition
