package condition

import "time"

// OutcomeKind tags the terminal state of a single node evaluation.
type OutcomeKind int

const (
	// OutcomeCompleted means the node resolved to a boolean.
	OutcomeCompleted OutcomeKind = iota + 1
	// OutcomeFailed means a predicate or a child raised an error.
	OutcomeFailed
	// OutcomeCancelled means the node was cancelled before it started.
	OutcomeCancelled
	// OutcomeTimedOut means the node's timeout elapsed before resolution.
	OutcomeTimedOut
)

// String returns the lower-case name used in logs and traces.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Outcome records the terminal state of one node for one evaluation.
//
// Exactly one Outcome is appended to the context log per node per Matches
// invocation that actually runs. A node skipped by short-circuiting
// produces none.
type Outcome struct {
	// Kind tags the variant. Matched is meaningful only for
	// OutcomeCompleted; Err carries the cause for every other kind.
	Kind    OutcomeKind
	Matched bool
	Err     error

	// NodeID is the stable identity of the condition node (UUIDv7,
	// preserved across attribute copies). Alias is its display name.
	NodeID string
	Alias  string

	// Async reports whether the node carried the async attribute.
	// Unit identifies the executing goroutine: "caller" for inline work,
	// "<pool>/<n>" for pool workers, "<pool>/waiter" for detached
	// composite orchestration.
	Async bool
	Unit  string

	// Delay and Timeout echo the node's attributes at evaluation time.
	Delay   time.Duration
	Timeout time.Duration

	// Start and End bound the evaluation in wall-clock time.
	Start time.Time
	End   time.Time

	// Seq is the monotonic log sequence assigned on append. Entries are
	// ordered by completion, not by declaration, so Seq is the only
	// race-free ordering key.
	Seq int64
}

// Duration returns the wall-clock time the evaluation took.
func (o Outcome) Duration() time.Duration { return o.End.Sub(o.Start) }
