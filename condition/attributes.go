package condition

import (
	"time"

	"github.com/google/uuid"
)

// Attributes holds the evaluation modifiers of a single node.
//
// Attributes are immutable: the With* methods on Node yield a new node
// sharing the same predicate/children and identity with one field changed.
// A zero Timeout means "no timeout": the node runs inline with no wrapper.
type Attributes struct {
	// Alias is the display name used in outcomes and error messages.
	// Empty means a name derived from the node shape ("and", "or",
	// "not(...)", "condition").
	Alias string

	// Async marks the node for dispatch on an executor instead of inline
	// evaluation when it appears as a composite child.
	Async bool

	// Executor runs the node's work when Async is set. Nil selects the
	// process-wide default pool.
	Executor Executor

	// Delay postpones the node's work. For async nodes the sleep happens
	// on the executor, never on the caller. Must be shorter than a finite
	// Timeout; the pair is validated on every Matches call because either
	// side can be rebuilt independently.
	Delay time.Duration

	// Timeout bounds delay + work. Zero means unbounded.
	Timeout time.Duration

	// Cancellable lets a composite cancel still-pending siblings once a
	// decisive result is known.
	Cancellable bool
}

// IDGenerator produces node identifiers.
// Implemented by UUIDv7Generator (production) and condtest.FixedIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 node identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, making IDs
// sortable by construction time, which is helpful when reading traces.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

var nodeIDs IDGenerator = UUIDv7Generator{}

// SetIDGenerator replaces the source of node identifiers. Intended for
// deterministic tests; call it before building trees, not concurrently
// with construction.
func SetIDGenerator(g IDGenerator) {
	if g == nil {
		g = UUIDv7Generator{}
	}
	nodeIDs = g
}

func newNodeID() string { return nodeIDs.Generate() }

// WithAlias returns a copy of the node with the given alias.
func (n *Node) WithAlias(alias string) *Node {
	c := n.clone()
	c.attrs.Alias = alias
	return c
}

// WithAsync returns a copy of the node with the async flag set.
func (n *Node) WithAsync(async bool) *Node {
	c := n.clone()
	c.attrs.Async = async
	return c
}

// WithExecutor returns a copy of the node bound to the given executor.
func (n *Node) WithExecutor(exec Executor) *Node {
	c := n.clone()
	c.attrs.Executor = exec
	return c
}

// WithDelay returns a copy of the node with the given pre-work delay.
func (n *Node) WithDelay(d time.Duration) *Node {
	c := n.clone()
	c.attrs.Delay = d
	return c
}

// WithTimeout returns a copy of the node with the given timeout.
// A zero timeout removes the bound.
func (n *Node) WithTimeout(d time.Duration) *Node {
	c := n.clone()
	c.attrs.Timeout = d
	return c
}

// WithCancellable returns a copy of the node with the cancellable flag set.
// The flag propagates to every descendant composite in the same call,
// passing through negations; leaves are left untouched.
func (n *Node) WithCancellable(cancellable bool) *Node {
	c := n.clone()
	c.attrs.Cancellable = cancellable
	if c.kind == kindLeaf {
		return c
	}
	children := make([]*Node, len(c.children))
	for i, ch := range c.children {
		if ch.kind == kindLeaf {
			children[i] = ch
		} else {
			children[i] = ch.WithCancellable(cancellable)
		}
	}
	c.children = children
	return c
}
