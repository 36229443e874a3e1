package condition

import "sync"

// Context carries the inputs and the execution trail of one evaluation
// session.
//
// Variables are fixed at construction and read-only thereafter; they need
// no synchronization. The log is the single resource mutated concurrently:
// appends arrive from whichever goroutine resolves a node, and each append
// is stamped with a monotonic sequence number so completion order survives
// snapshotting and serialization.
//
// A Context is meant for one logical evaluation session. To re-run the same
// tree cleanly, Fork a fresh context sharing the variables.
type Context struct {
	vars map[string]any
	log  *outcomeLog
}

// NewContext creates an evaluation context over the given variables.
// The map is copied; later mutation of the argument has no effect.
func NewContext(vars map[string]any) *Context {
	copied := make(map[string]any, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Context{vars: copied, log: newOutcomeLog()}
}

// Variable returns the value bound to key, if any.
func (c *Context) Variable(key string) (any, bool) {
	v, ok := c.vars[key]
	return v, ok
}

// Log returns a snapshot of the execution log in append (completion) order.
// The snapshot is safe to read while evaluations of a different context are
// in flight; entries appended after the call are not included.
func (c *Context) Log() []Outcome {
	return c.log.snapshot()
}

// Fork returns a new context sharing this context's variables with an
// empty log.
func (c *Context) Fork() *Context {
	return &Context{vars: c.vars, log: newOutcomeLog()}
}

// outcomeLog is the append-only, concurrency-safe execution trail.
//
// Appends are serialized by a mutex; the sequence counter lives under the
// same lock so (append order == sequence order) holds without a second
// synchronization point.
type outcomeLog struct {
	mu      sync.Mutex
	seq     int64
	entries []Outcome
}

func newOutcomeLog() *outcomeLog {
	return &outcomeLog{entries: make([]Outcome, 0, 8)}
}

// append stamps o with the next sequence number and stores it.
func (l *outcomeLog) append(o Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	o.Seq = l.seq
	l.entries = append(l.entries, o)
}

// snapshot copies the current entries.
func (l *outcomeLog) snapshot() []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Outcome, len(l.entries))
	copy(out, l.entries)
	return out
}
