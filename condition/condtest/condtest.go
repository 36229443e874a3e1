// Package condtest provides deterministic predicates and identity
// generators for testing condition trees.
package condtest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verdict-eval/verdict/condition"
)

// Const returns a predicate that always yields v.
func Const(v bool) condition.Predicate {
	return func(*condition.Context) (bool, error) {
		return v, nil
	}
}

// Failing returns a predicate that always fails with err.
func Failing(err error) condition.Predicate {
	return func(*condition.Context) (bool, error) {
		return false, err
	}
}

// Sleeping returns a predicate that sleeps for d and then yields v.
// The sleep stands in for slow work in timing and timeout tests.
func Sleeping(d time.Duration, v bool) condition.Predicate {
	return func(*condition.Context) (bool, error) {
		time.Sleep(d)
		return v, nil
	}
}

// Counter counts predicate invocations across goroutines.
//
// Thread-safety: all methods are safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Predicate returns a predicate yielding v that increments the counter on
// every invocation.
func (c *Counter) Predicate(v bool) condition.Predicate {
	return func(*condition.Context) (bool, error) {
		c.n.Add(1)
		return v, nil
	}
}

// Count returns the number of invocations so far.
func (c *Counter) Count() int64 { return c.n.Load() }

// Gate is a predicate that blocks until released. Tests use it to hold a
// pool worker busy while asserting on queued work.
type Gate struct {
	release   chan struct{}
	closeOnce sync.Once
	entered   chan struct{}
	enterOnce sync.Once
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
}

// Predicate returns a predicate that blocks until Release, then yields v.
func (g *Gate) Predicate(v bool) condition.Predicate {
	return func(*condition.Context) (bool, error) {
		g.enterOnce.Do(func() { close(g.entered) })
		<-g.release
		return v, nil
	}
}

// Entered returns a channel closed once the predicate has started.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Release unblocks the predicate. Safe to call more than once.
func (g *Gate) Release() {
	g.closeOnce.Do(func() { close(g.release) })
}

// FixedIDs generates predictable node identifiers ("node-1", "node-2", ...)
// for deterministic trace comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDs creates a generator with the given prefix.
// An empty prefix defaults to "node".
func NewFixedIDs(prefix string) *FixedIDs {
	if prefix == "" {
		prefix = "node"
	}
	return &FixedIDs{prefix: prefix}
}

// Generate implements condition.IDGenerator.
func (g *FixedIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
