package condition_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-eval/verdict/condition"
	"github.com/verdict-eval/verdict/condition/condtest"
)

func TestComposite_ShortCircuitSkipsLaterChildren(t *testing.T) {
	counter := &condtest.Counter{}
	tree := condition.And(
		condition.NewLeaf(condtest.Const(false)).WithAlias("gate"),
		condition.NewLeaf(counter.Predicate(true)).WithAlias("skipped"),
	)

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Zero(t, counter.Count(), "children after the deciding one must not start")

	// The skipped child leaves no trace.
	log := ctx.Log()
	require.Len(t, log, 2)
	assert.Equal(t, "gate", log[0].Alias)
	assert.Equal(t, "and", log[1].Alias)
}

func TestComposite_ShortCircuitSuppressesLaterError(t *testing.T) {
	tree := condition.Or(
		condition.NewLeaf(condtest.Const(true)),
		condition.NewLeaf(condtest.Failing(errors.New("never raised"))),
	)

	matched, err := tree.Matches(condition.NewContext(nil))
	require.NoError(t, err, "an error in a never-started child must not surface")
	assert.True(t, matched)
}

func TestComposite_ChildErrorConcludesEvaluation(t *testing.T) {
	boom := errors.New("boom")
	counter := &condtest.Counter{}
	tree := condition.And(
		condition.NewLeaf(condtest.Const(true)).WithAlias("ok"),
		condition.NewLeaf(condtest.Failing(boom)).WithAlias("bad"),
	).And(condition.NewLeaf(counter.Predicate(true)).WithAlias("after"))

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	assert.False(t, matched)
	require.Error(t, err)
	assert.True(t, condition.IsPredicate(err))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, counter.Count())

	// ok completes, bad fails, and the composite mirrors the failure.
	log := ctx.Log()
	require.Len(t, log, 3)
	assert.Equal(t, condition.OutcomeCompleted, log[0].Kind)
	assert.Equal(t, condition.OutcomeFailed, log[1].Kind)
	assert.Equal(t, condition.OutcomeFailed, log[2].Kind)
	assert.Equal(t, "and", log[2].Alias)
}

func TestComposite_FullResolutionFoldsInOrder(t *testing.T) {
	// Method chaining flattens, so this is a three-child OR.
	tree := condition.Or(
		condition.NewLeaf(condtest.Const(false)).WithAlias("a"),
		condition.NewLeaf(condtest.Const(false)).WithAlias("b"),
	).Or(condition.NewLeaf(condtest.Const(false)).WithAlias("c"))

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	require.NoError(t, err)
	assert.False(t, matched)

	// No short-circuit: every child logs, then the composite.
	log := ctx.Log()
	require.Len(t, log, 4)
	assert.Equal(t, "or", log[3].Alias)
	assert.False(t, log[3].Matched)
}

func TestComposite_AsyncChildrenRunInParallel(t *testing.T) {
	pool := condition.NewPool("parallel", 2)
	defer pool.Close()

	tree := condition.And(
		condition.NewLeaf(condtest.Sleeping(120*time.Millisecond, true)).
			WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Sleeping(120*time.Millisecond, true)).
			WithAsync(true).WithExecutor(pool),
	)

	begin := time.Now()
	matched, err := tree.Matches(condition.NewContext(nil))
	elapsed := time.Since(begin)

	require.NoError(t, err)
	assert.True(t, matched)
	assert.GreaterOrEqual(t, elapsed, 120*time.Millisecond)
	assert.Less(t, elapsed, 230*time.Millisecond,
		"two async children on a two-worker pool must overlap")
}

func TestComposite_LogOrderedByCompletionNotDeclaration(t *testing.T) {
	pool := condition.NewPool("order", 2)
	defer pool.Close()

	tree := condition.And(
		condition.NewLeaf(condtest.Sleeping(90*time.Millisecond, true)).
			WithAlias("slow").WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Sleeping(10*time.Millisecond, true)).
			WithAlias("fast").WithAsync(true).WithExecutor(pool),
	)

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	require.NoError(t, err)
	assert.True(t, matched)

	log := ctx.Log()
	require.Len(t, log, 3)
	assert.Equal(t, "fast", log[0].Alias, "the faster child completes and logs first")
	assert.Equal(t, "slow", log[1].Alias)
	assert.Equal(t, "and", log[2].Alias)

	for i, o := range log {
		assert.Equal(t, int64(i+1), o.Seq)
	}
}

func TestComposite_AsyncRaceShortCircuits(t *testing.T) {
	pool := condition.NewPool("race", 2)
	defer pool.Close()

	tree := condition.Or(
		condition.NewLeaf(condtest.Sleeping(300*time.Millisecond, false)).
			WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Sleeping(20*time.Millisecond, true)).
			WithAsync(true).WithExecutor(pool),
	)

	begin := time.Now()
	matched, err := tree.Matches(condition.NewContext(nil))
	elapsed := time.Since(begin)

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Less(t, elapsed, 250*time.Millisecond,
		"the first decisive async result must conclude the composite")
}

func TestComposite_AsyncChildErrorSurfaces(t *testing.T) {
	pool := condition.NewPool("fail", 2)
	defer pool.Close()

	boom := errors.New("boom")
	tree := condition.And(
		condition.NewLeaf(condtest.Sleeping(300*time.Millisecond, true)).
			WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Failing(boom)).
			WithAsync(true).WithExecutor(pool),
	)

	begin := time.Now()
	_, err := tree.Matches(condition.NewContext(nil))
	elapsed := time.Since(begin)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestComposite_SyncShortCircuitDiscardsAsyncFailure(t *testing.T) {
	pool := condition.NewPool("discard", 1)
	defer pool.Close()

	tree := condition.And(
		condition.NewLeaf(condtest.Failing(errors.New("late failure"))).
			WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Const(false)).WithAlias("decider"),
	)

	matched, err := tree.Matches(condition.NewContext(nil))
	require.NoError(t, err, "a failure in an already-discarded sibling must not surface")
	assert.False(t, matched)
}

func TestComposite_CancelsPendingSiblings(t *testing.T) {
	pool := condition.NewPool("cancel", 1)
	defer pool.Close()

	// Occupy the single worker so the dispatched child stays queued.
	release := make(chan struct{})
	require.True(t, pool.Submit(func(string) { <-release }))

	counter := &condtest.Counter{}
	tree := condition.And(
		condition.NewLeaf(counter.Predicate(true)).
			WithAlias("queued").WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Const(false)).WithAlias("decider"),
	).WithCancellable(true)

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	require.NoError(t, err)
	assert.False(t, matched)

	// The queued child was cancelled before it started: when the worker
	// drains it, it logs a single Cancelled outcome and its predicate
	// never runs.
	close(release)
	assert.Eventually(t, func() bool {
		for _, o := range ctx.Log() {
			if o.Alias == "queued" {
				return o.Kind == condition.OutcomeCancelled
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, counter.Count())

	cancelled := 0
	for _, o := range ctx.Log() {
		if o.Alias == "queued" {
			cancelled++
			assert.True(t, condition.IsCancelled(o.Err))
		}
	}
	assert.Equal(t, 1, cancelled, "a cancelled dispatch logs exactly one outcome")
}

func TestComposite_NonCancellableSiblingsRunAnyway(t *testing.T) {
	pool := condition.NewPool("nocancel", 1)
	defer pool.Close()

	release := make(chan struct{})
	require.True(t, pool.Submit(func(string) { <-release }))

	counter := &condtest.Counter{}
	tree := condition.And(
		condition.NewLeaf(counter.Predicate(true)).
			WithAlias("queued").WithAsync(true).WithExecutor(pool),
		condition.NewLeaf(condtest.Const(false)).WithAlias("decider"),
	)

	ctx := condition.NewContext(nil)
	matched, err := tree.Matches(ctx)
	require.NoError(t, err)
	assert.False(t, matched)

	// Without the cancellable flag the queued child still runs once the
	// worker frees up, and logs its natural outcome.
	close(release)
	assert.Eventually(t, func() bool {
		return counter.Count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestComposite_DeepAsyncNestingDoesNotDeadlock(t *testing.T) {
	pool := condition.NewPool("deep", 1)
	defer pool.Close()

	// Twenty async leaves under nested async composites, all funneled
	// through a single worker. Composite orchestration must never occupy
	// the worker slot, or this starves.
	tree := condition.NewLeaf(condtest.Sleeping(time.Millisecond, true)).
		WithAsync(true).WithExecutor(pool)
	for i := 0; i < 19; i++ {
		leaf := condition.NewLeaf(condtest.Sleeping(time.Millisecond, true)).
			WithAsync(true).WithExecutor(pool)
		tree = condition.And(tree, leaf).WithAsync(true).WithExecutor(pool)
	}

	type result struct {
		matched bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		matched, err := tree.Matches(condition.NewContext(nil))
		done <- result{matched, err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.True(t, r.matched)
	case <-time.After(5 * time.Second):
		t.Fatal("nested async evaluation deadlocked on a single-worker pool")
	}
}
