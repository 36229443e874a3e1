package condition

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_EnqueueDequeue(t *testing.T) {
	q := newTaskQueue()

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, q.Enqueue(func(string) { got = append(got, i) }))
	}
	assert.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		fn, ok := q.Dequeue()
		require.True(t, ok)
		fn("")
	}
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Zero(t, q.Len())
}

func TestTaskQueue_CloseDrainsThenStops(t *testing.T) {
	q := newTaskQueue()
	require.True(t, q.Enqueue(func(string) {}))
	q.Close()

	// The queued task is still handed out after Close.
	_, ok := q.Dequeue()
	assert.True(t, ok)

	// Then the queue reports exhaustion.
	_, ok = q.Dequeue()
	assert.False(t, ok)

	assert.False(t, q.Enqueue(func(string) {}))
}

func TestTaskQueue_WakesBlockedConsumers(t *testing.T) {
	q := newTaskQueue()

	// Several consumers block on an empty queue; every enqueued task must
	// be picked up even though each Signal wakes only one of them.
	const consumers = 4
	var wg sync.WaitGroup
	ran := make(chan struct{}, consumers)
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				fn, ok := q.Dequeue()
				if !ok {
					return
				}
				fn("")
			}
		}()
	}

	for i := 0; i < consumers; i++ {
		require.True(t, q.Enqueue(func(string) { ran <- struct{}{} }))
	}
	for i := 0; i < consumers; i++ {
		<-ran
	}

	q.Close()
	wg.Wait()
}
