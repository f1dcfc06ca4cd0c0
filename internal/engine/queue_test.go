package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/schedq/pkg/model"
)

func mkTask(id string, priority int) *model.Task {
	return model.NewTask(id, "task-"+id, priority, time.Second)
}

func ids(tasks []*model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// assertOrdered checks the queue invariant: priority descending throughout.
func assertOrdered(t *testing.T, q *readyQueue) {
	t.Helper()
	tasks := q.tasks()
	for i := 1; i < len(tasks); i++ {
		assert.GreaterOrEqual(t, tasks[i-1].Priority, tasks[i].Priority,
			"queue out of order at index %d", i)
	}
}

func TestQueuePriorityDescending(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("low", 1))
	q.push(mkTask("high", 9))
	q.push(mkTask("mid", 5))

	assert.Equal(t, []string{"high", "mid", "low"}, ids(q.tasks()))
	assert.Equal(t, "high", q.head().ID)
	assertOrdered(t, q)
}

func TestQueueStableWithinPriority(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("a", 5))
	q.push(mkTask("b", 5))
	q.push(mkTask("c", 5))

	// Equal priorities keep insertion order.
	assert.Equal(t, []string{"a", "b", "c"}, ids(q.tasks()))
}

func TestQueueRotateWithinTier(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("a", 5))
	q.push(mkTask("b", 5))
	q.push(mkTask("c", 5))
	q.push(mkTask("z", 1))

	// The rotated head goes to the back of its own tier, not the whole queue.
	q.rotate(q.head())
	assert.Equal(t, []string{"b", "c", "a", "z"}, ids(q.tasks()))

	q.rotate(q.head())
	assert.Equal(t, []string{"c", "a", "b", "z"}, ids(q.tasks()))

	q.rotate(q.head())
	assert.Equal(t, []string{"a", "b", "c", "z"}, ids(q.tasks()))
	assertOrdered(t, q)
}

func TestQueueRotateAloneInTierIsNoop(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("solo", 7))
	q.push(mkTask("low", 2))

	q.rotate(q.head())
	assert.Equal(t, []string{"solo", "low"}, ids(q.tasks()))
}

func TestQueueRequeueActsAsFreshArrival(t *testing.T) {
	q := newReadyQueue()
	a := mkTask("a", 5)
	q.push(a)
	q.push(mkTask("b", 5))
	q.push(mkTask("c", 8))

	// Raising a's priority to 8 places it behind c, the last task at 8.
	a.Priority = 8
	q.requeue(a)
	assert.Equal(t, []string{"c", "a", "b"}, ids(q.tasks()))
	assertOrdered(t, q)

	// Requeueing at an unchanged priority still rotates to the tier back.
	q.requeue(q.head()) // c, still priority 8
	assert.Equal(t, []string{"a", "c", "b"}, ids(q.tasks()))
}

func TestQueueRemove(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("a", 5))
	q.push(mkTask("b", 3))

	require.True(t, q.remove("a"))
	assert.False(t, q.remove("a"), "second remove of same id")
	assert.False(t, q.remove("missing"))
	assert.Equal(t, 1, q.len())
	assert.Equal(t, "b", q.head().ID)
}

func TestQueuePushReplacesDuplicateID(t *testing.T) {
	q := newReadyQueue()
	q.push(mkTask("a", 5))
	q.push(mkTask("a", 9))

	assert.Equal(t, 1, q.len())
	assert.Equal(t, 9, q.head().Priority)
}

func TestQueueEmpty(t *testing.T) {
	q := newReadyQueue()
	assert.Nil(t, q.head())
	assert.Zero(t, q.len())
	assert.False(t, q.contains("x"))
}

func TestQueueManyTiers(t *testing.T) {
	q := newReadyQueue()
	for i := 0; i < 30; i++ {
		q.push(mkTask(fmt.Sprintf("t%02d", i), 1+i%10))
	}
	assert.Equal(t, 30, q.len())
	assertOrdered(t, q)
	assert.Equal(t, 10, q.head().Priority)
}
