package engine

import (
	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/me/schedq/pkg/model"
)

// queueKey orders the ready queue: priority descending, then admission
// sequence ascending. Reassigning a task's sequence number moves it to the
// back of its own priority group without disturbing other tiers.
type queueKey struct {
	priority int
	seq      uint64
}

func compareKeys(a, b any) int {
	ka, kb := a.(queueKey), b.(queueKey)
	switch {
	case ka.priority > kb.priority:
		return -1
	case ka.priority < kb.priority:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

// readyQueue holds pending and running tasks in "descending priority,
// round-robin within equal priority" order. It is not safe for concurrent
// use; the engine's mutex guards every call.
type readyQueue struct {
	tree    *redblacktree.Tree
	keys    map[string]queueKey // task id -> current tree key
	counts  map[int]int         // priority -> member count
	nextSeq uint64
}

func newReadyQueue() *readyQueue {
	return &readyQueue{
		tree:   redblacktree.NewWith(compareKeys),
		keys:   make(map[string]queueKey),
		counts: make(map[int]int),
	}
}

func (q *readyQueue) len() int { return q.tree.Size() }

func (q *readyQueue) contains(id string) bool {
	_, ok := q.keys[id]
	return ok
}

// push admits a task behind every queued task of the same priority, matching
// stable append-then-sort semantics. A task already queued under the same id
// is replaced.
func (q *readyQueue) push(t *model.Task) {
	if q.contains(t.ID) {
		q.remove(t.ID)
	}
	key := queueKey{priority: t.Priority, seq: q.nextSeq}
	q.nextSeq++
	q.tree.Put(key, t)
	q.keys[t.ID] = key
	q.counts[t.Priority]++
}

// head returns the highest-priority task without removing it, or nil when
// the queue is empty.
func (q *readyQueue) head() *model.Task {
	node := q.tree.Left()
	if node == nil {
		return nil
	}
	return node.Value.(*model.Task)
}

// remove deletes the task if present, reporting whether it was queued.
func (q *readyQueue) remove(id string) bool {
	key, ok := q.keys[id]
	if !ok {
		return false
	}
	q.tree.Remove(key)
	delete(q.keys, id)
	q.counts[key.priority]--
	if q.counts[key.priority] == 0 {
		delete(q.counts, key.priority)
	}
	return true
}

// rotate moves the task to the back of its own priority group when at least
// one other task shares its priority. A task alone in its tier stays put.
func (q *readyQueue) rotate(t *model.Task) {
	key, ok := q.keys[t.ID]
	if !ok {
		return
	}
	if q.counts[key.priority] < 2 {
		return
	}
	q.tree.Remove(key)
	next := queueKey{priority: key.priority, seq: q.nextSeq}
	q.nextSeq++
	q.tree.Put(next, t)
	q.keys[t.ID] = next
}

// requeue reorders a task after a priority change, treating it as a fresh
// arrival at its new priority.
func (q *readyQueue) requeue(t *model.Task) {
	if !q.remove(t.ID) {
		return
	}
	q.push(t)
}

// tasks returns the queued tasks in scheduling order.
func (q *readyQueue) tasks() []*model.Task {
	out := make([]*model.Task, 0, q.tree.Size())
	it := q.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*model.Task))
	}
	return out
}
