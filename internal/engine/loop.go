package engine

import (
	"fmt"
	"time"

	"github.com/me/schedq/pkg/model"
)

// Start resets the engine epoch and launches the execution loop in a
// background goroutine. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.epoch = e.clock.Now()
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.run()
	e.logger.Info("scheduler started", "quantum", e.quantum)
}

// Stop signals the loop to exit and waits up to the configured timeout for
// the current iteration, including any in-flight slice, to finish. A missed
// join is surfaced as an error, never a crash. Stopping a stopped engine is
// a no-op.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	done := e.done
	e.cond.Broadcast()
	e.mu.Unlock()

	select {
	case <-done:
		e.logger.Info("scheduler stopped")
		return nil
	case <-time.After(e.stopTimeout):
		return fmt.Errorf("scheduler loop did not stop within %s", e.stopTimeout)
	}
}

// Running reports whether the execution loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) run() {
	defer close(e.done)
	e.logger.Info("scheduler loop started")
	for {
		t := e.next()
		if t == nil {
			return
		}
		e.runSlice(t)
	}
}

// next blocks until a task is ready or the engine is stopped, returning nil
// on stop. Add signals the condition variable, so an empty queue costs no
// wake-ups; the idle transition is logged once per empty period.
func (e *Engine) next() *model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.running && e.ready.len() == 0 {
		if !e.idle {
			e.idle = true
			e.logger.Info("scheduler idle, waiting for tasks")
		}
		e.cond.Wait()
	}
	if !e.running {
		return nil
	}
	return e.selectLocked()
}

// selectLocked takes the queue head, rotates it to the back of its priority
// tier when it is not alone there, and marks it current. Caller holds the
// lock.
func (e *Engine) selectLocked() *model.Task {
	t := e.ready.head()
	e.idle = false
	e.ready.rotate(t)
	e.current = t
	return t
}

// Tick runs a single select/execute/finalize iteration synchronously and
// reports whether a slice was executed. With a virtual clock this makes
// scheduling scenarios fully deterministic; the background loop is the
// production driver.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	if e.ready.len() == 0 {
		e.idle = true
		e.mu.Unlock()
		return false
	}
	t := e.selectLocked()
	e.mu.Unlock()

	e.runSlice(t)
	return true
}

// runSlice executes one time slice for t. Only the simulated-work sleep runs
// outside the lock; every task field write happens in a short lock hold, so
// readers always see a consistent snapshot even though a concurrent update
// or delete can still land mid-slice. finalizeLocked tolerates that by
// re-checking membership before touching either list.
func (e *Engine) runSlice(t *model.Task) {
	e.mu.Lock()
	if t.Status == model.StatusPending {
		t.Status = model.StatusRunning
	}
	if t.ResponseTime < 0 {
		t.ResponseTime = e.elapsed() - t.ArrivalTime
	}

	start := e.elapsed()
	t.LastExecutionTime = start

	actual := t.RemainingTime
	if e.quantum < actual {
		actual = e.quantum
	}
	e.logger.Info("executing slice", "task", t.String(), "slice", actual)
	e.mu.Unlock()

	// Simulated work: elapsed time advances in lock-step with simulated
	// progress. Sleep ignores a non-positive duration, which covers the
	// negative-remaining edge after an out-of-range burst update.
	e.clock.Sleep(actual)

	rec := SliceRecord{TaskID: t.ID, Start: start, End: start + actual}

	e.mu.Lock()
	t.RemainingTime -= actual
	if t.BurstTime > 0 {
		consumed := t.BurstTime - t.RemainingTime
		p := int(consumed * 100 / t.BurstTime)
		if p > 100 {
			p = 100
		}
		if p < 0 {
			p = 0
		}
		t.Progress = p
	}
	e.sequence = append(e.sequence, rec)
	if t.RemainingTime <= 0 {
		e.finalizeLocked(t)
	}
	e.current = nil
	e.mu.Unlock()

	if e.trace != nil {
		e.trace(rec)
	}
}

// finalizeLocked stamps the write-once completion metrics and moves the task
// from the ready queue to the completed list. Caller holds the lock. A task
// deleted while its slice was in flight is left deleted: removal is
// membership-checked and the completed list only accepts tasks still present
// in the table.
func (e *Engine) finalizeLocked(t *model.Task) {
	now := e.elapsed()
	t.Status = model.StatusCompleted
	t.CompletionTime = now
	t.TurnaroundTime = now - t.ArrivalTime
	t.WaitingTime = t.TurnaroundTime - (t.BurstTime - t.RemainingTime)
	t.Progress = 100

	e.logger.Info("task completed", "task", t.String(), "turnaround", t.TurnaroundTime)

	e.ready.remove(t.ID)
	if _, tracked := e.tasks[t.ID]; tracked && !e.inCompleted(t.ID) {
		e.completed = append(e.completed, t)
	}
}
