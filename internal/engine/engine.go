// Package engine implements a priority-aware, time-sliced round-robin
// scheduler for simulated units of work on a single virtual processor.
//
// One background loop pulls the head of the ready queue, executes a slice by
// sleeping on the injected clock, and either requeues the task or moves it to
// the completed list. All engine state, task fields included, is guarded by
// one coarse mutex held in short critical sections; only the simulated-work
// sleep runs outside the lock, so a concurrent update or delete can land
// mid-slice. The engine re-checks membership before every list removal
// instead of trusting earlier reads.
package engine

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/me/schedq/pkg/model"
)

// Config holds engine configuration.
type Config struct {
	// Quantum is the maximum simulated time granted to a task per slice.
	Quantum time.Duration

	// StopTimeout bounds how long Stop waits for the loop to drain,
	// including any in-flight slice.
	StopTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Quantum:     2 * time.Second,
		StopTimeout: 5 * time.Second,
	}
}

// SliceRecord is one executed slice in the audit log, with engine-relative
// start and end instants.
type SliceRecord struct {
	TaskID string
	Start  time.Duration
	End    time.Duration
}

// View returns the wire representation of the record.
func (r SliceRecord) View() model.SliceView {
	return model.SliceView{
		TaskID:    r.TaskID,
		StartTime: r.Start.Seconds(),
		EndTime:   r.End.Seconds(),
	}
}

// TraceFunc observes each executed slice, called outside the engine lock.
type TraceFunc func(SliceRecord)

// Engine owns the task table, the ready queue, the completed list, and the
// background execution loop. Create one per process (or per test) and pass
// it by handle; there is no package-level instance.
type Engine struct {
	mu   sync.Mutex
	cond *sync.Cond

	clock       Clock
	logger      *slog.Logger
	quantum     time.Duration
	stopTimeout time.Duration
	trace       TraceFunc

	tasks     map[string]*model.Task
	ready     *readyQueue
	completed []*model.Task
	sequence  []SliceRecord

	idle    bool
	current *model.Task

	epoch   time.Time
	running bool
	done    chan struct{}
}

// Option configures optional Engine dependencies.
type Option func(*Engine)

// WithClock injects a time source. Defaults to the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTrace registers a per-slice observer.
func WithTrace(fn TraceFunc) Option {
	return func(e *Engine) { e.trace = fn }
}

// New creates a stopped engine. Call Start to launch the execution loop.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.Quantum <= 0 {
		cfg.Quantum = def.Quantum
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = def.StopTimeout
	}

	e := &Engine{
		clock:       NewWallClock(),
		logger:      logger.With("component", "engine"),
		quantum:     cfg.Quantum,
		stopTimeout: cfg.StopTimeout,
		tasks:       make(map[string]*model.Task),
		ready:       newReadyQueue(),
		idle:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cond = sync.NewCond(&e.mu)
	e.epoch = e.clock.Now()
	return e
}

// elapsed returns time since the engine epoch.
func (e *Engine) elapsed() time.Duration {
	return e.clock.Now().Sub(e.epoch)
}

// Add admits a task: stamps its arrival time, inserts it into the task table
// and the ready queue, and wakes the execution loop. Returns the stored
// task's snapshot.
func (e *Engine) Add(t *model.Task) model.TaskView {
	e.mu.Lock()
	defer e.mu.Unlock()

	t.ArrivalTime = e.elapsed()
	e.tasks[t.ID] = t
	e.ready.push(t)
	e.idle = false
	e.cond.Signal()

	e.logger.Info("task added", "task", t.String())
	return t.Snapshot()
}

// Get returns the task snapshot, or ok=false for an unknown id.
func (e *Engine) Get(id string) (model.TaskView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[id]
	if !ok {
		return model.TaskView{}, false
	}
	return t.Snapshot(), true
}

// Update applies a partial update and returns the resulting snapshot, or
// ok=false for an unknown id. A completed task silently rejects the whole
// patch. A priority change reorders the task as a fresh arrival at its new
// priority. A burst-time change applies only while the task is still pending
// and preserves any already-consumed deficit in the remaining time, which
// can drive it negative; the loop then treats the task as already complete.
func (e *Engine) Update(id string, patch model.TaskPatch) (model.TaskView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[id]
	if !ok {
		return model.TaskView{}, false
	}

	if t.Status != model.StatusCompleted {
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
			if e.ready.contains(t.ID) {
				e.ready.requeue(t)
			}
		}
		if patch.BurstTime != nil && t.Status == model.StatusPending {
			oldBurst := t.BurstTime
			t.BurstTime = *patch.BurstTime
			t.RemainingTime = t.RemainingTime - oldBurst + t.BurstTime
		}
	}

	e.logger.Info("task updated", "task", t.String())
	return t.Snapshot(), true
}

// Delete removes a task from the table and from whichever of the ready queue
// or completed list currently holds it. Returns false for an unknown id, so
// deleting twice yields true then false.
func (e *Engine) Delete(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tasks[id]
	if !ok {
		return false
	}

	if t.Status == model.StatusCompleted {
		e.removeCompleted(id)
	} else {
		e.ready.remove(id)
	}
	delete(e.tasks, id)

	e.logger.Info("task deleted", "task_id", id)
	return true
}

// List returns a best-effort snapshot of every task. Ids are captured first,
// then resolved one at a time under short lock holds; a task deleted in
// between is logged and skipped rather than failing the whole listing.
func (e *Engine) List() []model.TaskView {
	e.mu.Lock()
	ids := make([]string, 0, len(e.tasks))
	for id := range e.tasks {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	sort.Strings(ids) // map order is random; keep listings stable

	views := make([]model.TaskView, 0, len(ids))
	for _, id := range ids {
		e.mu.Lock()
		t, ok := e.tasks[id]
		if !ok {
			e.mu.Unlock()
			e.logger.Warn("task vanished during listing", "task_id", id)
			continue
		}
		views = append(views, t.Snapshot())
		e.mu.Unlock()
	}
	return views
}

// removeCompleted deletes the task from the completed list if present.
// Caller holds the lock.
func (e *Engine) removeCompleted(id string) bool {
	for i, t := range e.completed {
		if t.ID == id {
			e.completed = append(e.completed[:i], e.completed[i+1:]...)
			return true
		}
	}
	return false
}

// inCompleted reports completed-list membership. Caller holds the lock.
func (e *Engine) inCompleted(id string) bool {
	for _, t := range e.completed {
		if t.ID == id {
			return true
		}
	}
	return false
}
