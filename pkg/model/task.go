package model

import (
	"fmt"
	"time"
)

// ResponseUnset is the sentinel value of Task.ResponseTime before a task has
// received its first slice. Snapshots report it as -1 seconds.
const ResponseUnset = time.Duration(-1)

// Task is one unit of schedulable work. The scheduling engine owns all field
// mutation after construction; everything else consumes read-only snapshots.
type Task struct {
	ID          string
	Name        string
	Description string
	Priority    int

	// BurstTime is the total simulated execution time the task requires.
	BurstTime time.Duration

	// RemainingTime starts at BurstTime and decreases as slices execute.
	// A burst-time update on a pending task can drive it negative; the
	// engine treats a non-positive value as already complete.
	RemainingTime time.Duration

	Status   Status
	Progress int // 0-100, derived from BurstTime and RemainingTime

	CreatedAt time.Time

	// Engine-relative timestamps, measured from the engine epoch.
	ArrivalTime       time.Duration
	LastExecutionTime time.Duration
	CompletionTime    time.Duration

	// Write-once metrics, set by the engine on completion (ResponseTime on
	// the first slice).
	ResponseTime   time.Duration // ResponseUnset until the first slice
	WaitingTime    time.Duration
	TurnaroundTime time.Duration
}

// TaskOption configures optional Task construction parameters.
type TaskOption func(*Task)

// WithDescription sets the task description.
func WithDescription(desc string) TaskOption {
	return func(t *Task) { t.Description = desc }
}

// WithCreatedAt overrides the creation timestamp (defaults to now).
func WithCreatedAt(ts time.Time) TaskOption {
	return func(t *Task) { t.CreatedAt = ts }
}

// NewTask creates a pending task with the given identity and scheduling
// parameters. The id is assigned by the caller and immutable afterwards.
func NewTask(id, name string, priority int, burst time.Duration, opts ...TaskOption) *Task {
	t := &Task{
		ID:            id,
		Name:          name,
		Priority:      priority,
		BurstTime:     burst,
		RemainingTime: burst,
		Status:        StatusPending,
		CreatedAt:     time.Now(),
		ResponseTime:  ResponseUnset,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Snapshot returns the serializable view of the task for external consumers.
func (t *Task) Snapshot() TaskView {
	response := -1.0
	if t.ResponseTime >= 0 {
		response = t.ResponseTime.Seconds()
	}
	completion := 0.0
	if t.Status == StatusCompleted {
		completion = t.CompletionTime.Seconds()
	}
	return TaskView{
		TaskID:         t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Priority:       t.Priority,
		BurstTime:      t.BurstTime.Seconds(),
		CreatedAt:      float64(t.CreatedAt.UnixNano()) / float64(time.Second),
		ArrivalTime:    t.ArrivalTime.Seconds(),
		RemainingTime:  t.RemainingTime.Seconds(),
		WaitingTime:    t.WaitingTime.Seconds(),
		TurnaroundTime: t.TurnaroundTime.Seconds(),
		CompletionTime: completion,
		ResponseTime:   response,
		Status:         t.Status,
		Progress:       t.Progress,
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("Task %s: %s (priority=%d remaining=%.2fs status=%s)",
		t.ID, t.Name, t.Priority, t.RemainingTime.Seconds(), t.Status)
}

// TaskView is the read-only wire representation of a Task. Durations are
// float seconds; completion_time is 0 and response_time is -1 while unset.
type TaskView struct {
	TaskID         string  `json:"task_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Priority       int     `json:"priority"`
	BurstTime      float64 `json:"burst_time"`
	CreatedAt      float64 `json:"created_at"`
	ArrivalTime    float64 `json:"arrival_time"`
	RemainingTime  float64 `json:"remaining_time"`
	WaitingTime    float64 `json:"waiting_time"`
	TurnaroundTime float64 `json:"turnaround_time"`
	CompletionTime float64 `json:"completion_time"`
	ResponseTime   float64 `json:"response_time"`
	Status         Status  `json:"status"`
	Progress       int     `json:"progress"`
}
