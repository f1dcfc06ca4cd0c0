package model

// SchedulerStats is the on-demand fleet view derived from the task table and
// the completed list. Averages cover completed tasks only.
type SchedulerStats struct {
	TotalTasks     int `json:"total_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	RunningTasks   int `json:"running_tasks"`
	CompletedTasks int `json:"completed_tasks"`

	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`

	SchedulerUptime float64 `json:"scheduler_uptime"`
	Idle            bool    `json:"idle"`
}

// SliceView is one entry of the execution audit log: a single time slice
// granted to a task, with engine-relative start and end in seconds.
type SliceView struct {
	TaskID    string  `json:"task_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}
