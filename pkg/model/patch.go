package model

import "time"

// TaskPatch is a partial task update. Nil fields are left untouched.
//
// Update rules (enforced by the engine, not here): completed tasks reject the
// whole patch; BurstTime applies only while the task is pending, preserving
// any already-elapsed deficit in RemainingTime.
type TaskPatch struct {
	Name        *string
	Description *string
	Priority    *int
	BurstTime   *time.Duration
}

// Empty returns true when no field is set.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Priority == nil && p.BurstTime == nil
}
