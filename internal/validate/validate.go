// Package validate holds the request range checks applied upstream of the
// scheduling engine. The engine itself performs no input validation.
package validate

import (
	"fmt"

	"github.com/me/schedq/pkg/model"
)

// Field limits for task creation and update.
const (
	NameMaxLen        = 100
	DescriptionMaxLen = 500
	PriorityMin       = 1
	PriorityMax       = 10
	BurstMaxSeconds   = 300 // five minutes of simulated work
)

// CreateTask validates the fields of a task creation request.
func CreateTask(name, description string, priority int, burstSeconds float64) []model.FieldError {
	var errs []model.FieldError
	errs = appendName(errs, name)
	errs = appendDescription(errs, description)
	errs = appendPriority(errs, priority)
	errs = appendBurst(errs, burstSeconds)
	return errs
}

// UpdateTask validates the present fields of a partial update. At least one
// field must be provided.
func UpdateTask(name, description *string, priority *int, burstSeconds *float64) []model.FieldError {
	if name == nil && description == nil && priority == nil && burstSeconds == nil {
		return []model.FieldError{{Message: "at least one field must be provided for update"}}
	}

	var errs []model.FieldError
	if name != nil {
		errs = appendName(errs, *name)
	}
	if description != nil {
		errs = appendDescription(errs, *description)
	}
	if priority != nil {
		errs = appendPriority(errs, *priority)
	}
	if burstSeconds != nil {
		errs = appendBurst(errs, *burstSeconds)
	}
	return errs
}

// TaskStatus validates a status filter value.
func TaskStatus(s string) []model.FieldError {
	if !model.Status(s).Valid() {
		return []model.FieldError{{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", s),
		}}
	}
	return nil
}

func appendName(errs []model.FieldError, name string) []model.FieldError {
	if len(name) == 0 {
		return append(errs, model.FieldError{Field: "name", Message: "name must not be empty"})
	}
	if len(name) > NameMaxLen {
		return append(errs, model.FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name exceeds %d characters", NameMaxLen),
		})
	}
	return errs
}

func appendDescription(errs []model.FieldError, desc string) []model.FieldError {
	if len(desc) > DescriptionMaxLen {
		return append(errs, model.FieldError{
			Field:   "description",
			Message: fmt.Sprintf("description exceeds %d characters", DescriptionMaxLen),
		})
	}
	return errs
}

func appendPriority(errs []model.FieldError, priority int) []model.FieldError {
	if priority < PriorityMin || priority > PriorityMax {
		return append(errs, model.FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("priority must be between %d and %d", PriorityMin, PriorityMax),
		})
	}
	return errs
}

func appendBurst(errs []model.FieldError, burst float64) []model.FieldError {
	if burst <= 0 || burst > BurstMaxSeconds {
		return append(errs, model.FieldError{
			Field:   "burst_time",
			Message: fmt.Sprintf("burst_time must be in (0, %d] seconds", BurstMaxSeconds),
		})
	}
	return errs
}
