package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/schedq/internal/validate"
	"github.com/me/schedq/pkg/model"
)

type createTaskRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	BurstTime   float64 `json:"burst_time"` // seconds
}

type updateTaskRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Priority    *int     `json:"priority"`
	BurstTime   *float64 `json:"burst_time"` // seconds
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// newTask mints a task id and builds the entity from a validated request.
// Id generation lives here, outside the engine.
func newTask(req createTaskRequest) *model.Task {
	return model.NewTask(
		uuid.New().String(),
		req.Name,
		req.Priority,
		secondsToDuration(req.BurstTime),
		model.WithDescription(req.Description),
	)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	if errs := validate.CreateTask(req.Name, req.Description, req.Priority, req.BurstTime); len(errs) > 0 {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid task", errs...))
		return
	}

	view := s.engine.Add(newTask(req))
	s.logger.Info("task created", "task_id", view.TaskID, "name", view.Name)
	respondCreated(w, reqID, view)
}

func (s *Server) handleCreateTaskBatch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var reqs []createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	// All-or-nothing: validate every entry before admitting any.
	var errs []model.FieldError
	for i, req := range reqs {
		for _, fe := range validate.CreateTask(req.Name, req.Description, req.Priority, req.BurstTime) {
			fe.Field = fmt.Sprintf("[%d].%s", i, fe.Field)
			errs = append(errs, fe)
		}
	}
	if len(errs) > 0 {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid batch", errs...))
		return
	}

	views := make([]model.TaskView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, s.engine.Add(newTask(req)))
	}
	s.logger.Info("task batch created", "count", len(views))
	respondCreated(w, reqID, views)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var (
		statusFilter   = r.URL.Query().Get("status")
		priorityFilter *int
	)
	if statusFilter != "" {
		if errs := validate.TaskStatus(statusFilter); len(errs) > 0 {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("invalid filter", errs...))
			return
		}
	}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("invalid filter",
					model.FieldError{Field: "priority", Message: "priority must be an integer"}))
			return
		}
		priorityFilter = &p
	}

	views := s.engine.List()
	filtered := make([]model.TaskView, 0, len(views))
	for _, v := range views {
		if statusFilter != "" && string(v.Status) != statusFilter {
			continue
		}
		if priorityFilter != nil && v.Priority != *priorityFilter {
			continue
		}
		filtered = append(filtered, v)
	}

	respondOK(w, reqID, filtered)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	view, ok := s.engine.Get(id)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task", id))
		return
	}
	respondOK(w, reqID, view)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	if errs := validate.UpdateTask(req.Name, req.Description, req.Priority, req.BurstTime); len(errs) > 0 {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid update", errs...))
		return
	}

	patch := model.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.BurstTime != nil {
		d := secondsToDuration(*req.BurstTime)
		patch.BurstTime = &d
	}

	view, ok := s.engine.Update(id, patch)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task", id))
		return
	}
	respondOK(w, reqID, view)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !s.engine.Delete(id) {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
