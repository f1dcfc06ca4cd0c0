package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/me/schedq/internal/config"
	"github.com/me/schedq/internal/engine"
	"github.com/me/schedq/pkg/model"
)

// testServer wires a server to a stopped engine on a virtual clock, so tasks
// stay exactly where tests put them.
func testServer() *Server {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	eng := engine.New(engine.Config{Quantum: 2 * time.Second}, logger,
		engine.WithClock(engine.NewVirtualClock(time.Unix(1000, 0))))
	return New(config.Default(), eng, logger)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Error     *model.APIError `json:"error"`
}

func do(t *testing.T, srv *Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid JSON: %v\nbody: %s", method, path, err, w.Body.String())
		}
	}
	return w.Code, env
}

func createTask(t *testing.T, srv *Server, name string, priority int, burst float64) model.TaskView {
	t.Helper()
	code, env := do(t, srv, "POST", "/api/v1/tasks/", map[string]any{
		"name":       name,
		"priority":   priority,
		"burst_time": burst,
	})
	if code != http.StatusCreated {
		t.Fatalf("create %s: status=%d, error=%+v", name, code, env.Error)
	}
	var view model.TaskView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("create %s: parse data: %v", name, err)
	}
	return view
}

func TestDiscovery(t *testing.T) {
	srv := testServer()
	code, env := do(t, srv, "GET", "/api/v1/", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "schedq API" {
		t.Errorf("name = %q, want schedq API", data.Name)
	}
	if len(data.Endpoints) < 5 {
		t.Errorf("endpoints count = %d, want >= 5", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv := testServer()
	code, env := do(t, srv, "GET", "/api/v1/health", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	var data healthResponse
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Scheduler != "stopped" {
		t.Errorf("scheduler = %q, want stopped (engine not started in tests)", data.Scheduler)
	}
}

func TestCreateTask(t *testing.T) {
	srv := testServer()
	view := createTask(t, srv, "db-backup", 5, 10.5)

	if view.TaskID == "" {
		t.Error("task_id is empty")
	}
	if view.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", view.Status)
	}
	if view.BurstTime != 10.5 || view.RemainingTime != 10.5 {
		t.Errorf("burst/remaining = %v/%v, want 10.5/10.5", view.BurstTime, view.RemainingTime)
	}
	if view.ResponseTime != -1 {
		t.Errorf("response_time = %v, want -1 before first slice", view.ResponseTime)
	}
	if view.CompletionTime != 0 {
		t.Errorf("completion_time = %v, want 0 while incomplete", view.CompletionTime)
	}
	if view.Progress != 0 {
		t.Errorf("progress = %d, want 0", view.Progress)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"empty name", map[string]any{"name": "", "priority": 5, "burst_time": 1.0}, "name"},
		{"priority too low", map[string]any{"name": "x", "priority": 0, "burst_time": 1.0}, "priority"},
		{"priority too high", map[string]any{"name": "x", "priority": 11, "burst_time": 1.0}, "priority"},
		{"zero burst", map[string]any{"name": "x", "priority": 5, "burst_time": 0.0}, "burst_time"},
		{"burst too long", map[string]any{"name": "x", "priority": 5, "burst_time": 301.0}, "burst_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer()
			code, env := do(t, srv, "POST", "/api/v1/tasks/", tt.body)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if env.Error == nil || env.Error.Code != model.ErrValidation {
				t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
			found := false
			for _, fe := range env.Error.Details {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("details %+v missing field %q", env.Error.Details, tt.wantField)
			}
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	srv := testServer()
	code, env := do(t, srv, "GET", "/api/v1/tasks/nope/", nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestGetTask(t *testing.T) {
	srv := testServer()
	created := createTask(t, srv, "db-backup", 5, 10)

	code, env := do(t, srv, "GET", "/api/v1/tasks/"+created.TaskID+"/", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var got model.TaskView
	json.Unmarshal(env.Data, &got)
	if got != created {
		t.Errorf("got %+v, want %+v", got, created)
	}
}

func TestUpdateTask(t *testing.T) {
	srv := testServer()
	created := createTask(t, srv, "db-backup", 5, 10)

	code, env := do(t, srv, "PATCH", "/api/v1/tasks/"+created.TaskID+"/", map[string]any{
		"name":     "db-restore",
		"priority": 8,
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200, error=%+v", code, env.Error)
	}
	var got model.TaskView
	json.Unmarshal(env.Data, &got)
	if got.Name != "db-restore" || got.Priority != 8 {
		t.Errorf("name/priority = %s/%d, want db-restore/8", got.Name, got.Priority)
	}
	if got.BurstTime != 10 {
		t.Errorf("burst_time = %v, want untouched 10", got.BurstTime)
	}
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	srv := testServer()
	created := createTask(t, srv, "db-backup", 5, 10)

	code, env := do(t, srv, "PATCH", "/api/v1/tasks/"+created.TaskID+"/", map[string]any{})
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	srv := testServer()
	code, _ := do(t, srv, "PATCH", "/api/v1/tasks/nope/", map[string]any{"priority": 7})
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestDeleteTask(t *testing.T) {
	srv := testServer()
	created := createTask(t, srv, "db-backup", 5, 10)

	code, _ := do(t, srv, "DELETE", "/api/v1/tasks/"+created.TaskID+"/", nil)
	if code != http.StatusNoContent {
		t.Fatalf("first delete: status = %d, want 204", code)
	}
	code, env := do(t, srv, "DELETE", "/api/v1/tasks/"+created.TaskID+"/", nil)
	if code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", code)
	}
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestListTasksFilters(t *testing.T) {
	srv := testServer()
	createTask(t, srv, "a", 3, 1)
	createTask(t, srv, "b", 5, 1)
	createTask(t, srv, "c", 5, 1)

	listLen := func(path string) int {
		t.Helper()
		code, env := do(t, srv, "GET", path, nil)
		if code != http.StatusOK {
			t.Fatalf("GET %s: status = %d", path, code)
		}
		var views []model.TaskView
		json.Unmarshal(env.Data, &views)
		return len(views)
	}

	if n := listLen("/api/v1/tasks/"); n != 3 {
		t.Errorf("unfiltered = %d, want 3", n)
	}
	if n := listLen("/api/v1/tasks/?priority=5"); n != 2 {
		t.Errorf("priority=5 = %d, want 2", n)
	}
	if n := listLen("/api/v1/tasks/?status=pending"); n != 3 {
		t.Errorf("status=pending = %d, want 3", n)
	}
	if n := listLen("/api/v1/tasks/?status=completed"); n != 0 {
		t.Errorf("status=completed = %d, want 0", n)
	}

	code, _ := do(t, srv, "GET", "/api/v1/tasks/?status=bogus", nil)
	if code != http.StatusBadRequest {
		t.Errorf("bogus status filter: status = %d, want 400", code)
	}
	code, _ = do(t, srv, "GET", "/api/v1/tasks/?priority=abc", nil)
	if code != http.StatusBadRequest {
		t.Errorf("non-integer priority filter: status = %d, want 400", code)
	}
}

func TestCreateTaskBatch(t *testing.T) {
	srv := testServer()
	batch := []map[string]any{
		{"name": "a", "priority": 5, "burst_time": 1.0},
		{"name": "b", "priority": 7, "burst_time": 2.0},
	}
	code, env := do(t, srv, "POST", "/api/v1/tasks/batch", batch)
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, error=%+v", code, env.Error)
	}
	var views []model.TaskView
	json.Unmarshal(env.Data, &views)
	if len(views) != 2 {
		t.Fatalf("created = %d, want 2", len(views))
	}
}

func TestCreateTaskBatchAllOrNothing(t *testing.T) {
	srv := testServer()
	batch := []map[string]any{
		{"name": "ok", "priority": 5, "burst_time": 1.0},
		{"name": "", "priority": 99, "burst_time": 0.0},
	}
	code, env := do(t, srv, "POST", "/api/v1/tasks/batch", batch)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if env.Error == nil || len(env.Error.Details) == 0 {
		t.Fatalf("error = %+v, want field details", env.Error)
	}
	// Index-prefixed field names point at the offending entry.
	found := false
	for _, fe := range env.Error.Details {
		if fe.Field == "[1].priority" {
			found = true
		}
	}
	if !found {
		t.Errorf("details %+v missing [1].priority", env.Error.Details)
	}

	code, listEnv := do(t, srv, "GET", "/api/v1/tasks/", nil)
	if code != http.StatusOK {
		t.Fatalf("list: status = %d", code)
	}
	var views []model.TaskView
	json.Unmarshal(listEnv.Data, &views)
	if len(views) != 0 {
		t.Errorf("tasks after failed batch = %d, want 0", len(views))
	}
}

func TestStats(t *testing.T) {
	srv := testServer()
	code, env := do(t, srv, "GET", "/api/v1/stats/", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var st model.SchedulerStats
	json.Unmarshal(env.Data, &st)
	if st.TotalTasks != 0 || !st.Idle {
		t.Errorf("empty stats = %+v, want zero totals and idle", st)
	}

	for i := 0; i < 3; i++ {
		createTask(t, srv, fmt.Sprintf("t%d", i), 5, 1)
	}
	_, env = do(t, srv, "GET", "/api/v1/stats/", nil)
	json.Unmarshal(env.Data, &st)
	if st.TotalTasks != 3 || st.PendingTasks != 3 || st.Idle {
		t.Errorf("stats = %+v, want 3 pending and not idle", st)
	}
}

func TestSequenceEmpty(t *testing.T) {
	srv := testServer()
	code, env := do(t, srv, "GET", "/api/v1/stats/sequence", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var seq []model.SliceView
	json.Unmarshal(env.Data, &seq)
	if len(seq) != 0 {
		t.Errorf("sequence = %d entries, want 0", len(seq))
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer()
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	id := w.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("X-Request-ID header missing")
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.RequestID != id {
		t.Errorf("envelope request_id = %q, header = %q; want the same id", env.RequestID, id)
	}
}
