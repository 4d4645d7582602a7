package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"task-manager/models"
	"task-manager/store"
)

const taskNotFound = "Task not found"

// TaskHandler handles the caller's tasks
type TaskHandler struct {
	tasks *store.TaskStore
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *store.TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	task := &models.Task{
		Description: req.Description,
		Completed:   req.Completed,
		Owner:       user.ID,
	}
	if err := h.tasks.Create(ctx, task); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Task created", zap.String("task_id", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

// GetTasks handles GET /tasks?completed=&sortBy=field_direction&limit=&skip=
func (h *TaskHandler) GetTasks(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)
	query := parseTaskQuery(r.URL.Query())

	tasks, err := h.tasks.List(ctx, user.ID, query)
	if err != nil {
		respondError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "debug", "Tasks listed", zap.Int("count", len(tasks)))
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /tasks/{id}
func (h *TaskHandler) GetTask(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	task, err := h.tasks.Find(ctx, mux.Vars(r)["id"], user.ID)
	if err != nil {
		respondError(ctx, w, err, taskNotFound)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id}. Only description and completed may be
// changed.
func (h *TaskHandler) UpdateTask(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)
	id := mux.Vars(r)["id"]

	var req models.UpdateTaskRequest
	if err := decodePatch(r, models.AllowedTaskUpdates, &req); err != nil {
		respondError(ctx, w, err, "")
		return
	}

	task, err := h.tasks.Update(ctx, id, user.ID, req)
	if err != nil {
		respondError(ctx, w, err, taskNotFound)
		return
	}

	logRequest(ctx, "info", "Task updated", zap.String("task_id", id))
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)
	id := mux.Vars(r)["id"]

	task, err := h.tasks.Delete(ctx, id, user.ID)
	if err != nil {
		respondError(ctx, w, err, taskNotFound)
		return
	}

	logRequest(ctx, "info", "Task deleted", zap.String("task_id", id))
	writeJSON(w, http.StatusOK, task)
}

// parseTaskQuery reads the listing parameters. completed=true selects
// completed tasks and any other value incomplete ones; unparsable or negative
// limit and skip are ignored.
func parseTaskQuery(values url.Values) models.TaskQuery {
	var q models.TaskQuery

	if values.Has("completed") {
		completed := values.Get("completed") == "true"
		q.Completed = &completed
	}

	if sortBy := values.Get("sortBy"); sortBy != "" {
		field, direction := sortBy, ""
		if i := strings.LastIndex(sortBy, "_"); i >= 0 {
			field, direction = sortBy[:i], sortBy[i+1:]
		}
		q.SortBy = field
		q.SortDesc = direction == "desc"
	}

	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	if n, err := strconv.Atoi(values.Get("skip")); err == nil && n > 0 {
		q.Skip = n
	}

	return q
}
