package models

import (
	"strings"
	"time"
)

// Task is a to-do item owned by exactly one user
type Task struct {
	ID          string    `json:"id" db:"id"`
	Description string    `json:"description" db:"description" validate:"required"`
	Completed   bool      `json:"completed" db:"completed"`
	Owner       string    `json:"owner" db:"owner_id" validate:"required"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Normalize trims the description
func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
}

// CreateTaskRequest is the payload of POST /tasks
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest is the payload of PATCH /tasks/{id}
type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// AllowedTaskUpdates lists the keys a task patch may carry
var AllowedTaskUpdates = []string{"description", "completed"}

// Apply copies the set fields onto t
func (req UpdateTaskRequest) Apply(t *Task) {
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
}

// TaskQuery narrows a task listing. Limit 0 means unbounded.
type TaskQuery struct {
	Completed *bool
	SortBy    string
	SortDesc  bool
	Limit     int
	Skip      int
}
