package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"task-manager/models"
)

const taskColumns = "id, description, completed, owner_id, created_at, updated_at"

// sortColumns maps the sortable JSON field names to their columns
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// TaskStore persists tasks. Every read and write is scoped to an owner.
type TaskStore struct {
	base
}

// NewTaskStore creates a task store on db
func NewTaskStore(db *sqlx.DB, opts Options) *TaskStore {
	return &TaskStore{base: newBase(db, opts)}
}

// Create validates and inserts t
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	if err := models.ValidateTask(t); err != nil {
		return err
	}

	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO tasks (id, description, completed, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		t.ID, t.Description, t.Completed, t.Owner, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Find returns the task with id if owner owns it
func (s *TaskStore) Find(ctx context.Context, id, owner string) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.find(ctx, s.db, id, owner)
}

// List returns the owner's tasks filtered, sorted and paginated by q
func (s *TaskStore) List(ctx context.Context, owner string, q models.TaskQuery) ([]models.Task, error) {
	var sb strings.Builder
	args := []any{owner}

	sb.WriteString("SELECT " + taskColumns + " FROM tasks WHERE owner_id = ?")
	if q.Completed != nil {
		sb.WriteString(" AND completed = ?")
		args = append(args, *q.Completed)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if ok && q.SortDesc {
		direction = "DESC"
	}
	sb.WriteString(" ORDER BY " + column + " " + direction)
	if column != "created_at" {
		sb.WriteString(", created_at ASC")
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	} else if q.Skip > 0 && s.db.DriverName() == "sqlite3" {
		// sqlite only accepts OFFSET after a LIMIT
		sb.WriteString(" LIMIT -1")
	}
	if q.Skip > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, q.Skip)
	}

	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, s.q(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

// Update applies req to the owner's task and re-validates it. Nothing is
// written when validation fails.
func (s *TaskStore) Update(ctx context.Context, id, owner string, req models.UpdateTaskRequest) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var updated *models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		t, err := s.find(ctx, tx, id, owner)
		if err != nil {
			return err
		}

		req.Apply(t)
		if err := models.ValidateTask(t); err != nil {
			return err
		}
		t.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, s.q("UPDATE tasks SET description = ?, completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?"),
			t.Description, t.Completed, t.UpdatedAt, t.ID, owner)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the owner's task and returns it
func (s *TaskStore) Delete(ctx context.Context, id, owner string) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var removed *models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		t, err := s.find(ctx, tx, id, owner)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q("DELETE FROM tasks WHERE id = ? AND owner_id = ?"), id, owner); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		removed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *TaskStore) find(ctx context.Context, q sqlx.QueryerContext, id, owner string) (*models.Task, error) {
	t := &models.Task{}
	err := sqlx.GetContext(ctx, q, t, s.q("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?"), id, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}
