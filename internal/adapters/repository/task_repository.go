package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface. Every query
// filters on owner_id so one user can never observe or mutate another
// user's tasks.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, owner_id, text, completed, due_date, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Text, task.Completed, task.DueDate, task.Details,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT id, owner_id, text, completed, due_date, details, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	query := `
		SELECT id, owner_id, text, completed, due_date, details, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at`

	tasks := []*entities.Task{}
	err := r.db.SelectContext(ctx, &tasks, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by owner: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Patch(ctx context.Context, ownerID, id uuid.UUID, patch entities.TaskPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	// Only named columns are touched; the store arbitrates concurrent
	// writers with last-write-wins per column.
	set := []string{}
	args := []interface{}{id, ownerID}
	n := 3

	if patch.Text != nil {
		set = append(set, "text = $"+strconv.Itoa(n))
		args = append(args, *patch.Text)
		n++
	}
	if patch.Completed != nil {
		set = append(set, "completed = $"+strconv.Itoa(n))
		args = append(args, *patch.Completed)
		n++
	}
	if patch.DueDate != nil {
		set = append(set, "due_date = $"+strconv.Itoa(n))
		args = append(args, *patch.DueDate)
		n++
	}
	if patch.Details != nil {
		set = append(set, "details = $"+strconv.Itoa(n))
		args = append(args, *patch.Details)
		n++
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $1 AND owner_id = $2`,
		strings.Join(set, ", "),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}
