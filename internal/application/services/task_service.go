package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

// TaskService implements the task mutations. Each operation issues exactly
// one write against the store and relies on the live subscription to
// reflect the result; nothing is inserted locally and failed operations are
// considered not applied. No operation is retried.
type TaskService struct {
	store  ports.TaskStore
	logger *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(store ports.TaskStore, logger *logger.Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
	}
}

var _ ports.TaskWriter = (*TaskService)(nil)

// AddTask creates a task for the owner. Blank text or a missing user is a
// silent no-op: no write reaches the store and uuid.Nil is returned.
func (s *TaskService) AddTask(ctx context.Context, ownerID uuid.UUID, req ports.AddTaskRequest) (uuid.UUID, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" || ownerID == uuid.Nil {
		return uuid.Nil, nil
	}

	if req.DueDate != nil {
		if err := entities.ValidateDueDate(*req.DueDate); err != nil {
			return uuid.Nil, err
		}
	}

	task := &entities.Task{
		OwnerID:   ownerID,
		Text:      text,
		Completed: false,
		DueDate:   req.DueDate,
		Details:   req.Details,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	id, err := s.store.Create(ctx, task)
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Task created", "task_id", id, "owner_id", ownerID)
	return id, nil
}

// ListTasks reads a one-shot snapshot of the owner's tasks and derives the
// display list for the given filter, evaluated at now's local calendar date.
func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID, filter Filter, now time.Time) ([]*entities.Task, error) {
	tasks, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return View(tasks, filter, entities.Today(now)), nil
}

// ToggleComplete flips the completed flag of the identified task. The
// caller obtained id from a snapshot it owns; existence is only enforced by
// the store.
func (s *TaskService) ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) error {
	task, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	completed := !task.Completed
	if err := s.store.Update(ctx, ownerID, id, entities.TaskPatch{Completed: &completed}); err != nil {
		return err
	}

	s.logger.Info("Task toggled", "task_id", id, "completed", completed)
	return nil
}

// UpdateTask edits text and details only; completed, due date, owner and id
// are untouched.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req ports.UpdateTaskRequest) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return entities.NewValidationError("text", "must not be empty")
	}

	patch := entities.TaskPatch{Text: &text, Details: req.Details}
	if err := s.store.Update(ctx, ownerID, id, patch); err != nil {
		return err
	}

	s.logger.Info("Task updated", "task_id", id)
	return nil
}

// DeleteTask removes the task permanently. The deletion is irreversible;
// the presentation layer obtains explicit confirmation before calling this.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted", "task_id", id)
	return nil
}
