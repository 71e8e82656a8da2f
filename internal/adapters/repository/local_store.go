package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/ports"
)

// LocalStore is a file-backed task repository: one serialized array of tasks
// under a single well-known path, loaded once at startup and rewritten in
// full on every change. It lets the application run without a database and
// backs the package tests.
type LocalStore struct {
	mu    sync.RWMutex
	path  string
	tasks map[uuid.UUID]*entities.Task
}

// NewLocalStore opens the store at path, loading the existing array if the
// file is present. A missing file is an empty store, not an error.
func NewLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{
		path:  path,
		tasks: make(map[uuid.UUID]*entities.Task),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read local store: %w", err)
	}

	var tasks []*entities.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode local store: %w", err)
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}

	return s, nil
}

var _ ports.TaskRepository = (*LocalStore)(nil)

func (s *LocalStore) Create(ctx context.Context, task *entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = task.Clone()

	return s.flush()
}

func (s *LocalStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, entities.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (s *LocalStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []*entities.Task{}
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, t.Clone())
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

func (s *LocalStore) Patch(ctx context.Context, ownerID, id uuid.UUID, patch entities.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return entities.ErrTaskNotFound
	}

	if patch.Text != nil {
		task.Text = *patch.Text
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.DueDate != nil {
		d := *patch.DueDate
		task.DueDate = &d
	}
	if patch.Details != nil {
		d := *patch.Details
		task.Details = &d
	}
	task.UpdatedAt = time.Now()

	return s.flush()
}

func (s *LocalStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return entities.ErrTaskNotFound
	}
	delete(s.tasks, id)

	return s.flush()
}

// flush rewrites the whole array. Callers hold the write lock.
func (s *LocalStore) flush() error {
	tasks := make([]*entities.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}

	return nil
}
