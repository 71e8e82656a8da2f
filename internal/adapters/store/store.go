package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

// TaskStore composes a task repository with a change notifier to present
// the document-store surface: writes go to the repository and then signal
// the owner's subscribers; each subscription delivers complete owner-scoped
// snapshots, the initial one immediately and a fresh one per signal.
type TaskStore struct {
	repo     ports.TaskRepository
	notifier ports.ChangeNotifier
	logger   *logger.Logger
}

// New creates a task store over a repository and a notifier
func New(repo ports.TaskRepository, notifier ports.ChangeNotifier, logger *logger.Logger) *TaskStore {
	return &TaskStore{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

var _ ports.TaskStore = (*TaskStore)(nil)

// Subscribe opens a live query for one owner. The returned channel carries
// full snapshots and is buffered with the latest snapshot winning, so a slow
// consumer never blocks writers and never observes partial state. The stop
// function releases the subscription; it is safe to call more than once.
func (s *TaskStore) Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan []*entities.Task, func(), error) {
	signals, stopSignals, err := s.notifier.Subscribe(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan []*entities.Task, 1)

	go func() {
		defer close(out)

		snapshot, err := s.repo.ListByOwner(subCtx, ownerID)
		if err != nil {
			if subCtx.Err() == nil {
				s.logger.Error("Initial snapshot read failed", "error", err, "owner_id", ownerID)
			}
			return
		}
		send(out, snapshot)

		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				snapshot, err := s.repo.ListByOwner(subCtx, ownerID)
				if err != nil {
					if subCtx.Err() == nil {
						s.logger.Error("Snapshot read failed", "error", err, "owner_id", ownerID)
					}
					return
				}
				send(out, snapshot)
			}
		}
	}()

	stop := func() {
		cancel()
		stopSignals()
	}

	return out, stop, nil
}

// Get reads one of the owner's tasks
func (s *TaskStore) Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List reads a one-shot snapshot of the owner's tasks
func (s *TaskStore) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create stores a new task and returns the assigned identifier
func (s *TaskStore) Create(ctx context.Context, task *entities.Task) (uuid.UUID, error) {
	if err := s.repo.Create(ctx, task); err != nil {
		return uuid.Nil, err
	}

	if err := s.notifier.Notify(ctx, task.OwnerID); err != nil {
		s.logger.Warn("Change notification failed", "error", err, "owner_id", task.OwnerID)
	}

	return task.ID, nil
}

// Update applies a partial update to one of the owner's tasks
func (s *TaskStore) Update(ctx context.Context, ownerID, id uuid.UUID, patch entities.TaskPatch) error {
	if err := s.repo.Patch(ctx, ownerID, id, patch); err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, ownerID); err != nil {
		s.logger.Warn("Change notification failed", "error", err, "owner_id", ownerID)
	}

	return nil
}

// Delete removes one of the owner's tasks
func (s *TaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, ownerID); err != nil {
		s.logger.Warn("Change notification failed", "error", err, "owner_id", ownerID)
	}

	return nil
}

// send delivers a snapshot, replacing a pending one the consumer has not
// drained yet.
func send(out chan []*entities.Task, snapshot []*entities.Task) {
	for {
		select {
		case out <- snapshot:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
