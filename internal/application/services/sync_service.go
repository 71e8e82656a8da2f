package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

// SyncService keeps an in-memory task collection synchronized with the task
// store through a live subscription. At most one subscription is open at a
// time: it is released before a new one opens on user change, and on Close.
// Every push replaces the whole collection; partial merges never happen.
// With no authenticated user the collection is empty and no subscription is
// held.
type SyncService struct {
	store  ports.TaskStore
	logger *logger.Logger

	mu      sync.Mutex
	ownerID uuid.UUID
	stop    func()
	done    chan struct{}

	snapMu   sync.RWMutex
	snapshot []*entities.Task

	updates chan struct{}
}

// NewSyncService creates a new sync service
func NewSyncService(store ports.TaskStore, logger *logger.Logger) *SyncService {
	return &SyncService{
		store:   store,
		logger:  logger,
		updates: make(chan struct{}, 1),
	}
}

// SetUser switches the subscription to the given user. uuid.Nil tears the
// current subscription down and leaves the collection empty. The previous
// subscription is fully released before a new one opens, so a stale
// subscription can never deliver another user's tasks.
func (s *SyncService) SetUser(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID == ownerID && (ownerID == uuid.Nil || s.stop != nil) {
		return nil
	}

	s.teardownLocked()
	s.ownerID = ownerID

	if ownerID == uuid.Nil {
		return nil
	}

	snapshots, stop, err := s.store.Subscribe(ctx, ownerID)
	if err != nil {
		s.ownerID = uuid.Nil
		return err
	}

	done := make(chan struct{})
	s.stop = stop
	s.done = done

	go func() {
		defer close(done)
		for snapshot := range snapshots {
			s.snapMu.Lock()
			s.snapshot = snapshot
			s.snapMu.Unlock()

			select {
			case s.updates <- struct{}{}:
			default:
			}
		}
	}()

	s.logger.Debug("Task subscription opened", "owner_id", ownerID)
	return nil
}

// Snapshot returns the current collection. The slice is a copy; the tasks
// are shared and must be treated as read-only.
func (s *SyncService) Snapshot() []*entities.Task {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	out := make([]*entities.Task, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Updates signals after each applied snapshot. Signals are coalesced.
func (s *SyncService) Updates() <-chan struct{} {
	return s.updates
}

// CurrentOwner returns the user the subscription is scoped to, or uuid.Nil
func (s *SyncService) CurrentOwner() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}

// Close releases the subscription and empties the collection
func (s *SyncService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.ownerID = uuid.Nil
}

// teardownLocked releases the current subscription and waits for the
// consumer to finish so no late push can repopulate the collection.
func (s *SyncService) teardownLocked() {
	if s.stop != nil {
		s.stop()
		<-s.done
		s.stop = nil
		s.done = nil
	}

	s.snapMu.Lock()
	s.snapshot = nil
	s.snapMu.Unlock()
}
