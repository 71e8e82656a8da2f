package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/ports"
)

// MemoryNotifier is an in-process change notifier. Signals are coalesced:
// a subscriber that has not drained its channel still sees at most one
// pending signal, which is enough because consumers re-read the full
// snapshot per signal.
type MemoryNotifier struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[int]chan struct{}
	nextID int
	closed bool
}

// NewMemoryNotifier creates an in-process notifier
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{
		subs: make(map[uuid.UUID]map[int]chan struct{}),
	}
}

var _ ports.ChangeNotifier = (*MemoryNotifier)(nil)

func (n *MemoryNotifier) Notify(ctx context.Context, ownerID uuid.UUID) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subs[ownerID] {
		select {
		case ch <- struct{}{}:
		default:
			// Signal already pending; the subscriber re-reads anyway.
		}
	}

	return nil
}

func (n *MemoryNotifier) Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		ch := make(chan struct{})
		close(ch)
		return ch, func() {}, nil
	}

	id := n.nextID
	n.nextID++

	ch := make(chan struct{}, 1)
	if n.subs[ownerID] == nil {
		n.subs[ownerID] = make(map[int]chan struct{})
	}
	n.subs[ownerID][id] = ch

	stop := func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		if owner, ok := n.subs[ownerID]; ok {
			if _, ok := owner[id]; ok {
				delete(owner, id)
				close(ch)
			}
			if len(owner) == 0 {
				delete(n.subs, ownerID)
			}
		}
	}

	return ch, stop, nil
}

func (n *MemoryNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	for ownerID, owner := range n.subs {
		for id, ch := range owner {
			delete(owner, id)
			close(ch)
		}
		delete(n.subs, ownerID)
	}

	return nil
}
