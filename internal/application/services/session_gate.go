package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/infrastructure/logger"
	"github.com/nextask/core/internal/ports"
)

// Route identifies a top-level screen
type Route string

const (
	RouteLogin Route = "login"
	RouteTasks Route = "tasks"
)

// SessionGate observes the auth-state signal and keeps the visible route
// consistent with it: the task view if and only if a user is present, the
// credential view otherwise. On every transition it performs one navigation
// action and rebuilds or tears down the sync subscription for the new user.
type SessionGate struct {
	auth     ports.AuthProvider
	sync     *SyncService
	navigate func(Route)
	logger   *logger.Logger

	mu    sync.Mutex
	route Route
	unsub func()
}

// NewSessionGate creates a session gate. navigate may be nil when no
// presentation layer is attached.
func NewSessionGate(auth ports.AuthProvider, sync *SyncService, navigate func(Route), logger *logger.Logger) *SessionGate {
	return &SessionGate{
		auth:     auth,
		sync:     sync,
		navigate: navigate,
		logger:   logger,
		route:    RouteLogin,
	}
}

// Start evaluates the current auth state and begins observing transitions.
// A state that cannot be observed is treated as signed out.
func (g *SessionGate) Start(ctx context.Context) {
	g.mu.Lock()
	if g.unsub == nil {
		g.unsub = g.auth.OnAuthStateChanged(func(user *entities.User) {
			g.apply(ctx, user)
		})
	}
	g.mu.Unlock()

	g.apply(ctx, g.auth.CurrentUser())
}

// Route returns the screen that should currently be visible
func (g *SessionGate) Route() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.route
}

// Close stops observing and tears down the subscription
func (g *SessionGate) Close() {
	g.mu.Lock()
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
	g.mu.Unlock()

	g.sync.Close()
}

func (g *SessionGate) apply(ctx context.Context, user *entities.User) {
	target := RouteLogin
	ownerID := uuid.Nil
	if user != nil {
		target = RouteTasks
		ownerID = user.ID
	}

	// Rebuild the subscription even when the route is unchanged: a
	// user-to-user switch stays on the task view but must not keep the
	// previous user's subscription alive.
	if err := g.sync.SetUser(ctx, ownerID); err != nil {
		g.logger.Error("Failed to rebuild task subscription", "error", err, "owner_id", ownerID)
	}

	g.mu.Lock()
	changed := g.route != target
	g.route = target
	g.mu.Unlock()

	if changed {
		g.logger.Info("Navigating", "route", target)
		if g.navigate != nil {
			g.navigate(target)
		}
	}
}
