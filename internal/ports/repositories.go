package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nextask/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository defines the interface for task data operations. Every read
// and write is scoped to an owner; a task is never visible outside the
// session of the user that created it.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error)
	Patch(ctx context.Context, ownerID, id uuid.UUID, patch entities.TaskPatch) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// AuthRepository defines the interface for refresh token operations
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}

// ChangeNotifier fans out per-owner change signals. A signal carries no
// payload; subscribers re-read the full snapshot for the owner.
type ChangeNotifier interface {
	Notify(ctx context.Context, ownerID uuid.UUID) error
	Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error)
	Close() error
}

// TaskStore is the document-store surface the application core depends on.
// Subscribe opens a live query scoped to one owner: the initial snapshot and
// every subsequent change arrive as the complete set of that owner's tasks,
// never an incremental patch. The returned stop function releases the
// subscription and must be called on teardown or user change.
type TaskStore interface {
	Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan []*entities.Task, func(), error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error)
	Create(ctx context.Context, task *entities.Task) (uuid.UUID, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch entities.TaskPatch) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// RefreshToken represents a refresh token record
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is valid
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
