package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
	"github.com/nextask/core/internal/ports"
)

// MemoryUserRepository keeps accounts in memory. It backs the local store
// configuration, where no database is available; accounts do not survive a
// restart.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entities.User
	byEmail map[string]uuid.UUID
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]*entities.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

var _ ports.UserRepository = (*MemoryUserRepository)(nil)

// Create stores a new user, enforcing email uniqueness
func (r *MemoryUserRepository) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return entities.ErrEmailAlreadyInUse
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[key] = user.ID

	return nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	clone := *r.byID[id]
	return &clone, nil
}

// Delete removes a user
func (r *MemoryUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return entities.ErrUserNotFound
	}

	delete(r.byEmail, strings.ToLower(user.Email))
	delete(r.byID, id)

	return nil
}

// MemoryAuthRepository keeps refresh tokens in memory, for the local store
// configuration.
type MemoryAuthRepository struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*ports.RefreshToken
}

// NewMemoryAuthRepository creates an empty in-memory auth repository
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{
		nextID: 1,
		tokens: make(map[string]*ports.RefreshToken),
	}
}

var _ ports.AuthRepository = (*MemoryAuthRepository)(nil)

// CreateRefreshToken stores a new refresh token
func (r *MemoryAuthRepository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[tokenHash] = &ports.RefreshToken{
		ID:        r.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	r.nextID++

	return nil
}

// GetRefreshToken retrieves a refresh token by its hash
func (r *MemoryAuthRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrUnauthorized
	}

	clone := *token
	return &clone, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (r *MemoryAuthRepository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil
	}

	now := time.Now()
	token.RevokedAt = &now

	return nil
}

// RevokeAllUserTokens revokes every refresh token of a user
func (r *MemoryAuthRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}

	return nil
}

// CleanupExpiredTokens removes expired refresh tokens
func (r *MemoryAuthRepository) CleanupExpiredTokens(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, hash)
		}
	}

	return nil
}
