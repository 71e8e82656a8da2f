package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/nextask/core/internal/domain/entities"
)

// AuthProvider is the authentication surface the application core depends
// on. SignUp and SignIn validate input locally before touching any backend;
// OnAuthStateChanged registers an observer that is invoked with the new user
// (or nil on sign-out) after every transition.
type AuthProvider interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	CurrentUser() *entities.User
	OnAuthStateChanged(fn func(*entities.User)) (unsubscribe func())
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskWriter is the mutation surface exposed to the presentation layer.
// Each operation issues exactly one write against the task store and relies
// on the live subscription to reflect the result; failed operations are
// surfaced and considered not applied.
type TaskWriter interface {
	AddTask(ctx context.Context, ownerID uuid.UUID, req AddTaskRequest) (uuid.UUID, error)
	ToggleComplete(ctx context.Context, ownerID, id uuid.UUID) error
	UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req UpdateTaskRequest) error
	DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error
}

// Auth related types
type SignUpRequest struct {
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Task related types. Task text is not validated at the transport layer:
// a blank add is a silent no-op and a blank edit is rejected by the task
// service, so neither is a malformed request.
type AddTaskRequest struct {
	Text    string  `json:"text"`
	DueDate *string `json:"due_date,omitempty"`
	Details *string `json:"details,omitempty"`
}

type UpdateTaskRequest struct {
	Text    string  `json:"text"`
	Details *string `json:"details,omitempty"`
}

// Common response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
