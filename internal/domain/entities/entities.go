package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrWrongPassword     = errors.New("wrong password")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoUser            = errors.New("no authenticated user")
)

// DueDateLayout is the wire and storage format for due dates. Due dates are
// calendar dates with no time or timezone component.
const DueDateLayout = "2006-01-02"

// ValidationError reports a locally detected input problem. It is raised
// before any repository or network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// User represents an account in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Task represents a to-do item. The authoritative copy lives in the task
// store; in-memory collections are read-through caches rebuilt from complete
// snapshots.
type Task struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	DueDate   *string   `json:"due_date,omitempty" db:"due_date"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskPatch is a partial update of a task. Nil fields are left untouched.
// ID and OwnerID are immutable and have no patch fields.
type TaskPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
	Details   *string `json:"details,omitempty"`
}

// IsEmpty reports whether the patch would change nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.DueDate == nil && p.Details == nil
}

// Validate checks the task's local invariants
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "must be set")
	}
	if t.DueDate != nil {
		if err := ValidateDueDate(*t.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// DueToday reports whether the task's due date equals the given calendar date
func (t *Task) DueToday(today string) bool {
	return t.DueDate != nil && *t.DueDate == today
}

// Clone returns a deep copy of the task
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Details != nil {
		d := *t.Details
		c.Details = &d
	}
	return &c
}

// ValidateDueDate checks that a due date parses as a calendar date
func ValidateDueDate(value string) error {
	if _, err := time.Parse(DueDateLayout, value); err != nil {
		return NewValidationError("due_date", "must be a date in YYYY-MM-DD form")
	}
	return nil
}

// Today returns the given instant's local calendar date in due-date form
func Today(now time.Time) string {
	return now.Format(DueDateLayout)
}
