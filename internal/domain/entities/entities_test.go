package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskValidate(t *testing.T) {
	owner := uuid.New()
	good := "2024-03-15"
	bad := "March 15"

	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{name: "valid", task: Task{OwnerID: owner, Text: "ok"}},
		{name: "valid with due date", task: Task{OwnerID: owner, Text: "ok", DueDate: &good}},
		{name: "blank text", task: Task{OwnerID: owner, Text: "   "}, wantErr: true},
		{name: "missing owner", task: Task{Text: "ok"}, wantErr: true},
		{name: "malformed due date", task: Task{OwnerID: owner, Text: "ok", DueDate: &bad}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr && !IsValidationError(err) {
				t.Fatalf("Validate = %v, want validation error", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate unexpected error: %v", err)
			}
		})
	}
}

func TestDueToday(t *testing.T) {
	today := "2024-03-15"
	other := "2024-03-16"

	tests := []struct {
		name string
		due  *string
		want bool
	}{
		{name: "no due date", due: nil, want: false},
		{name: "due today", due: &today, want: true},
		{name: "due another day", due: &other, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{DueDate: tt.due}
			if got := task.DueToday(today); got != tt.want {
				t.Errorf("DueToday = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 59, 0, 0, time.Local)
	if got := Today(now); got != "2024-03-15" {
		t.Errorf("Today = %q, want 2024-03-15", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	due := "2024-03-15"
	details := "details"
	task := &Task{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Text:    "original",
		DueDate: &due,
		Details: &details,
	}

	clone := task.Clone()
	*clone.DueDate = "2025-01-01"
	*clone.Details = "changed"
	clone.Text = "changed"

	if *task.DueDate != due || *task.Details != details || task.Text != "original" {
		t.Fatal("mutating the clone changed the original")
	}
}

func TestTaskPatchIsEmpty(t *testing.T) {
	if !(TaskPatch{}).IsEmpty() {
		t.Error("zero patch reported non-empty")
	}

	text := "x"
	if (TaskPatch{Text: &text}).IsEmpty() {
		t.Error("patch with text reported empty")
	}
}
