package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nextask/core/internal/domain/entities"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tasks.json")
}

func TestLocalStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewLocalStore(tempStorePath(t))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	tasks, err := store.ListByOwner(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("fresh store has %d tasks", len(tasks))
	}
}

func TestLocalStoreSurvivesReopen(t *testing.T) {
	path := tempStorePath(t)
	ctx := context.Background()
	owner := uuid.New()

	store, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	due := "2024-03-15"
	task := &entities.Task{OwnerID: owner, Text: "persist me", DueDate: &due}
	if err := store.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reopened, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	got, err := reopened.GetByID(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen failed: %v", err)
	}
	if got.Text != "persist me" {
		t.Errorf("text = %q", got.Text)
	}
	if got.DueDate == nil || *got.DueDate != due {
		t.Errorf("due date = %v, want %q", got.DueDate, due)
	}
}

func TestLocalStoreRejectsCorruptFile(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := NewLocalStore(path); err == nil {
		t.Fatal("corrupt store file opened without error")
	}
}

func TestLocalStoreOwnerScoping(t *testing.T) {
	store, err := NewLocalStore(tempStorePath(t))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	task := &entities.Task{OwnerID: alice, Text: "alice's"}
	if err := store.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.GetByID(ctx, bob, task.ID); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Fatalf("cross-owner get = %v, want ErrTaskNotFound", err)
	}
	if err := store.Patch(ctx, bob, task.ID, entities.TaskPatch{}); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Fatalf("cross-owner patch = %v, want ErrTaskNotFound", err)
	}
	if err := store.Delete(ctx, bob, task.ID); !errors.Is(err, entities.ErrTaskNotFound) {
		t.Fatalf("cross-owner delete = %v, want ErrTaskNotFound", err)
	}

	tasks, err := store.ListByOwner(ctx, bob)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("bob sees %d of alice's tasks", len(tasks))
	}
}

func TestLocalStorePatchAppliesOnlySetFields(t *testing.T) {
	store, err := NewLocalStore(tempStorePath(t))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()
	owner := uuid.New()

	due := "2024-03-15"
	task := &entities.Task{OwnerID: owner, Text: "original", DueDate: &due}
	if err := store.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	completed := true
	if err := store.Patch(ctx, owner, task.ID, entities.TaskPatch{Completed: &completed}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	got, err := store.GetByID(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Completed {
		t.Error("completed flag not set")
	}
	if got.Text != "original" {
		t.Errorf("patch touched text: %q", got.Text)
	}
	if got.DueDate == nil || *got.DueDate != due {
		t.Error("patch touched due date")
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("updated_at not maintained")
	}
}

func TestLocalStoreListSortsByCreation(t *testing.T) {
	store, err := NewLocalStore(tempStorePath(t))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	ctx := context.Background()
	owner := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"third", "first", "second"} {
		offset := []time.Duration{2 * time.Minute, 0, time.Minute}[i]
		task := &entities.Task{OwnerID: owner, Text: text, CreatedAt: base.Add(offset)}
		if err := store.Create(ctx, task); err != nil {
			t.Fatalf("Create(%q) failed: %v", text, err)
		}
	}

	tasks, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, text := range want {
		if tasks[i].Text != text {
			t.Fatalf("position %d = %q, want %q", i, tasks[i].Text, text)
		}
	}
}
