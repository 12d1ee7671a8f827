package scheduler

import (
	"testing"
)

func TestTaskStore_CRUD(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(dir)

	task := &PeriodicTask{
		Name:        "test task",
		TaskFunc:    "check_status",
		IntervalSec: 30,
		CooldownSec: 30,
		Enabled:     true,
	}

	if err := store.Create(task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected ID to be generated")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "test task" {
		t.Fatalf("expected name %q, got %q", "test task", got.Name)
	}
	if got.IntervalSec != 30 {
		t.Fatalf("expected interval 30, got %d", got.IntervalSec)
	}

	got.RunCount = 5
	if err := store.Update(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got2.RunCount != 5 {
		t.Fatalf("expected run count 5, got %d", got2.RunCount)
	}

	if err := store.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = store.Get(task.ID)
	if err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestTaskStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(dir)

	t1 := &PeriodicTask{Name: "first", TaskFunc: "fn", IntervalSec: 10, Enabled: true}
	t2 := &PeriodicTask{Name: "second", TaskFunc: "fn", CronSpec: "*/5 * * * *", Enabled: true}

	if err := store.Create(t1); err != nil {
		t.Fatalf("create t1: %v", err)
	}
	if err := store.Create(t2); err != nil {
		t.Fatalf("create t2: %v", err)
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func TestTaskStore_GetNotFound(t *testing.T) {
	dir := t.TempDir()
	store := NewTaskStore(dir)

	_, err := store.Get("task_nonexistent")
	if err == nil {
		t.Fatal("expected error for non-existent task")
	}
}
