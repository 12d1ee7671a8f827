package scheduler

import (
	"sort"
	"time"

	"github.com/agentcore/runtime/internal/storage/dirstore"
)

// TaskStore persists periodic task entries as directories with meta.json.
type TaskStore struct {
	ds *dirstore.DirStore
}

// NewTaskStore creates a TaskStore rooted at baseDir.
func NewTaskStore(baseDir string) *TaskStore {
	return &TaskStore{ds: dirstore.NewDirStore(baseDir, "scheduled_task")}
}

// Create persists a new periodic task to disk.
func (s *TaskStore) Create(task *PeriodicTask) error {
	s.ds.Lock()
	defer s.ds.Unlock()

	if task.ID == "" {
		task.ID = GenerateTaskID()
	}
	task.CreatedAt = time.Now()

	if err := s.ds.EnsureDir(task.ID); err != nil {
		return err
	}
	return s.ds.WriteMeta(task.ID, task)
}

// Get reads a periodic task by ID.
func (s *TaskStore) Get(id string) (*PeriodicTask, error) {
	s.ds.RLock()
	defer s.ds.RUnlock()

	var task PeriodicTask
	if err := s.ds.ReadMeta(id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update atomically rewrites a periodic task's meta.json.
func (s *TaskStore) Update(task *PeriodicTask) error {
	s.ds.Lock()
	defer s.ds.Unlock()
	return s.ds.WriteMeta(task.ID, task)
}

// Delete removes a periodic task's directory.
func (s *TaskStore) Delete(id string) error {
	s.ds.Lock()
	defer s.ds.Unlock()
	return s.ds.RemoveDir(id)
}

// List returns all periodic tasks, sorted by CreatedAt descending.
func (s *TaskStore) List() ([]*PeriodicTask, error) {
	s.ds.RLock()
	defer s.ds.RUnlock()

	dirs, err := s.ds.ListDirs()
	if err != nil {
		return nil, err
	}

	var tasks []*PeriodicTask
	for _, name := range dirs {
		var task PeriodicTask
		if err := s.ds.ReadMeta(name, &task); err != nil {
			continue // skip corrupted entries
		}
		tasks = append(tasks, &task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}
