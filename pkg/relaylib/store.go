package relaylib

import "sync"

// Store is the thread-safe collection of pending tasks. It owns every
// Task between submission and dispatch; removal transfers ownership to
// the caller. All operations, including the snapshot, serialize against
// each other under one mutex so a scheduler scan never observes a
// half-applied mutation.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
	}
}

// Add inserts a task. It always succeeds for a well-formed task; adding
// the same task twice is a no-op.
func (s *Store) Add(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.id] = t
}

// Take atomically removes and returns the task with the given id. The
// second return value reports whether it was present. This is the
// at-most-once guard: exactly one caller observes true for a given task,
// so no two scheduler passes can dispatch the same instance.
func (s *Store) Take(id string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	return t, ok
}

// RemoveIfPresent removes the task with the given id if it is still
// pending. Idempotent: the first call for a present task returns true,
// every later call returns false.
func (s *Store) RemoveIfPresent(id string) bool {
	_, ok := s.Take(id)
	return ok
}

// Snapshot returns an independently iterable copy of the current pending
// tasks, taken under a single atomic section. Concurrent Add and Take
// calls never corrupt an in-progress snapshot.
func (s *Store) Snapshot() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out
}

// Len returns the number of pending tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
