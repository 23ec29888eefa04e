// Package task creates problem-set tasks for a class and manages them:
// composition, storage, grading status, events and spreadsheet export.
package task

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the task, or the student's entry in it, does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrForbidden means the user does not manage the task's class.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidInput means a request field failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// UserTask is one student's share of a task. Problems is the serialized
// problem list and never changes after creation.
type UserTask struct {
	StudentNumber int             `json:"studentNumber"`
	Problems      json.RawMessage `json:"problems,omitempty"`
	Graded        bool            `json:"graded"`
}

// Task is a named set of per-student problem lists for one class.
type Task struct {
	ID          string     `json:"id"`
	ClassID     string     `json:"classId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	UserTasks   []UserTask `json:"userTasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserTask returns the entry for studentNumber.
func (t *Task) UserTask(studentNumber int) (*UserTask, bool) {
	for i := range t.UserTasks {
		if t.UserTasks[i].StudentNumber == studentNumber {
			return &t.UserTasks[i], true
		}
	}
	return nil, false
}

// Store persists tasks. GetTask and ListTasks leave UserTask.Problems empty
// unless withProblems is set.
type Store interface {
	CreateTask(t Task) (string, error)
	GetTask(id string, withProblems bool) (*Task, error)
	ListTasks(classID string) ([]Task, error)
	GetProblems(id string, studentNumber int) (json.RawMessage, error)
	SetGraded(id string, studentNumber int, graded bool) error
	UpdateName(id, name string) error
	UpdateDescription(id, description string) error
	DeleteTask(id string) error
}

// validID reports whether id can name a stored task.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	tasks map[string]*Task
	order []string
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*Task)}
}

func (s *MemoryStore) CreateTask(t Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	t.UserTasks = slices.Clone(t.UserTasks)
	s.tasks[t.ID] = &t
	s.order = append(s.order, t.ID)
	return t.ID, nil
}

func (s *MemoryStore) GetTask(id string, withProblems bool) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyTask(t, withProblems)
	return &out, nil
}

func (s *MemoryStore) ListTasks(classID string) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Task{}
	for _, id := range s.order {
		if t := s.tasks[id]; t.ClassID == classID {
			out = append(out, copyTask(t, false))
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProblems(id string, studentNumber int) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	ut, ok := t.UserTask(studentNumber)
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(ut.Problems), nil
}

func (s *MemoryStore) SetGraded(id string, studentNumber int, graded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	ut, ok := t.UserTask(studentNumber)
	if !ok {
		return ErrNotFound
	}
	ut.Graded = graded
	t.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdateName(id, name string) error {
	return s.update(id, func(t *Task) { t.Name = name })
}

func (s *MemoryStore) UpdateDescription(id, description string) error {
	return s.update(id, func(t *Task) { t.Description = description })
}

func (s *MemoryStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

func copyTask(t *Task, withProblems bool) Task {
	out := *t
	out.UserTasks = make([]UserTask, len(t.UserTasks))
	for i, ut := range t.UserTasks {
		if !withProblems {
			ut.Problems = nil
		}
		out.UserTasks[i] = ut
	}
	return out
}
