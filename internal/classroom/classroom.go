// Package classroom stores classes and their student rosters.
package classroom

import (
	"crypto/rand"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound means the class does not exist or was deleted.
var ErrNotFound = errors.New("class not found")

// CodeLength is the length of a class code.
const CodeLength = 6

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Student is one roster entry. Deleted students stay on the roster so their
// numbers are never reused.
type Student struct {
	StudentNumber int    `json:"studentNumber"`
	Name          string `json:"name"`
	Deleted       bool   `json:"deleted"`
}

// Class is a teacher's class with its roster.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeacherID string    `json:"teacher"`
	Admins    []string  `json:"admins"`
	Students  []Student `json:"students"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CanManage reports whether userID is the class teacher or one of its admins.
func (c Class) CanManage(userID string) bool {
	if userID == "" {
		return false
	}
	return c.TeacherID == userID || slices.Contains(c.Admins, userID)
}

// ActiveStudentNumbers returns the numbers of students not marked deleted,
// in roster order.
func (c Class) ActiveStudentNumbers() []int {
	out := make([]int, 0, len(c.Students))
	for _, s := range c.Students {
		if !s.Deleted {
			out = append(out, s.StudentNumber)
		}
	}
	return out
}

// ValidCode reports whether code is a well-formed class code.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !('0' <= c && c <= '9' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// NewCode returns a random class code.
func NewCode() string {
	b := make([]byte, CodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

// Store persists classes and rosters.
type Store interface {
	CreateClass(c Class) (string, error)
	GetClass(id string) (*Class, error)
	AddStudent(classID string, s Student) error
	DeleteStudent(classID string, studentNumber int) error
	DeleteClass(id string) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	classes map[string]*Class
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory class store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{classes: make(map[string]*Class)}
}

func (s *MemoryStore) CreateClass(c Class) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = NewCode()
		for s.classes[c.ID] != nil {
			c.ID = NewCode()
		}
	} else if s.classes[c.ID] != nil {
		return "", errors.New("class code already in use: " + c.ID)
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	c.Admins = slices.Clone(c.Admins)
	c.Students = slices.Clone(c.Students)
	s.classes[c.ID] = &c
	return c.ID, nil
}

func (s *MemoryStore) GetClass(id string) (*Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok || c.Deleted {
		return nil, ErrNotFound
	}
	out := *c
	out.Admins = slices.Clone(c.Admins)
	out.Students = slices.Clone(c.Students)
	return &out, nil
}

func (s *MemoryStore) AddStudent(classID string, st Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[classID]
	if !ok || c.Deleted {
		return ErrNotFound
	}
	for _, existing := range c.Students {
		if existing.StudentNumber == st.StudentNumber {
			return errors.New("student number already in use")
		}
	}
	c.Students = append(c.Students, st)
	c.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteStudent(classID string, studentNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[classID]
	if !ok || c.Deleted {
		return ErrNotFound
	}
	for i := range c.Students {
		if c.Students[i].StudentNumber == studentNumber {
			c.Students[i].Deleted = true
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteClass(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[id]
	if !ok || c.Deleted {
		return ErrNotFound
	}
	c.Deleted = true
	c.UpdatedAt = time.Now()
	return nil
}
