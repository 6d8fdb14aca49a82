// Package feedback persists per-course and per-lesson star ratings.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// keyScope prefixes every stored key so the records are recognizable in a
// shared keyspace.
const keyScope = "geeddi-feedback"

// CourseLevel marks a key that rates the whole course rather than one lesson.
const CourseLevel = -1

// ErrInvalidRating is returned by Save for ratings outside [1,5]. A zero
// rating means "unset" and is never persisted.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Record is one saved rating with an optional comment.
type Record struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Key identifies a feedback record by course title and lesson index.
type Key struct {
	CourseTitle string
	LessonIndex int // CourseLevel for course-wide feedback
}

// String renders the composite storage key:
// "geeddi-feedback-<courseTitle>" or "geeddi-feedback-<courseTitle>-<lessonIndex>".
func (k Key) String() string {
	if k.LessonIndex == CourseLevel {
		return fmt.Sprintf("%s-%s", keyScope, k.CourseTitle)
	}
	return fmt.Sprintf("%s-%s-%d", keyScope, k.CourseTitle, k.LessonIndex)
}

// Store persists feedback records. Save overwrites any existing record for
// the same key; re-editing in the UI only clears a client-side submitted
// flag, the stored record stays until the next save.
type Store interface {
	Load(ctx context.Context, key Key) (Record, bool, error)
	Save(ctx context.Context, key Key, rec Record) error
}

func validate(rec Record) error {
	if rec.Rating < 1 || rec.Rating > 5 {
		return fmt.Errorf("%w, got %d", ErrInvalidRating, rec.Rating)
	}
	return nil
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an in-memory feedback store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) Load(_ context.Context, key Key) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key.String()]
	return rec, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, key Key, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[key.String()] = rec
	s.mu.Unlock()
	return nil
}
