package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// NoteStore is an in-memory app.NoteRepository.
type NoteStore struct {
	mu     sync.RWMutex
	nextID int64
	clock  func() time.Time
	notes  map[int64]domain.StudentNote
}

func NewNoteStore() *NoteStore {
	return &NoteStore{clock: time.Now, notes: make(map[int64]domain.StudentNote)}
}

func (s *NoteStore) list(match func(domain.StudentNote) bool) []domain.StudentNote {
	s.mu.RLock()
	out := make([]domain.StudentNote, 0, len(s.notes))
	for _, n := range s.notes {
		if match(n) {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *NoteStore) List(_ context.Context) ([]domain.StudentNote, error) {
	return s.list(func(domain.StudentNote) bool { return true }), nil
}

func (s *NoteStore) ListByStudent(_ context.Context, studentID string) ([]domain.StudentNote, error) {
	return s.list(func(n domain.StudentNote) bool { return n.StudentID == studentID }), nil
}

func (s *NoteStore) Create(_ context.Context, n *domain.StudentNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.clock()
	}
	s.notes[n.ID] = *n
	return nil
}

func (s *NoteStore) Update(_ context.Context, id int64, studentID string, patch domain.NotePatch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.StudentID != studentID {
		return 0, nil
	}
	patch.Apply(&n)
	now := s.clock()
	n.UpdatedAt = &now
	s.notes[id] = n
	return 1, nil
}

func (s *NoteStore) Delete(_ context.Context, id int64, studentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.StudentID != studentID {
		return 0, nil
	}
	delete(s.notes, id)
	return 1, nil
}
