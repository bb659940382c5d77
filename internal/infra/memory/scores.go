package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// ScoreStore is an in-memory app.ScoreRepository.
type ScoreStore struct {
	mu      sync.RWMutex
	nextID  int64
	clock   func() time.Time
	records map[int64]domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{clock: time.Now, records: make(map[int64]domain.ScoreRecord)}
}

func (s *ScoreStore) Create(_ context.Context, rec *domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock()
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *ScoreStore) Update(_ context.Context, id int64, patch domain.ScorePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.ErrScoreNotFound
	}
	patch.Apply(&rec)
	now := s.clock()
	rec.UpdatedAt = &now
	s.records[id] = rec
	return nil
}

func (s *ScoreStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrScoreNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *ScoreStore) ListByStudent(_ context.Context, studentID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	out := make([]domain.ScoreRecord, 0)
	for _, rec := range s.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaskNumber != out[j].TaskNumber {
			return out[i].TaskNumber < out[j].TaskNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ScoreStore) ListAll(_ context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	out := make([]domain.ScoreRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return domain.StudentIDLess(out[i].StudentID, out[j].StudentID)
		}
		if out[i].TaskNumber != out[j].TaskNumber {
			return out[i].TaskNumber < out[j].TaskNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
