package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// questionRow keeps options serialized, as the database does, so reads go
// through the same decode path.
type questionRow struct {
	q       domain.Question
	options string
}

// QuestionStore is an in-memory app.QuestionRepository and app.AnswerKeySource.
type QuestionStore struct {
	mu     sync.RWMutex
	nextID int64
	clock  func() time.Time
	rows   map[int64]questionRow
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{clock: time.Now, rows: make(map[int64]questionRow)}
}

func (s *QuestionStore) decode(row questionRow) (domain.Question, error) {
	opts, err := domain.DecodeOptions(row.q.ID, row.options)
	if err != nil {
		return domain.Question{}, err
	}
	q := row.q
	q.Options = opts
	return q, nil
}

func (s *QuestionStore) List(_ context.Context, taskNumber *int) ([]domain.Question, error) {
	s.mu.RLock()
	rows := make([]questionRow, 0, len(s.rows))
	for _, row := range s.rows {
		if taskNumber != nil && row.q.TaskNumber != *taskNumber {
			continue
		}
		rows = append(rows, row)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].q, rows[j].q
		if a.TaskNumber != b.TaskNumber {
			return a.TaskNumber < b.TaskNumber
		}
		if a.QuestionNumber != b.QuestionNumber {
			return a.QuestionNumber < b.QuestionNumber
		}
		return a.ID < b.ID
	})

	out := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q, err := s.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *QuestionStore) Create(_ context.Context, q *domain.Question) error {
	raw, err := domain.EncodeOptions(q.Options)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := s.clock()
	q.ID = s.nextID
	q.CreatedAt = now
	q.UpdatedAt = now
	stored := *q
	stored.Options = nil
	s.rows[q.ID] = questionRow{q: stored, options: raw}
	return nil
}

func (s *QuestionStore) Update(_ context.Context, id int64, patch domain.QuestionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q := row.q
	if patch.Options == nil {
		decoded, err := s.decode(row)
		if err != nil {
			return err
		}
		q = decoded
	}
	patch.Apply(&q)
	if err := q.Validate(); err != nil {
		return err
	}
	raw, err := domain.EncodeOptions(q.Options)
	if err != nil {
		return err
	}
	q.Options = nil
	q.UpdatedAt = s.clock()
	s.rows[id] = questionRow{q: q, options: raw}
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *QuestionStore) DeleteByTask(_ context.Context, taskNumber int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, row := range s.rows {
		if row.q.TaskNumber == taskNumber {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

// AnswerKeys decodes every question's options before trusting its key.
func (s *QuestionStore) AnswerKeys(_ context.Context) (map[int64]domain.AnswerKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make(map[int64]domain.AnswerKey, len(s.rows))
	for id, row := range s.rows {
		q, err := s.decode(row)
		if err != nil {
			return nil, err
		}
		keys[id] = domain.KeyOf(q)
	}
	return keys, nil
}
