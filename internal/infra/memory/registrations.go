package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// RegistrationStore is an in-memory app.RegistrationRepository. Student ids
// are unique and deleted ones are retired, mirroring the Postgres schema.
type RegistrationStore struct {
	mu      sync.RWMutex
	nextID  int64
	clock   func() time.Time
	byID    map[int64]domain.Registration
	taken   map[string]int64
	retired map[string]struct{}
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{
		clock:   time.Now,
		byID:    make(map[int64]domain.Registration),
		taken:   make(map[string]int64),
		retired: make(map[string]struct{}),
	}
}

func (s *RegistrationStore) MaxStudentID(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best, ok := "", false
	consider := func(id string) {
		if !ok || domain.StudentIDLess(best, id) {
			best, ok = id, true
		}
	}
	for id := range s.taken {
		consider(id)
	}
	for id := range s.retired {
		consider(id)
	}
	return best, ok, nil
}

func (s *RegistrationStore) Create(_ context.Context, reg *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taken[reg.StudentID]; ok {
		return domain.ErrDuplicateStudentID
	}
	if _, ok := s.retired[reg.StudentID]; ok {
		return domain.ErrDuplicateStudentID
	}
	s.nextID++
	reg.ID = s.nextID
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = s.clock()
	}
	s.byID[reg.ID] = *reg
	s.taken[reg.StudentID] = reg.ID
	return nil
}

func (s *RegistrationStore) Get(_ context.Context, id int64) (domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byID[id]
	if !ok {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *RegistrationStore) GetByStudentID(_ context.Context, studentID string) (domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.taken[studentID]
	if !ok {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return s.byID[id], nil
}

func (s *RegistrationStore) GetByWallet(_ context.Context, wallet string) (domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		found domain.Registration
		ok    bool
	)
	for _, reg := range s.byID {
		if reg.WalletAddress == wallet && (!ok || reg.ID < found.ID) {
			found, ok = reg, true
		}
	}
	if !ok {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return found, nil
}

func (s *RegistrationStore) List(_ context.Context, approved *bool) ([]domain.Registration, error) {
	s.mu.RLock()
	out := make([]domain.Registration, 0, len(s.byID))
	for _, reg := range s.byID {
		if approved != nil {
			if reg.Approved == nil || *reg.Approved != *approved {
				continue
			}
		}
		out = append(out, reg)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *RegistrationStore) Update(_ context.Context, id int64, patch domain.RegistrationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	patch.Apply(&reg)
	now := s.clock()
	reg.UpdatedAt = &now
	s.byID[id] = reg
	return nil
}

func (s *RegistrationStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	delete(s.byID, id)
	delete(s.taken, reg.StudentID)
	s.retired[reg.StudentID] = struct{}{}
	return nil
}

// studentName resolves a student's name for joins.
func (s *RegistrationStore) studentName(studentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.taken[studentID]
	if !ok {
		return "", false
	}
	return s.byID[id].StudentName, true
}
