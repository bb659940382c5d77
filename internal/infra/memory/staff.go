package memory

import (
	"context"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// StaffStore is an in-memory app.StaffRepository.
type StaffStore struct {
	mu     sync.RWMutex
	nextID int64
	staff  map[int64]domain.Staff
}

func NewStaffStore() *StaffStore {
	return &StaffStore{staff: make(map[int64]domain.Staff)}
}

func (s *StaffStore) GetByWallet(_ context.Context, wallet string) (domain.Staff, error) {
	return s.first(func(st domain.Staff) bool { return st.WalletAddress == wallet })
}

func (s *StaffStore) FirstWithRole(_ context.Context, role string) (domain.Staff, error) {
	return s.first(func(st domain.Staff) bool { return st.Role == role })
}

func (s *StaffStore) first(match func(domain.Staff) bool) (domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		found domain.Staff
		ok    bool
	)
	for _, st := range s.staff {
		if match(st) && (!ok || st.ID < found.ID) {
			found, ok = st, true
		}
	}
	if !ok {
		return domain.Staff{}, domain.ErrStaffNotFound
	}
	return found, nil
}

func (s *StaffStore) Create(_ context.Context, st *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	st.ID = s.nextID
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	s.staff[st.ID] = *st
	return nil
}

func (s *StaffStore) UpdateWallet(_ context.Context, id int64, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.staff[id]
	if !ok {
		return domain.ErrStaffNotFound
	}
	st.WalletAddress = wallet
	s.staff[id] = st
	return nil
}
