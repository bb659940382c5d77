package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cohort-admin/internal/domain"
)

// ProjectStore is an in-memory app.ProjectRepository. Upserts happen under
// a single lock so writes for one project id never interleave.
type ProjectStore struct {
	regs *RegistrationStore

	mu          sync.RWMutex
	nextID      int64
	nextClaimID int64
	clock       func() time.Time
	byKey       map[string]domain.Project
	claims      map[int64]domain.ProjectClaim
}

// NewProjectStore joins claim student names against regs, which may be nil.
func NewProjectStore(regs *RegistrationStore) *ProjectStore {
	return &ProjectStore{
		regs:   regs,
		clock:  time.Now,
		byKey:  make(map[string]domain.Project),
		claims: make(map[int64]domain.ProjectClaim),
	}
}

func (s *ProjectStore) Upsert(_ context.Context, p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.UpdatedAt == nil {
		now := s.clock()
		p.UpdatedAt = &now
	}
	if existing, ok := s.byKey[p.ProjectID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		p.ID = s.nextID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = *p.UpdatedAt
		}
	}
	s.byKey[p.ProjectID] = *p
	return nil
}

func (s *ProjectStore) GetByProjectID(_ context.Context, projectID string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byKey[projectID]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectStore) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	out := make([]domain.Project, 0, len(s.byKey))
	for _, p := range s.byKey {
		out = append(out, p)
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

func (s *ProjectStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.byKey {
		if p.ID == id {
			delete(s.byKey, key)
			return nil
		}
	}
	return domain.ErrProjectNotFound
}

func (s *ProjectStore) CreateClaim(_ context.Context, c *domain.ProjectClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextClaimID++
	c.ID = s.nextClaimID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock()
	}
	stored := *c
	stored.StudentName = nil
	s.claims[c.ID] = stored
	return nil
}

func (s *ProjectStore) ClaimsByStudent(_ context.Context, studentID string) ([]domain.ProjectClaim, error) {
	return s.listClaims(func(c domain.ProjectClaim) bool { return c.StudentID == studentID }, false), nil
}

func (s *ProjectStore) Claims(_ context.Context) ([]domain.ProjectClaim, error) {
	return s.listClaims(func(domain.ProjectClaim) bool { return true }, true), nil
}

func (s *ProjectStore) listClaims(keep func(domain.ProjectClaim) bool, withNames bool) []domain.ProjectClaim {
	s.mu.RLock()
	out := make([]domain.ProjectClaim, 0)
	for _, c := range s.claims {
		if keep(c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	if withNames && s.regs != nil {
		for i := range out {
			if name, ok := s.regs.studentName(out[i].StudentID); ok {
				out[i].StudentName = &name
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *ProjectStore) DeleteClaim(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[id]; !ok {
		return domain.ErrClaimNotFound
	}
	delete(s.claims, id)
	return nil
}
