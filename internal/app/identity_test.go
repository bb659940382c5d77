package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"cohort-admin/internal/infra/memory"
)

func TestNextStudentID(t *testing.T) {
	cases := []struct {
		current, floor string
		width          int
		want           string
	}{
		{"", "1799", 4, "1800"},
		{"1800", "1799", 4, "1801"},
		{"0042", "1799", 4, "0043"},
		{"9999", "1799", 4, "10000"},
		{"", "99", 6, "000100"},
	}
	for _, c := range cases {
		got, err := app.NextStudentID(c.current, c.floor, c.width)
		if err != nil {
			t.Fatalf("NextStudentID(%q, %q, %d): %v", c.current, c.floor, c.width, err)
		}
		if got != c.want {
			t.Fatalf("NextStudentID(%q, %q, %d) = %q, want %q", c.current, c.floor, c.width, got, c.want)
		}
	}

	_, err := app.NextStudentID("A12", "1799", 4)
	var seqErr *domain.SequencingError
	if !errors.As(err, &seqErr) {
		t.Fatalf("expected SequencingError for non-numeric id, got %v", err)
	}
}

func TestRegisterIssuesSequentialIDs(t *testing.T) {
	ctx := context.Background()
	registrar := app.NewRegistrar(memory.NewRegistrationStore(), app.IdentityOptions{}, nil)

	first, err := registrar.Register(ctx, newRegistration("Alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := registrar.Register(ctx, newRegistration("Bob"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.StudentID != "1800" || second.StudentID != "1801" {
		t.Fatalf("expected 1800 then 1801, got %q and %q", first.StudentID, second.StudentID)
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt == nil {
		t.Fatalf("expected timestamps to be set, got %+v", first)
	}
}

func TestRegisterIgnoresClientStudentID(t *testing.T) {
	ctx := context.Background()
	registrar := app.NewRegistrar(memory.NewRegistrationStore(), app.IdentityOptions{}, nil)

	reg := newRegistration("Mallory")
	reg.StudentID = "0001"
	approved := true
	reg.Approved = &approved
	got, err := registrar.Register(ctx, reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.StudentID != "1800" || got.Approved != nil {
		t.Fatalf("expected server-issued id and no approval, got %q approved=%v", got.StudentID, got.Approved)
	}
}

func TestRegisterRequiresContactFields(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRegistrationStore()
	registrar := app.NewRegistrar(store, app.IdentityOptions{}, nil)

	_, err := registrar.Register(ctx, domain.Registration{StudentName: "NoWallet", WechatID: "nw"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "wallet_address" {
		t.Fatalf("expected wallet_address to be reported, got %v", verr.Fields)
	}
	if _, ok, _ := store.MaxStudentID(ctx); ok {
		t.Fatalf("rejected registration must not be stored")
	}
}

func TestRegisterWidthGrowth(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRegistrationStore()
	seed := newRegistration("Seed")
	seed.StudentID = "9999"
	if err := store.Create(ctx, &seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	registrar := app.NewRegistrar(store, app.IdentityOptions{}, nil)

	reg, err := registrar.Register(ctx, newRegistration("Next"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.StudentID != "10000" {
		t.Fatalf("expected 10000, got %q", reg.StudentID)
	}
	// "10000" must now outrank "9999" even though it sorts lower as text.
	reg, err = registrar.Register(ctx, newRegistration("After"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.StudentID != "10001" {
		t.Fatalf("expected 10001, got %q", reg.StudentID)
	}
}

func TestRegisterDoesNotReuseDeletedID(t *testing.T) {
	ctx := context.Background()
	registrar := app.NewRegistrar(memory.NewRegistrationStore(), app.IdentityOptions{}, nil)

	if _, err := registrar.Register(ctx, newRegistration("Alice")); err != nil {
		t.Fatalf("register: %v", err)
	}
	latest, err := registrar.Register(ctx, newRegistration("Bob"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if out := registrar.Delete(ctx, latest.ID); !out.Success {
		t.Fatalf("delete: %s", out.Error)
	}
	next, err := registrar.Register(ctx, newRegistration("Carol"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if next.StudentID == latest.StudentID {
		t.Fatalf("deleted id %q was reissued", latest.StudentID)
	}
	if next.StudentID != "1802" {
		t.Fatalf("expected 1802, got %q", next.StudentID)
	}
}

func TestRegisterConcurrentIDsAreDistinct(t *testing.T) {
	ctx := context.Background()
	const n = 50
	// Each lost race means another registration succeeded, so n attempts always suffice.
	registrar := app.NewRegistrar(memory.NewRegistrationStore(), app.IdentityOptions{MaxRetries: n}, nil)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := registrar.Register(ctx, newRegistration("student"))
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids[reg.StudentID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent register: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(ids))
	}
	for id := range ids {
		if len(id) != 4 || id <= "1799" {
			t.Fatalf("id %q is not above the floor", id)
		}
	}
}

func TestRegisterGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := &alwaysTakenRepo{RegistrationStore: memory.NewRegistrationStore()}
	registrar := app.NewRegistrar(repo, app.IdentityOptions{}, nil)

	_, err := registrar.Register(ctx, newRegistration("Unlucky"))
	var seqErr *domain.SequencingError
	if !errors.As(err, &seqErr) {
		t.Fatalf("expected SequencingError, got %v", err)
	}
	if seqErr.Attempts != app.DefaultIssueRetries || repo.creates != app.DefaultIssueRetries {
		t.Fatalf("expected %d attempts, got attempts=%d creates=%d", app.DefaultIssueRetries, seqErr.Attempts, repo.creates)
	}
	if !errors.Is(err, domain.ErrDuplicateStudentID) {
		t.Fatalf("expected the duplicate error to be wrapped, got %v", err)
	}
}

func TestRegisterRejectsCorruptMaximum(t *testing.T) {
	ctx := context.Background()
	repo := &alwaysTakenRepo{RegistrationStore: memory.NewRegistrationStore(), max: "18x0"}
	registrar := app.NewRegistrar(repo, app.IdentityOptions{}, nil)

	_, err := registrar.Register(ctx, newRegistration("Unlucky"))
	var seqErr *domain.SequencingError
	if !errors.As(err, &seqErr) {
		t.Fatalf("expected SequencingError, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("nothing should be written when the maximum is unreadable")
	}
}

func TestRegistrationUpdateKeepsStudentID(t *testing.T) {
	ctx := context.Background()
	registrar := app.NewRegistrar(memory.NewRegistrationStore(), app.IdentityOptions{}, nil)
	reg, err := registrar.Register(ctx, newRegistration("Alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	city := "Shanghai"
	if out := registrar.Update(ctx, reg.ID, domain.RegistrationPatch{City: &city}); !out.Success || out.Changes != 1 {
		t.Fatalf("update: %+v", out)
	}
	got, err := registrar.Get(ctx, reg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.City != city || got.StudentID != reg.StudentID {
		t.Fatalf("unexpected registration after update %+v", got)
	}

	out := registrar.SetApproval(ctx, 999, true)
	if out.Success || !errors.Is(out.Err, domain.ErrNotFound) {
		t.Fatalf("expected not found outcome, got %+v", out)
	}
}

// alwaysTakenRepo reports every candidate id as already issued.
type alwaysTakenRepo struct {
	*memory.RegistrationStore
	max     string
	creates int
}

func (r *alwaysTakenRepo) MaxStudentID(context.Context) (string, bool, error) {
	return r.max, r.max != "", nil
}

func (r *alwaysTakenRepo) Create(context.Context, *domain.Registration) error {
	r.creates++
	return domain.ErrDuplicateStudentID
}

func newRegistration(name string) domain.Registration {
	return domain.Registration{
		StudentName:   name,
		WechatID:      name + "-wechat",
		WalletAddress: "0x" + name,
	}
}
