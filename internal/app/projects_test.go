package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"cohort-admin/internal/infra/memory"
)

func TestUpsertProjectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	registry := app.NewProjectRegistryWithClock(memory.NewProjectStore(nil), nil, clock)

	in := projectInput("p-1")
	if out := registry.Upsert(ctx, in); !out.Success {
		t.Fatalf("first upsert: %s", out.Error)
	}
	first, err := registry.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	now = now.Add(time.Hour)
	in.ProjectName = "Renamed"
	if out := registry.Upsert(ctx, in); !out.Success {
		t.Fatalf("second upsert: %s", out.Error)
	}
	second, err := registry.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("upsert must keep identity and creation time: %+v vs %+v", first, second)
	}
	if second.ProjectName != "Renamed" || second.UpdatedAt == nil || !second.UpdatedAt.Equal(now) {
		t.Fatalf("expected overwritten fields and advanced updated_at, got %+v", second)
	}
	all, _ := registry.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected a single project, got %d", len(all))
	}
}

func TestUpsertProjectValidates(t *testing.T) {
	ctx := context.Background()
	registry := app.NewProjectRegistry(memory.NewProjectStore(nil), nil)

	in := projectInput("p-1")
	in.NFTAddress = ""
	out := registry.Upsert(ctx, in)
	if out.Success || !app.IsValidation(out) {
		t.Fatalf("expected validation failure, got %+v", out)
	}
	var verr *domain.ValidationError
	if !errors.As(out.Err, &verr) || len(verr.Fields) != 1 || verr.Fields[0] != "nftAddress" {
		t.Fatalf("expected nftAddress to be reported, got %v", out.Err)
	}
	all, _ := registry.List(ctx)
	if len(all) != 0 {
		t.Fatalf("invalid project must not be stored")
	}
	if _, err := registry.Latest(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no latest project, got %v", err)
	}
}

func TestLatestProject(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	registry := app.NewProjectRegistryWithClock(memory.NewProjectStore(nil), nil, func() time.Time { return now })

	for _, id := range []string{"old", "new"} {
		if out := registry.Upsert(ctx, projectInput(id)); !out.Success {
			t.Fatalf("upsert %s: %s", id, out.Error)
		}
		now = now.Add(time.Minute)
	}
	latest, err := registry.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ProjectID != "new" {
		t.Fatalf("expected newest project, got %q", latest.ProjectID)
	}
	// Re-saving the older project does not make it the latest.
	if out := registry.Upsert(ctx, projectInput("old")); !out.Success {
		t.Fatalf("upsert: %s", out.Error)
	}
	if latest, _ = registry.Latest(ctx); latest.ProjectID != "new" {
		t.Fatalf("expected creation order to decide, got %q", latest.ProjectID)
	}
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	regs := memory.NewRegistrationStore()
	reg, err := app.NewRegistrar(regs, app.IdentityOptions{}, nil).Register(ctx, newRegistration("Alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	registry := app.NewProjectRegistry(memory.NewProjectStore(regs), nil)

	claim, err := registry.AddClaim(ctx, app.ClaimInput{StudentID: reg.StudentID, ProjectID: "p-1", ProjectName: "Demo"})
	if err != nil {
		t.Fatalf("add claim: %v", err)
	}
	if !claim.HasClaimed {
		t.Fatalf("has_claimed should default to true")
	}
	unclaimed := false
	if _, err := registry.AddClaim(ctx, app.ClaimInput{StudentID: "0001", ProjectID: "p-1", HasClaimed: &unclaimed}); err != nil {
		t.Fatalf("add claim: %v", err)
	}
	if _, err := registry.AddClaim(ctx, app.ClaimInput{ProjectID: "p-1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected missing student id to be rejected, got %v", err)
	}

	mine, err := registry.ClaimsForStudent(ctx, reg.StudentID)
	if err != nil {
		t.Fatalf("claims for student: %v", err)
	}
	if len(mine) != 1 || mine[0].ProjectName != "Demo" {
		t.Fatalf("unexpected student claims %+v", mine)
	}

	all, err := registry.AllClaims(ctx)
	if err != nil {
		t.Fatalf("all claims: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(all))
	}
	for _, c := range all {
		switch c.StudentID {
		case reg.StudentID:
			if c.StudentName == nil || *c.StudentName != "Alice" {
				t.Fatalf("expected joined name, got %+v", c)
			}
		default:
			if c.StudentName != nil || c.HasClaimed {
				t.Fatalf("unregistered claimant should have no name, got %+v", c)
			}
		}
	}

	if out := registry.DeleteClaim(ctx, claim.ID); !out.Success {
		t.Fatalf("delete claim: %s", out.Error)
	}
	if out := registry.DeleteClaim(ctx, claim.ID); !errors.Is(out.Err, domain.ErrClaimNotFound) {
		t.Fatalf("expected not found, got %+v", out)
	}
}

func projectInput(id string) app.ProjectInput {
	return app.ProjectInput{
		ProjectID:        id,
		ProjectName:      "Project " + id,
		FactoryAddress:   "0xfactory",
		WhitelistAddress: "0xwhitelist",
		NFTAddress:       "0xnft",
		ClaimAddress:     "0xclaim",
	}
}
