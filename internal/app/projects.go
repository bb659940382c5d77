package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// ProjectInput is the upsert payload for a project.
type ProjectInput struct {
	ProjectID        string `json:"projectId" validate:"required"`
	ProjectName      string `json:"projectName" validate:"required"`
	FactoryAddress   string `json:"factoryAddress" validate:"required"`
	WhitelistAddress string `json:"whitelistAddress" validate:"required"`
	NFTAddress       string `json:"nftAddress" validate:"required"`
	ClaimAddress     string `json:"claimAddress" validate:"required"`
	ERC20Address     string `json:"erc20Address"`
}

// ClaimInput records a student's claim on a project.
type ClaimInput struct {
	StudentID    string `json:"student_id" validate:"required"`
	ProjectID    string `json:"project_id" validate:"required"`
	ProjectName  string `json:"project_name"`
	NFTAddress   string `json:"nft_address"`
	ClaimAddress string `json:"claim_address"`
	ERC20Address string `json:"erc20_address"`
	HasClaimed   *bool  `json:"has_claimed"`
}

// ProjectRegistry keeps project contract addresses and student claims.
type ProjectRegistry struct {
	projects ProjectRepository
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewProjectRegistry(projects ProjectRepository, log logrus.FieldLogger) *ProjectRegistry {
	return NewProjectRegistryWithClock(projects, log, time.Now)
}

// NewProjectRegistryWithClock is used by tests for deterministic timestamps.
func NewProjectRegistryWithClock(projects ProjectRepository, log logrus.FieldLogger, now func() time.Time) *ProjectRegistry {
	return &ProjectRegistry{projects: projects, log: orDiscard(log), now: now}
}

// Upsert creates or overwrites the project keyed by in.ProjectID. Invalid
// input fails with a *domain.ValidationError before the store is touched.
func (r *ProjectRegistry) Upsert(ctx context.Context, in ProjectInput) domain.Outcome {
	if err := validateStruct(in); err != nil {
		return domain.Failed(err)
	}
	now := r.now()
	p := domain.Project{
		ProjectID:        in.ProjectID,
		ProjectName:      in.ProjectName,
		FactoryAddress:   in.FactoryAddress,
		WhitelistAddress: in.WhitelistAddress,
		NFTAddress:       in.NFTAddress,
		ClaimAddress:     in.ClaimAddress,
		ERC20Address:     in.ERC20Address,
		CreatedAt:        now,
		UpdatedAt:        &now,
	}
	if err := r.projects.Upsert(ctx, &p); err != nil {
		r.log.WithError(err).WithField("project_id", in.ProjectID).Error("save project failed")
		return domain.Failed(fmt.Errorf("save project: %w", err))
	}
	r.log.WithField("project_id", in.ProjectID).Info("project saved")
	return domain.Succeeded(1)
}

func (r *ProjectRegistry) Get(ctx context.Context, projectID string) (domain.Project, error) {
	return r.projects.GetByProjectID(ctx, projectID)
}

// List returns projects newest first.
func (r *ProjectRegistry) List(ctx context.Context) ([]domain.Project, error) {
	return r.projects.List(ctx)
}

// Latest returns the most recently created project.
func (r *ProjectRegistry) Latest(ctx context.Context) (domain.Project, error) {
	projects, err := r.projects.List(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) == 0 {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return projects[0], nil
}

func (r *ProjectRegistry) Delete(ctx context.Context, id int64) domain.Outcome {
	if err := r.projects.Delete(ctx, id); err != nil {
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}

// AddClaim records a claim; HasClaimed defaults to true.
func (r *ProjectRegistry) AddClaim(ctx context.Context, in ClaimInput) (domain.ProjectClaim, error) {
	if err := validateStruct(in); err != nil {
		return domain.ProjectClaim{}, err
	}
	claimed := true
	if in.HasClaimed != nil {
		claimed = *in.HasClaimed
	}
	c := domain.ProjectClaim{
		StudentID:    in.StudentID,
		ProjectID:    in.ProjectID,
		ProjectName:  in.ProjectName,
		NFTAddress:   in.NFTAddress,
		ClaimAddress: in.ClaimAddress,
		ERC20Address: in.ERC20Address,
		HasClaimed:   claimed,
		CreatedAt:    r.now(),
	}
	if err := r.projects.CreateClaim(ctx, &c); err != nil {
		return domain.ProjectClaim{}, fmt.Errorf("create claim: %w", err)
	}
	return c, nil
}

func (r *ProjectRegistry) ClaimsForStudent(ctx context.Context, studentID string) ([]domain.ProjectClaim, error) {
	return r.projects.ClaimsByStudent(ctx, studentID)
}

func (r *ProjectRegistry) AllClaims(ctx context.Context) ([]domain.ProjectClaim, error) {
	return r.projects.Claims(ctx)
}

func (r *ProjectRegistry) DeleteClaim(ctx context.Context, id int64) domain.Outcome {
	if err := r.projects.DeleteClaim(ctx, id); err != nil {
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}

// IsValidation reports whether an outcome failed input validation.
func IsValidation(out domain.Outcome) bool {
	var verr *domain.ValidationError
	return out.Err != nil && errors.As(out.Err, &verr)
}
