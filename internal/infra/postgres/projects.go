package postgres

import (
	"context"
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// ProjectStore is the bun-backed app.ProjectRepository.
type ProjectStore struct {
	db *bun.DB
}

func NewProjectStore(db *bun.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Upsert is a single INSERT ... ON CONFLICT statement, so concurrent writes
// for one project id are serialized by the row lock and never mix fields.
func (s *ProjectStore) Upsert(ctx context.Context, p *domain.Project) error {
	now := time.Now()
	if p.UpdatedAt == nil {
		p.UpdatedAt = &now
	}
	row := &projectRow{
		ProjectID:        p.ProjectID,
		ProjectName:      p.ProjectName,
		FactoryAddress:   p.FactoryAddress,
		WhitelistAddress: p.WhitelistAddress,
		NFTAddress:       p.NFTAddress,
		ClaimAddress:     p.ClaimAddress,
		ERC20Address:     p.ERC20Address,
		CreatedAt:        *p.UpdatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (project_id) DO UPDATE").
		Set("project_name = EXCLUDED.project_name").
		Set("factory_address = EXCLUDED.factory_address").
		Set("whitelist_address = EXCLUDED.whitelist_address").
		Set("nft_address = EXCLUDED.nft_address").
		Set("claim_address = EXCLUDED.claim_address").
		Set("erc20_address = EXCLUDED.erc20_address").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	return nil
}

func (s *ProjectStore) GetByProjectID(ctx context.Context, projectID string) (domain.Project, error) {
	row := new(projectRow)
	if err := s.db.NewSelect().Model(row).Where("p.project_id = ?", projectID).Scan(ctx); err != nil {
		return domain.Project{}, mapNoRows(err, domain.ErrProjectNotFound)
	}
	return row.toDomain(), nil
}

func (s *ProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	var rows []projectRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("p.created_at DESC, p.id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*projectRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrProjectNotFound)
}

func (s *ProjectStore) CreateClaim(ctx context.Context, c *domain.ProjectClaim) error {
	row := &claimRow{
		StudentID:    c.StudentID,
		ProjectID:    c.ProjectID,
		ProjectName:  c.ProjectName,
		NFTAddress:   c.NFTAddress,
		ClaimAddress: c.ClaimAddress,
		ERC20Address: c.ERC20Address,
		HasClaimed:   c.HasClaimed,
		CreatedAt:    c.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	return nil
}

func (s *ProjectStore) ClaimsByStudent(ctx context.Context, studentID string) ([]domain.ProjectClaim, error) {
	var rows []claimRow
	err := s.db.NewSelect().Model(&rows).
		Where("c.student_id = ?", studentID).
		OrderExpr("c.created_at DESC, c.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return claimsToDomain(rows), nil
}

// Claims left-joins registrations so claims of deleted students keep a nil name.
func (s *ProjectStore) Claims(ctx context.Context) ([]domain.ProjectClaim, error) {
	var rows []claimRow
	err := s.db.NewSelect().Model(&rows).
		ColumnExpr("c.*").
		ColumnExpr("r.student_name AS student_name").
		Join("LEFT JOIN registrations AS r ON r.student_id = c.student_id").
		OrderExpr("c.created_at DESC, c.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return claimsToDomain(rows), nil
}

func (s *ProjectStore) DeleteClaim(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*claimRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrClaimNotFound)
}

func claimsToDomain(rows []claimRow) []domain.ProjectClaim {
	out := make([]domain.ProjectClaim, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
