package postgres

import (
	"context"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// StaffStore is the bun-backed app.StaffRepository.
type StaffStore struct {
	db *bun.DB
}

func NewStaffStore(db *bun.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) first(ctx context.Context, where string, arg any) (domain.Staff, error) {
	row := new(staffRow)
	if err := s.db.NewSelect().Model(row).Where(where, arg).OrderExpr("s.id ASC").Limit(1).Scan(ctx); err != nil {
		return domain.Staff{}, mapNoRows(err, domain.ErrStaffNotFound)
	}
	return row.toDomain(), nil
}

func (s *StaffStore) GetByWallet(ctx context.Context, wallet string) (domain.Staff, error) {
	return s.first(ctx, "s.wallet_address = ?", wallet)
}

func (s *StaffStore) FirstWithRole(ctx context.Context, role string) (domain.Staff, error) {
	return s.first(ctx, "s.role = ?", role)
}

func (s *StaffStore) Create(ctx context.Context, st *domain.Staff) error {
	row := &staffRow{
		Name:          st.Name,
		WechatID:      st.WechatID,
		Phone:         st.Phone,
		Role:          st.Role,
		WalletAddress: st.WalletAddress,
		CreatedAt:     st.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	st.ID = row.ID
	st.CreatedAt = row.CreatedAt
	return nil
}

func (s *StaffStore) UpdateWallet(ctx context.Context, id int64, wallet string) error {
	res, err := s.db.NewUpdate().Model((*staffRow)(nil)).
		Set("wallet_address = ?", wallet).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrStaffNotFound)
}
