package postgres

import (
	"context"
	"fmt"
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// RegistrationStore is the bun-backed app.RegistrationRepository. The
// student_id unique constraint arbitrates concurrent issuance.
type RegistrationStore struct {
	db *bun.DB
}

func NewRegistrationStore(db *bun.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

// MaxStudentID orders by length before text so "10000" sorts above "9999".
func (s *RegistrationStore) MaxStudentID(ctx context.Context) (string, bool, error) {
	var ids []string
	err := s.db.NewRaw(`
		SELECT student_id FROM (
			SELECT student_id FROM registrations
			UNION ALL
			SELECT student_id FROM retired_student_ids
		) AS issued
		ORDER BY length(student_id) DESC, student_id DESC
		LIMIT 1`).Scan(ctx, &ids)
	if err != nil {
		return "", false, fmt.Errorf("max student id: %w", err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

func (s *RegistrationStore) Create(ctx context.Context, reg *domain.Registration) error {
	row := registrationFromDomain(*reg)
	row.ID = 0
	_, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateStudentID
		}
		return err
	}
	reg.ID = row.ID
	reg.CreatedAt = row.CreatedAt
	return nil
}

func (s *RegistrationStore) get(ctx context.Context, where string, arg any) (domain.Registration, error) {
	row := new(registrationRow)
	err := s.db.NewSelect().Model(row).Where(where, arg).OrderExpr("r.id ASC").Limit(1).Scan(ctx)
	if err != nil {
		return domain.Registration{}, mapNoRows(err, domain.ErrRegistrationNotFound)
	}
	return row.toDomain(), nil
}

func (s *RegistrationStore) Get(ctx context.Context, id int64) (domain.Registration, error) {
	return s.get(ctx, "r.id = ?", id)
}

func (s *RegistrationStore) GetByStudentID(ctx context.Context, studentID string) (domain.Registration, error) {
	return s.get(ctx, "r.student_id = ?", studentID)
}

func (s *RegistrationStore) GetByWallet(ctx context.Context, wallet string) (domain.Registration, error) {
	return s.get(ctx, "r.wallet_address = ?", wallet)
}

func (s *RegistrationStore) List(ctx context.Context, approved *bool) ([]domain.Registration, error) {
	var rows []registrationRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("r.created_at DESC, r.id DESC")
	if approved != nil {
		q = q.Where("r.approved = ?", *approved)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Registration, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *RegistrationStore) Update(ctx context.Context, id int64, patch domain.RegistrationPatch) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(registrationRow)
		err := tx.NewSelect().Model(row).Where("r.id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			return mapNoRows(err, domain.ErrRegistrationNotFound)
		}
		reg := row.toDomain()
		patch.Apply(&reg)
		now := time.Now()
		reg.UpdatedAt = &now

		_, err = tx.NewUpdate().
			Model(registrationFromDomain(reg)).
			ExcludeColumn("id", "student_id", "created_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

// Delete removes the registration and retires its student id in one transaction.
func (s *RegistrationStore) Delete(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var studentIDs []string
		_, err := tx.NewDelete().
			Model((*registrationRow)(nil)).
			Where("id = ?", id).
			Returning("student_id").
			Exec(ctx, &studentIDs)
		if err != nil {
			return err
		}
		if len(studentIDs) == 0 {
			return domain.ErrRegistrationNotFound
		}
		_, err = tx.NewInsert().
			Model(&retiredStudentIDRow{StudentID: studentIDs[0]}).
			On("CONFLICT (student_id) DO NOTHING").
			Exec(ctx)
		return err
	})
}
