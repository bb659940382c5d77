package postgres

import (
	"context"
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// ScoreStore is the bun-backed app.ScoreRepository.
type ScoreStore struct {
	db *bun.DB
}

func NewScoreStore(db *bun.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Create(ctx context.Context, rec *domain.ScoreRecord) error {
	row := &scoreRow{
		StudentID:  rec.StudentID,
		TaskNumber: rec.TaskNumber,
		ScoreType:  string(rec.ScoreType),
		Score:      rec.Score,
		Completed:  rec.Completed,
		CreatedAt:  rec.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	rec.ID = row.ID
	rec.CreatedAt = row.CreatedAt
	return nil
}

func (s *ScoreStore) Update(ctx context.Context, id int64, patch domain.ScorePatch) error {
	q := s.db.NewUpdate().Model((*scoreRow)(nil)).Where("id = ?", id).Set("updated_at = ?", time.Now())
	if patch.Score != nil {
		q = q.Set("score = ?", *patch.Score)
	}
	if patch.Completed != nil {
		q = q.Set("completed = ?", *patch.Completed)
	}
	if patch.ScoreType != nil {
		q = q.Set("score_type = ?", string(*patch.ScoreType))
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrScoreNotFound)
}

func (s *ScoreStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*scoreRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrScoreNotFound)
}

func (s *ScoreStore) ListByStudent(ctx context.Context, studentID string) ([]domain.ScoreRecord, error) {
	var rows []scoreRow
	err := s.db.NewSelect().Model(&rows).
		Where("ts.student_id = ?", studentID).
		OrderExpr("ts.task_number ASC, ts.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return scoresToDomain(rows), nil
}

func (s *ScoreStore) ListAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	var rows []scoreRow
	err := s.db.NewSelect().Model(&rows).
		OrderExpr("length(ts.student_id) ASC, ts.student_id ASC, ts.task_number ASC, ts.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return scoresToDomain(rows), nil
}

func scoresToDomain(rows []scoreRow) []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
