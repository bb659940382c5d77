package postgres

import (
	"context"
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// QuestionStore is the bun-backed app.QuestionRepository.
type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) List(ctx context.Context, taskNumber *int) ([]domain.Question, error) {
	var rows []questionRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("q.task_number ASC, q.question_number ASC, q.id ASC")
	if taskNumber != nil {
		q = q.Where("q.task_number = ?", *taskNumber)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(rows))
	for i := range rows {
		question, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, question)
	}
	return out, nil
}

func (s *QuestionStore) Create(ctx context.Context, q *domain.Question) error {
	raw, err := domain.EncodeOptions(q.Options)
	if err != nil {
		return err
	}
	now := time.Now()
	row := &questionRow{
		TaskNumber:     q.TaskNumber,
		QuestionNumber: q.QuestionNumber,
		QuestionText:   q.QuestionText,
		Options:        raw,
		CorrectOption:  q.CorrectOption,
		Score:          q.Points,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return err
	}
	q.ID = row.ID
	q.CreatedAt = row.CreatedAt
	q.UpdatedAt = row.UpdatedAt
	return nil
}

// Update locks the row, validates the patched question and rewrites it.
func (s *QuestionStore) Update(ctx context.Context, id int64, patch domain.QuestionPatch) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(questionRow)
		err := tx.NewSelect().Model(row).Where("q.id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			return mapNoRows(err, domain.ErrQuestionNotFound)
		}
		// Replacing the options must work even when the stored ones are corrupt.
		q := row.withoutOptions()
		if patch.Options == nil {
			if q, err = row.toDomain(); err != nil {
				return err
			}
		}
		patch.Apply(&q)
		if err := q.Validate(); err != nil {
			return err
		}
		raw, err := domain.EncodeOptions(q.Options)
		if err != nil {
			return err
		}
		row.TaskNumber = q.TaskNumber
		row.QuestionNumber = q.QuestionNumber
		row.QuestionText = q.QuestionText
		row.Options = raw
		row.CorrectOption = q.CorrectOption
		row.Score = q.Points
		row.UpdatedAt = time.Now()
		_, err = tx.NewUpdate().Model(row).ExcludeColumn("id", "created_at").WherePK().Exec(ctx)
		return err
	})
}

func (s *QuestionStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrQuestionNotFound)
}

// DeleteByTask removes the whole task in one statement.
func (s *QuestionStore) DeleteByTask(ctx context.Context, taskNumber int) (int, error) {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("task_number = ?", taskNumber).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
