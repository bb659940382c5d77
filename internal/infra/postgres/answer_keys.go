package postgres

import (
	"context"
	"fmt"

	"cohort-admin/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerKeyLoader reads the grading view of the question bank straight from
// the pool, skipping the bun model layer. Options are decoded only to verify
// that the stored column is intact.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) AnswerKeys(ctx context.Context) (map[int64]domain.AnswerKey, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, task_number, correct_option, score, options FROM choice_questions`)
	if err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[int64]domain.AnswerKey)
	for rows.Next() {
		var (
			q   domain.Question
			raw string
		)
		if err := rows.Scan(&q.ID, &q.TaskNumber, &q.CorrectOption, &q.Points, &raw); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		if _, err := domain.DecodeOptions(q.ID, raw); err != nil {
			return nil, err
		}
		keys[q.ID] = domain.KeyOf(q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	return keys, nil
}

// OpenPool connects the pgx pool used for the grading read path.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pool: %w", err)
	}
	return pool, nil
}
