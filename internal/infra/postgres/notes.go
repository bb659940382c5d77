package postgres

import (
	"context"
	"time"

	"cohort-admin/internal/domain"
	"github.com/uptrace/bun"
)

// NoteStore is the bun-backed app.NoteRepository.
type NoteStore struct {
	db *bun.DB
}

func NewNoteStore(db *bun.DB) *NoteStore {
	return &NoteStore{db: db}
}

func (s *NoteStore) list(ctx context.Context, studentID *string) ([]domain.StudentNote, error) {
	var rows []noteRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("n.created_at DESC, n.id DESC")
	if studentID != nil {
		q = q.Where("n.student_id = ?", *studentID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.StudentNote, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *NoteStore) List(ctx context.Context) ([]domain.StudentNote, error) {
	return s.list(ctx, nil)
}

func (s *NoteStore) ListByStudent(ctx context.Context, studentID string) ([]domain.StudentNote, error) {
	return s.list(ctx, &studentID)
}

func (s *NoteStore) Create(ctx context.Context, n *domain.StudentNote) error {
	row := &noteRow{
		StudentID:       n.StudentID,
		StudentName:     n.StudentName,
		Title:           n.Title,
		ContentMarkdown: n.ContentMarkdown,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return err
	}
	n.ID = row.ID
	n.CreatedAt = row.CreatedAt
	return nil
}

// Update touches only the note matching both id and studentID and reports
// how many rows changed.
func (s *NoteStore) Update(ctx context.Context, id int64, studentID string, patch domain.NotePatch) (int, error) {
	q := s.db.NewUpdate().
		Model((*noteRow)(nil)).
		Where("id = ?", id).
		Where("student_id = ?", studentID).
		Set("updated_at = ?", time.Now())
	if patch.StudentName != nil {
		q = q.Set("student_name = ?", *patch.StudentName)
	}
	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.ContentMarkdown != nil {
		q = q.Set("content_markdown = ?", *patch.ContentMarkdown)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *NoteStore) Delete(ctx context.Context, id int64, studentID string) (int, error) {
	res, err := s.db.NewDelete().
		Model((*noteRow)(nil)).
		Where("id = ?", id).
		Where("student_id = ?", studentID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
