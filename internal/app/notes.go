package app

import (
	"context"
	"fmt"
	"time"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// NoteInput is the payload for a new student note.
type NoteInput struct {
	StudentID       string `json:"student_id" validate:"required"`
	StudentName     string `json:"student_name"`
	Title           string `json:"title" validate:"required"`
	ContentMarkdown string `json:"content_markdown"`
}

// NoteBook keeps markdown notes that staff write about students.
type NoteBook struct {
	notes NoteRepository
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewNoteBook(notes NoteRepository, log logrus.FieldLogger) *NoteBook {
	return &NoteBook{notes: notes, log: orDiscard(log), now: time.Now}
}

// List returns every note, newest first.
func (b *NoteBook) List(ctx context.Context) ([]domain.StudentNote, error) {
	return b.notes.List(ctx)
}

// ListForStudent returns one student's notes, newest first.
func (b *NoteBook) ListForStudent(ctx context.Context, studentID string) ([]domain.StudentNote, error) {
	return b.notes.ListByStudent(ctx, studentID)
}

// Add stores a note and returns its id.
func (b *NoteBook) Add(ctx context.Context, in NoteInput) (int64, error) {
	if err := validateStruct(in); err != nil {
		return 0, err
	}
	now := b.now()
	n := domain.StudentNote{
		StudentID:       in.StudentID,
		StudentName:     in.StudentName,
		Title:           in.Title,
		ContentMarkdown: in.ContentMarkdown,
		CreatedAt:       now,
		UpdatedAt:       &now,
	}
	if err := b.notes.Create(ctx, &n); err != nil {
		return 0, fmt.Errorf("create note: %w", err)
	}
	b.log.WithFields(logrus.Fields{"student_id": in.StudentID, "note_id": n.ID}).Info("note added")
	return n.ID, nil
}

// Update edits note id if it belongs to studentID. Changes is 0 when no such
// note exists for that student.
func (b *NoteBook) Update(ctx context.Context, id int64, studentID string, patch domain.NotePatch) domain.Outcome {
	if patch.Title != nil && *patch.Title == "" {
		return domain.Failed(domain.Invalid("must not be empty", "title"))
	}
	n, err := b.notes.Update(ctx, id, studentID, patch)
	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{"note_id": id, "student_id": studentID}).Warn("update note failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(n)
}

// Delete removes note id if it belongs to studentID. Changes is 0 when no
// such note exists for that student.
func (b *NoteBook) Delete(ctx context.Context, id int64, studentID string) domain.Outcome {
	n, err := b.notes.Delete(ctx, id, studentID)
	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{"note_id": id, "student_id": studentID}).Warn("delete note failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(n)
}
