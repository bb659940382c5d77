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

func TestNotesScopedToStudent(t *testing.T) {
	ctx := context.Background()
	book := app.NewNoteBook(memory.NewNoteStore(), nil)

	id, err := book.Add(ctx, app.NoteInput{StudentID: "1800", StudentName: "Alice", Title: "Week 1", ContentMarkdown: "# ok"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	title := "Week 1 (revised)"
	if out := book.Update(ctx, id, "1801", domain.NotePatch{Title: &title}); !out.Success || out.Changes != 0 {
		t.Fatalf("another student's id must not match, got %+v", out)
	}
	if out := book.Delete(ctx, id, "1801"); !out.Success || out.Changes != 0 {
		t.Fatalf("another student's id must not delete, got %+v", out)
	}
	if out := book.Update(ctx, id, "1800", domain.NotePatch{Title: &title}); !out.Success || out.Changes != 1 {
		t.Fatalf("update: %+v", out)
	}

	notes, err := book.ListForStudent(ctx, "1800")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != title || notes[0].ContentMarkdown != "# ok" || notes[0].UpdatedAt == nil {
		t.Fatalf("unexpected notes %+v", notes)
	}

	if out := book.Delete(ctx, id, "1800"); !out.Success || out.Changes != 1 {
		t.Fatalf("delete: %+v", out)
	}
	if out := book.Delete(ctx, id, "1800"); !out.Success || out.Changes != 0 {
		t.Fatalf("second delete should touch nothing, got %+v", out)
	}
}

func TestNotesValidation(t *testing.T) {
	ctx := context.Background()
	book := app.NewNoteBook(memory.NewNoteStore(), nil)

	_, err := book.Add(ctx, app.NoteInput{StudentID: "1800"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0] != "title" {
		t.Fatalf("expected title to be required, got %v", err)
	}
	if _, err := book.Add(ctx, app.NoteInput{Title: "orphan"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected student id to be required, got %v", err)
	}
	empty := ""
	if out := book.Update(ctx, 1, "1800", domain.NotePatch{Title: &empty}); !errors.Is(out.Err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty title to be rejected, got %+v", out)
	}
}

func TestNotesListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewNoteStore()
	book := app.NewNoteBook(store, nil)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i, student := range []string{"1800", "1801", "1800"} {
		n := domain.StudentNote{StudentID: student, Title: "n", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Create(ctx, &n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := book.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != 3 || all[2].ID != 1 {
		t.Fatalf("expected newest first, got %+v", all)
	}
	mine, _ := book.ListForStudent(ctx, "1800")
	if len(mine) != 2 || mine[0].ID != 3 || mine[1].ID != 1 {
		t.Fatalf("unexpected student notes %+v", mine)
	}
}
