package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"cohort-admin/internal/infra/memory"
)

func TestRecordValidatesScoreType(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	ledger := app.NewScoreLedger(scores, nil, nil)

	if _, err := ledger.Record(ctx, "1800", 1, domain.ScoreType("bonus"), 5, true); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := ledger.Record(ctx, "", 1, domain.ScorePractice, 5, true); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected missing student id to be rejected, got %v", err)
	}
	id, err := ledger.Record(ctx, "1800", 1, domain.ScorePractice, 5, true)
	if err != nil || id == 0 {
		t.Fatalf("record: id=%d err=%v", id, err)
	}
	records, _ := ledger.ListForStudent(ctx, "1800")
	if len(records) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(records))
	}
}

func TestRecordAppendsDuplicates(t *testing.T) {
	ctx := context.Background()
	ledger := app.NewScoreLedger(memory.NewScoreStore(), nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := ledger.Record(ctx, "1800", 2, domain.ScoreChoice, 3, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	records, err := ledger.ListForStudent(ctx, "1800")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected both records kept, got %d", len(records))
	}
}

func TestUpdateAndDeleteScore(t *testing.T) {
	ctx := context.Background()
	ledger := app.NewScoreLedger(memory.NewScoreStore(), nil, nil)
	id, err := ledger.Record(ctx, "1800", 1, domain.ScorePractice, 5, false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	score, completed := 9, true
	if out := ledger.Update(ctx, id, domain.ScorePatch{Score: &score, Completed: &completed}); !out.Success {
		t.Fatalf("update: %s", out.Error)
	}
	records, _ := ledger.ListForStudent(ctx, "1800")
	if records[0].Score != 9 || !records[0].Completed || records[0].UpdatedAt == nil {
		t.Fatalf("override not applied: %+v", records[0])
	}

	bad := domain.ScoreType("bonus")
	if out := ledger.Update(ctx, id, domain.ScorePatch{ScoreType: &bad}); !errors.Is(out.Err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid score type, got %+v", out)
	}
	if out := ledger.Delete(ctx, id); !out.Success || out.Changes != 1 {
		t.Fatalf("delete: %+v", out)
	}
	if out := ledger.Delete(ctx, id); !errors.Is(out.Err, domain.ErrScoreNotFound) {
		t.Fatalf("expected not found on second delete, got %+v", out)
	}
}

func TestSubmitQuizUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	bank, ids := newSeededBank(t)
	other, err := bank.Add(ctx, choiceQuestion(2, 1, "A", 10))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	ledger := app.NewScoreLedger(memory.NewScoreStore(), bank, nil)

	// Answers to another task's question do not count toward task 1.
	first, err := ledger.SubmitQuiz(ctx, "1800", 1, map[int64]string{ids[0]: "A", ids[1]: "C", other: "A"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Score != 2 || first.Updated {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := ledger.SubmitQuiz(ctx, "1800", 1, map[int64]string{ids[0]: "A"})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !second.Updated || second.RecordID != first.RecordID || second.Score != 1 {
		t.Fatalf("expected in-place update of record %d, got %+v", first.RecordID, second)
	}

	records, _ := ledger.ListForStudent(ctx, "1800")
	if len(records) != 1 || records[0].Score != 1 || records[0].ScoreType != domain.ScoreChoice {
		t.Fatalf("expected one choice record with score 1, got %+v", records)
	}
}

func TestConcurrentFirstSubmissionsKeepOneRecord(t *testing.T) {
	ctx := context.Background()
	bank, ids := newSeededBank(t)
	ledger := app.NewScoreLedger(memory.NewScoreStore(), bank, nil)

	const submitters = 16
	var wg sync.WaitGroup
	errs := make(chan error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.SubmitQuiz(ctx, "1800", 1, map[int64]string{ids[0]: "A"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("submit: %v", err)
	}

	records, err := ledger.ListForStudent(ctx, "1800")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Score != 1 {
		t.Fatalf("expected a single choice record, got %+v", records)
	}
}
