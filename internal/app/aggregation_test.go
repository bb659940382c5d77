package app_test

import (
	"context"
	"testing"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"cohort-admin/internal/infra/memory"
)

func TestSummarizeTotalsAndAverage(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	ledger := app.NewScoreLedger(scores, nil, nil)
	for _, s := range []int{5, 3, 4} {
		if _, err := ledger.Record(ctx, "1800", 1, domain.ScorePractice, s, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	summary, err := app.NewAggregator(scores, memory.NewRegistrationStore()).Summarize(ctx, "1800")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.StudentID != "1800" {
		t.Fatalf("expected student id on summary, got %q", summary.StudentID)
	}
	if summary.Overall.TotalScore != 12 || summary.Overall.AvgScore != 4.0 || summary.Overall.RecordsCount != 3 {
		t.Fatalf("unexpected overall %+v", summary.Overall)
	}
	if len(summary.PerTask) != 1 || summary.PerTask[0].TotalScore != 12 || summary.PerTask[0].TimesCompleted != 3 {
		t.Fatalf("unexpected per task %+v", summary.PerTask)
	}
}

func TestSummarizeGroupsByTaskAndType(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	ledger := app.NewScoreLedger(scores, nil, nil)
	record := func(task int, typ domain.ScoreType, score int) {
		t.Helper()
		if _, err := ledger.Record(ctx, "1800", task, typ, score, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	record(2, domain.ScoreChoice, 1)
	record(1, domain.ScorePractice, 7)
	record(1, domain.ScoreChoice, 2)
	record(1, domain.ScoreChoice, 2) // duplicate counts twice

	summary, err := app.NewAggregator(scores, memory.NewRegistrationStore()).Summarize(ctx, "1800")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	want := []domain.TaskSummary{
		{TaskNumber: 1, ScoreType: domain.ScoreChoice, TotalScore: 4, TimesCompleted: 2},
		{TaskNumber: 1, ScoreType: domain.ScorePractice, TotalScore: 7, TimesCompleted: 1},
		{TaskNumber: 2, ScoreType: domain.ScoreChoice, TotalScore: 1, TimesCompleted: 1},
	}
	if len(summary.PerTask) != len(want) {
		t.Fatalf("expected %d groups, got %+v", len(want), summary.PerTask)
	}
	for i := range want {
		if summary.PerTask[i] != want[i] {
			t.Fatalf("group %d = %+v, want %+v", i, summary.PerTask[i], want[i])
		}
	}
	if summary.Overall.TotalScore != 12 || summary.Overall.RecordsCount != 4 {
		t.Fatalf("unexpected overall %+v", summary.Overall)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := app.NewAggregator(memory.NewScoreStore(), memory.NewRegistrationStore()).Summarize(context.Background(), "none")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Overall.AvgScore != 0 || summary.Overall.RecordsCount != 0 || len(summary.PerTask) != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestLeaderboardRanksByTotal(t *testing.T) {
	ctx := context.Background()
	regs := memory.NewRegistrationStore()
	scores := memory.NewScoreStore()
	registrar := app.NewRegistrar(regs, app.IdentityOptions{}, nil)
	ledger := app.NewScoreLedger(scores, nil, nil)

	totals := map[string]int{"Low": 10, "High": 30, "Mid": 20}
	ids := make(map[string]string)
	for _, name := range []string{"Low", "High", "Mid"} {
		reg, err := registrar.Register(ctx, newRegistration(name))
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		ids[name] = reg.StudentID
		// split across tasks to exercise summing
		if _, err := ledger.Record(ctx, reg.StudentID, 1, domain.ScoreChoice, totals[name]/2, true); err != nil {
			t.Fatalf("record: %v", err)
		}
		if _, err := ledger.Record(ctx, reg.StudentID, 2, domain.ScorePractice, totals[name]/2, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	idle, err := registrar.Register(ctx, newRegistration("Idle"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	board, err := app.NewAggregator(scores, regs).Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 4 {
		t.Fatalf("expected every registered student, got %d", len(board))
	}
	order := []string{ids["High"], ids["Mid"], ids["Low"], idle.StudentID}
	wantTotals := []int{30, 20, 10, 0}
	for i := range order {
		if board[i].StudentID != order[i] || board[i].TotalScore != wantTotals[i] {
			t.Fatalf("rank %d = %+v, want %s with %d", i, board[i], order[i], wantTotals[i])
		}
	}
	if board[0].StudentName != "High" || board[0].WalletAddress != "0xHigh" {
		t.Fatalf("expected registration details on entry, got %+v", board[0])
	}
}

func TestRawScoresJoinNames(t *testing.T) {
	ctx := context.Background()
	regs := memory.NewRegistrationStore()
	scores := memory.NewScoreStore()
	reg, err := app.NewRegistrar(regs, app.IdentityOptions{}, nil).Register(ctx, newRegistration("Alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ledger := app.NewScoreLedger(scores, nil, nil)
	if _, err := ledger.Record(ctx, reg.StudentID, 2, domain.ScoreChoice, 4, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := ledger.Record(ctx, reg.StudentID, 1, domain.ScoreChoice, 3, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := ledger.Record(ctx, "0001", 1, domain.ScorePractice, 1, true); err != nil {
		t.Fatalf("record: %v", err)
	}

	raw, err := app.NewAggregator(scores, regs).RawScores(ctx)
	if err != nil {
		t.Fatalf("raw scores: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(raw))
	}
	if raw[0].StudentID != "0001" || raw[0].StudentName != nil {
		t.Fatalf("orphan record should sort first with no name, got %+v", raw[0])
	}
	if raw[1].TaskNumber != 1 || raw[2].TaskNumber != 2 {
		t.Fatalf("expected task order within a student, got %+v", raw[1:])
	}
	if raw[1].StudentName == nil || *raw[1].StudentName != "Alice" {
		t.Fatalf("expected Alice's name joined, got %+v", raw[1])
	}
}

func TestRawScoresOrderStudentIDsNumerically(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	ledger := app.NewScoreLedger(scores, nil, nil)
	for _, id := range []string{"10000", "9999", "1800"} {
		if _, err := ledger.Record(ctx, id, 1, domain.ScorePractice, 1, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	raw, err := app.NewAggregator(scores, memory.NewRegistrationStore()).RawScores(ctx)
	if err != nil {
		t.Fatalf("raw scores: %v", err)
	}
	want := []string{"1800", "9999", "10000"}
	if len(raw) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(raw))
	}
	for i := range want {
		if raw[i].StudentID != want[i] {
			t.Fatalf("row %d = %s, want %s", i, raw[i].StudentID, want[i])
		}
	}
}
