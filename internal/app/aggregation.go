package app

import (
	"context"
	"fmt"
	"sort"

	"cohort-admin/internal/domain"
)

// Aggregator derives summaries and rankings from the score ledger. Nothing
// is cached; each call re-reads the stores, and reads are not isolated from
// concurrent writes.
type Aggregator struct {
	scores ScoreRepository
	regs   RegistrationRepository
}

func NewAggregator(scores ScoreRepository, regs RegistrationRepository) *Aggregator {
	return &Aggregator{scores: scores, regs: regs}
}

// Summarize groups a student's records by (task, score type) and totals them.
func (a *Aggregator) Summarize(ctx context.Context, studentID string) (domain.StudentSummary, error) {
	records, err := a.scores.ListByStudent(ctx, studentID)
	if err != nil {
		return domain.StudentSummary{}, fmt.Errorf("list scores: %w", err)
	}
	summary := summarize(records)
	summary.StudentID = studentID
	return summary, nil
}

type taskGroup struct {
	task      int
	scoreType domain.ScoreType
}

// summarize counts records, not distinct completions: duplicate records for
// the same task and type all contribute to TotalScore and TimesCompleted.
func summarize(records []domain.ScoreRecord) domain.StudentSummary {
	groups := make(map[taskGroup]*domain.TaskSummary)
	order := make([]taskGroup, 0)
	total := 0
	for _, rec := range records {
		key := taskGroup{task: rec.TaskNumber, scoreType: rec.ScoreType}
		g, ok := groups[key]
		if !ok {
			g = &domain.TaskSummary{TaskNumber: rec.TaskNumber, ScoreType: rec.ScoreType}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalScore += rec.Score
		g.TimesCompleted++
		total += rec.Score
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].task != order[j].task {
			return order[i].task < order[j].task
		}
		return order[i].scoreType < order[j].scoreType
	})
	perTask := make([]domain.TaskSummary, 0, len(order))
	for _, key := range order {
		perTask = append(perTask, *groups[key])
	}

	overall := domain.OverallSummary{TotalScore: total, RecordsCount: len(records)}
	if len(records) > 0 {
		overall.AvgScore = float64(total) / float64(len(records))
	}
	return domain.StudentSummary{PerTask: perTask, Overall: overall}
}

// Leaderboard ranks every registered student by total score, highest first.
// Students with equal totals keep the registration listing order (newest
// registration first), which carries no meaning beyond being stable.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	regs, err := a.regs.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	records, err := a.scores.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	totals := make(map[string]int, len(regs))
	for _, rec := range records {
		totals[rec.StudentID] += rec.Score
	}

	entries := make([]domain.LeaderboardEntry, 0, len(regs))
	for _, reg := range regs {
		entries = append(entries, domain.LeaderboardEntry{
			StudentID:     reg.StudentID,
			StudentName:   reg.StudentName,
			WechatID:      reg.WechatID,
			WalletAddress: reg.WalletAddress,
			TotalScore:    totals[reg.StudentID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	return entries, nil
}

// RawScores lists every record ordered by student id then task number,
// joined with the student's name when a registration exists. Student ids
// compare numerically, so "9999" sorts before "10000".
func (a *Aggregator) RawScores(ctx context.Context) ([]domain.RawScore, error) {
	records, err := a.scores.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	regs, err := a.regs.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	names := make(map[string]string, len(regs))
	for _, reg := range regs {
		names[reg.StudentID] = reg.StudentName
	}

	out := make([]domain.RawScore, 0, len(records))
	for _, rec := range records {
		raw := domain.RawScore{
			ID:         rec.ID,
			StudentID:  rec.StudentID,
			TaskNumber: rec.TaskNumber,
			ScoreType:  rec.ScoreType,
			Score:      rec.Score,
		}
		if name, ok := names[rec.StudentID]; ok {
			raw.StudentName = &name
		}
		out = append(out, raw)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return domain.StudentIDLess(out[i].StudentID, out[j].StudentID)
		}
		return out[i].TaskNumber < out[j].TaskNumber
	})
	return out, nil
}
