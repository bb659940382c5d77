package app

import (
	"context"
	"fmt"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// QuestionBank manages choice questions and grades quiz submissions.
type QuestionBank struct {
	questions QuestionRepository
	keys      AnswerKeySource
	log       logrus.FieldLogger
}

// NewQuestionBank wires the bank. keys may be a cache fronting the question
// store; if it can be invalidated it is invalidated after every mutation.
func NewQuestionBank(questions QuestionRepository, keys AnswerKeySource, log logrus.FieldLogger) *QuestionBank {
	return &QuestionBank{questions: questions, keys: keys, log: orDiscard(log)}
}

// List returns questions ordered by task then question number.
func (b *QuestionBank) List(ctx context.Context, taskNumber *int) ([]domain.Question, error) {
	return b.questions.List(ctx, taskNumber)
}

// ListWithoutAnswers is List with the correct options removed.
func (b *QuestionBank) ListWithoutAnswers(ctx context.Context, taskNumber *int) ([]domain.PublicQuestion, error) {
	questions, err := b.questions.List(ctx, taskNumber)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	return out, nil
}

// Add validates and stores a single question, returning its id.
func (b *QuestionBank) Add(ctx context.Context, q domain.Question) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	q.ID = 0
	if err := b.questions.Create(ctx, &q); err != nil {
		return 0, fmt.Errorf("create question: %w", err)
	}
	b.invalidate(ctx)
	return q.ID, nil
}

// AddBatch stores each question independently and reports one outcome per item.
func (b *QuestionBank) AddBatch(ctx context.Context, questions []domain.Question) []domain.ItemOutcome {
	results := make([]domain.ItemOutcome, 0, len(questions))
	created := 0
	for i, q := range questions {
		item := domain.ItemOutcome{Index: i}
		if err := q.Validate(); err != nil {
			item.Outcome = domain.Failed(err)
			results = append(results, item)
			continue
		}
		q.ID = 0
		if err := b.questions.Create(ctx, &q); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{"task": q.TaskNumber, "question": q.QuestionNumber}).Warn("batch question insert failed")
			item.Outcome = domain.Failed(err)
			results = append(results, item)
			continue
		}
		item.ID = q.ID
		item.Outcome = domain.Succeeded(1)
		results = append(results, item)
		created++
	}
	if created > 0 {
		b.invalidate(ctx)
	}
	return results
}

// Update applies patch to question id. The store validates the merged
// question under its row lock, so a patch that leaves the question without a
// matching correct option, or with a negative score, is rejected and nothing
// is written.
func (b *QuestionBank) Update(ctx context.Context, id int64, patch domain.QuestionPatch) domain.Outcome {
	if patch.Options != nil && len(*patch.Options) < 2 {
		return domain.Failed(domain.Invalid("need at least two options", "options"))
	}
	if err := b.questions.Update(ctx, id, patch); err != nil {
		b.log.WithError(err).WithField("question_id", id).Warn("update question failed")
		return domain.Failed(err)
	}
	b.invalidate(ctx)
	return domain.Succeeded(1)
}

// Delete removes question id.
func (b *QuestionBank) Delete(ctx context.Context, id int64) domain.Outcome {
	if err := b.questions.Delete(ctx, id); err != nil {
		b.log.WithError(err).WithField("question_id", id).Warn("delete question failed")
		return domain.Failed(err)
	}
	b.invalidate(ctx)
	return domain.Succeeded(1)
}

// DeleteByTask removes every question of a task; Changes holds the count.
func (b *QuestionBank) DeleteByTask(ctx context.Context, taskNumber int) domain.Outcome {
	n, err := b.questions.DeleteByTask(ctx, taskNumber)
	if err != nil {
		b.log.WithError(err).WithField("task", taskNumber).Warn("delete task questions failed")
		return domain.Failed(err)
	}
	b.invalidate(ctx)
	return domain.Succeeded(n)
}

// Grade sums the points of correctly answered questions. Unknown question
// ids and wrong answers contribute nothing and are not errors.
func (b *QuestionBank) Grade(ctx context.Context, answers map[int64]string) (int, error) {
	keys, err := b.keys.AnswerKeys(ctx)
	if err != nil {
		return 0, err
	}
	return gradeAgainst(keys, answers), nil
}

func gradeAgainst(keys map[int64]domain.AnswerKey, answers map[int64]string) int {
	total := 0
	for questionID, selected := range answers {
		key, ok := keys[questionID]
		if !ok {
			continue
		}
		if selected == key.CorrectOption {
			points := key.Points
			if points <= 0 {
				points = 1
			}
			total += points
		}
	}
	return total
}

func (b *QuestionBank) invalidate(ctx context.Context) {
	inv, ok := b.keys.(answerKeyInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		b.log.WithError(err).Warn("answer key cache invalidation failed")
	}
}
