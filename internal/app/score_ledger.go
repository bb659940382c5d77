package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// ScoreLedger records scored events. It never merges records itself;
// SubmitQuiz is the one caller-side policy that updates in place.
type ScoreLedger struct {
	scores ScoreRepository
	bank   *QuestionBank
	log    logrus.FieldLogger
	now    func() time.Time
	quiz   keyedMutex
}

func NewScoreLedger(scores ScoreRepository, bank *QuestionBank, log logrus.FieldLogger) *ScoreLedger {
	return &ScoreLedger{scores: scores, bank: bank, log: orDiscard(log), now: time.Now}
}

type scoreInput struct {
	StudentID  string `json:"student_id" validate:"required"`
	TaskNumber int    `json:"task_number" validate:"gte=0"`
	ScoreType  string `json:"score_type" validate:"oneof=choice practice"`
}

// Record appends a new score record and returns its id.
func (l *ScoreLedger) Record(ctx context.Context, studentID string, taskNumber int, scoreType domain.ScoreType, score int, completed bool) (int64, error) {
	if err := validateStruct(scoreInput{StudentID: studentID, TaskNumber: taskNumber, ScoreType: string(scoreType)}); err != nil {
		return 0, err
	}
	rec := domain.ScoreRecord{
		StudentID:  studentID,
		TaskNumber: taskNumber,
		ScoreType:  scoreType,
		Score:      score,
		Completed:  completed,
		CreatedAt:  l.now(),
	}
	if err := l.scores.Create(ctx, &rec); err != nil {
		return 0, fmt.Errorf("create score: %w", err)
	}
	l.log.WithFields(logrus.Fields{
		"student_id": studentID,
		"task":       taskNumber,
		"score_type": scoreType,
		"score":      score,
	}).Info("score recorded")
	return rec.ID, nil
}

// Update overrides fields of score record id.
func (l *ScoreLedger) Update(ctx context.Context, id int64, patch domain.ScorePatch) domain.Outcome {
	if patch.ScoreType != nil && !patch.ScoreType.Valid() {
		return domain.Failed(domain.Invalid("must be choice or practice", "score_type"))
	}
	if err := l.scores.Update(ctx, id, patch); err != nil {
		l.log.WithError(err).WithField("score_id", id).Warn("update score failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}

// Delete removes score record id.
func (l *ScoreLedger) Delete(ctx context.Context, id int64) domain.Outcome {
	if err := l.scores.Delete(ctx, id); err != nil {
		l.log.WithError(err).WithField("score_id", id).Warn("delete score failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}

// ListForStudent returns a student's records ordered by task number.
func (l *ScoreLedger) ListForStudent(ctx context.Context, studentID string) ([]domain.ScoreRecord, error) {
	return l.scores.ListByStudent(ctx, studentID)
}

// QuizResult is the outcome of a quiz submission.
type QuizResult struct {
	TaskNumber int   `json:"task_number"`
	Score      int   `json:"score"`
	RecordID   int64 `json:"record_id"`
	Updated    bool  `json:"updated"`
}

// SubmitQuiz grades answers against the questions of taskNumber and stores
// the result as the student's choice score for that task. An existing
// (student, task, choice) record is overwritten in place; the oldest one
// wins if several exist. Submissions for the same (student, task) are
// serialized within this process, so concurrent first submissions create
// one record. Separate processes sharing a database are not coordinated.
func (l *ScoreLedger) SubmitQuiz(ctx context.Context, studentID string, taskNumber int, answers map[int64]string) (QuizResult, error) {
	if err := validateStruct(scoreInput{StudentID: studentID, TaskNumber: taskNumber, ScoreType: string(domain.ScoreChoice)}); err != nil {
		return QuizResult{}, err
	}
	keys, err := l.bank.keys.AnswerKeys(ctx)
	if err != nil {
		return QuizResult{}, err
	}
	taskKeys := make(map[int64]domain.AnswerKey)
	for id, key := range keys {
		if key.TaskNumber == taskNumber {
			taskKeys[id] = key
		}
	}
	score := gradeAgainst(taskKeys, answers)

	unlock := l.quiz.Lock(studentID + "/" + strconv.Itoa(taskNumber))
	defer unlock()
	existing, err := l.scores.ListByStudent(ctx, studentID)
	if err != nil {
		return QuizResult{}, fmt.Errorf("list scores: %w", err)
	}
	for _, rec := range existing {
		if rec.TaskNumber != taskNumber || rec.ScoreType != domain.ScoreChoice {
			continue
		}
		completed := true
		if err := l.scores.Update(ctx, rec.ID, domain.ScorePatch{Score: &score, Completed: &completed}); err != nil {
			return QuizResult{}, fmt.Errorf("update score: %w", err)
		}
		l.log.WithFields(logrus.Fields{"student_id": studentID, "task": taskNumber, "score": score}).Info("quiz score updated")
		return QuizResult{TaskNumber: taskNumber, Score: score, RecordID: rec.ID, Updated: true}, nil
	}

	id, err := l.Record(ctx, studentID, taskNumber, domain.ScoreChoice, score, true)
	if err != nil {
		return QuizResult{}, err
	}
	return QuizResult{TaskNumber: taskNumber, Score: score, RecordID: id}, nil
}
