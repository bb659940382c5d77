package app

import (
	"context"
	"sync"
	"time"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// LeaderboardUpdate is one published ranking snapshot.
type LeaderboardUpdate struct {
	Entries   []domain.LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// QuizFeed runs live quiz submissions and pushes the resulting leaderboard
// to every subscriber.
type QuizFeed struct {
	registrar *Registrar
	ledger    *ScoreLedger
	agg       *Aggregator
	log       logrus.FieldLogger
	now       func() time.Time

	mu          sync.Mutex
	subscribers map[chan LeaderboardUpdate]struct{}
}

func NewQuizFeed(registrar *Registrar, ledger *ScoreLedger, agg *Aggregator, log logrus.FieldLogger) *QuizFeed {
	return &QuizFeed{
		registrar:   registrar,
		ledger:      ledger,
		agg:         agg,
		log:         orDiscard(log),
		now:         time.Now,
		subscribers: make(map[chan LeaderboardUpdate]struct{}),
	}
}

// Join resolves the student behind a live connection. Only approved
// students may submit through the feed.
func (f *QuizFeed) Join(ctx context.Context, studentID string) (domain.Registration, error) {
	reg, err := f.registrar.GetByStudentID(ctx, studentID)
	if err != nil {
		return domain.Registration{}, err
	}
	if reg.Approved == nil || !*reg.Approved {
		return domain.Registration{}, domain.ErrStudentNotApproved
	}
	return reg, nil
}

// Submit grades a task submission, stores it and returns the new ranking.
// The caller decides when to Publish it.
func (f *QuizFeed) Submit(ctx context.Context, studentID string, taskNumber int, answers map[int64]string) (QuizResult, LeaderboardUpdate, error) {
	result, err := f.ledger.SubmitQuiz(ctx, studentID, taskNumber, answers)
	if err != nil {
		return QuizResult{}, LeaderboardUpdate{}, err
	}
	update, err := f.Snapshot(ctx)
	if err != nil {
		return result, LeaderboardUpdate{}, err
	}
	return result, update, nil
}

// Snapshot computes the current leaderboard without publishing it.
func (f *QuizFeed) Snapshot(ctx context.Context) (LeaderboardUpdate, error) {
	entries, err := f.agg.Leaderboard(ctx)
	if err != nil {
		return LeaderboardUpdate{}, err
	}
	return LeaderboardUpdate{Entries: entries, UpdatedAt: f.now()}, nil
}

// Subscribe returns a channel of leaderboard updates. The caller must
// invoke the returned cancel function to avoid leaks.
func (f *QuizFeed) Subscribe() (<-chan LeaderboardUpdate, func()) {
	ch := make(chan LeaderboardUpdate, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends update to every subscriber except skip, which may be nil.
func (f *QuizFeed) Publish(update LeaderboardUpdate, skip <-chan LeaderboardUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		if ch == skip {
			continue
		}
		select {
		case ch <- update:
		default:
			// Slow subscriber: drop its oldest update instead of blocking the rest.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
	f.log.WithField("subscribers", len(f.subscribers)).Debug("leaderboard published")
}
