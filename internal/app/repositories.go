package app

import (
	"context"

	"cohort-admin/internal/domain"
)

// RegistrationRepository stores registrations. Create must fail with
// domain.ErrDuplicateStudentID when the student id is already taken. Delete
// retires the student id so MaxStudentID keeps counting it.
type RegistrationRepository interface {
	// MaxStudentID returns the numerically largest issued or retired student id, or ok=false if none exist.
	MaxStudentID(ctx context.Context) (id string, ok bool, err error)
	Create(ctx context.Context, reg *domain.Registration) error
	Get(ctx context.Context, id int64) (domain.Registration, error)
	GetByStudentID(ctx context.Context, studentID string) (domain.Registration, error)
	GetByWallet(ctx context.Context, wallet string) (domain.Registration, error)
	// List returns registrations newest first, optionally filtered by approval.
	List(ctx context.Context, approved *bool) ([]domain.Registration, error)
	Update(ctx context.Context, id int64, patch domain.RegistrationPatch) error
	Delete(ctx context.Context, id int64) error
}

// QuestionRepository stores the choice question bank. Reads decode the
// serialized options and fail with *domain.DataCorruptionError on bad data.
type QuestionRepository interface {
	// List orders by task number then question number; a nil task lists every task.
	List(ctx context.Context, taskNumber *int) ([]domain.Question, error)
	Create(ctx context.Context, q *domain.Question) error
	// Update applies patch to the stored question and runs Validate on the
	// merged result before writing, atomically with respect to other updates.
	Update(ctx context.Context, id int64, patch domain.QuestionPatch) error
	Delete(ctx context.Context, id int64) error
	DeleteByTask(ctx context.Context, taskNumber int) (int, error)
}

// AnswerKeySource returns the grading keys of every question, keyed by question id.
type AnswerKeySource interface {
	AnswerKeys(ctx context.Context) (map[int64]domain.AnswerKey, error)
}

// answerKeyInvalidator is implemented by caches fronting an AnswerKeySource.
type answerKeyInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ScoreRepository is the score ledger store. It enforces no uniqueness.
type ScoreRepository interface {
	Create(ctx context.Context, rec *domain.ScoreRecord) error
	Update(ctx context.Context, id int64, patch domain.ScorePatch) error
	Delete(ctx context.Context, id int64) error
	// ListByStudent orders by task number, then id.
	ListByStudent(ctx context.Context, studentID string) ([]domain.ScoreRecord, error)
	// ListAll orders by student id (numerically, see domain.StudentIDLess), task number, then id.
	ListAll(ctx context.Context) ([]domain.ScoreRecord, error)
}

// ProjectRepository stores projects and student claims. Upsert must be a
// single atomic write keyed by ProjectID.
type ProjectRepository interface {
	Upsert(ctx context.Context, p *domain.Project) error
	GetByProjectID(ctx context.Context, projectID string) (domain.Project, error)
	// List returns projects newest first.
	List(ctx context.Context) ([]domain.Project, error)
	Delete(ctx context.Context, id int64) error

	CreateClaim(ctx context.Context, c *domain.ProjectClaim) error
	ClaimsByStudent(ctx context.Context, studentID string) ([]domain.ProjectClaim, error)
	// Claims returns every claim newest first with the student name joined.
	Claims(ctx context.Context) ([]domain.ProjectClaim, error)
	DeleteClaim(ctx context.Context, id int64) error
}

// StaffRepository stores back-office staff.
type StaffRepository interface {
	GetByWallet(ctx context.Context, wallet string) (domain.Staff, error)
	FirstWithRole(ctx context.Context, role string) (domain.Staff, error)
	Create(ctx context.Context, s *domain.Staff) error
	UpdateWallet(ctx context.Context, id int64, wallet string) error
}

// NoteRepository stores staff notes about students. Update and Delete match
// on both the note id and the owning student id and return the number of
// rows touched; no match is not an error.
type NoteRepository interface {
	// List and ListByStudent return notes newest first.
	List(ctx context.Context) ([]domain.StudentNote, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.StudentNote, error)
	Create(ctx context.Context, n *domain.StudentNote) error
	Update(ctx context.Context, id int64, studentID string, patch domain.NotePatch) (int, error)
	Delete(ctx context.Context, id int64, studentID string) (int, error)
}
