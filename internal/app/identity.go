package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInitialStudentID = "1799"
	DefaultStudentIDWidth   = 4
	DefaultIssueRetries     = 5
)

// NextStudentID computes the id following current (or floor when current is
// empty), zero-padded to width. Values wider than width are kept whole.
func NextStudentID(current, floor string, width int) (string, error) {
	base := strings.TrimSpace(current)
	if base == "" {
		base = strings.TrimSpace(floor)
	}
	n, err := strconv.ParseUint(base, 10, 63)
	if err != nil {
		return "", &domain.SequencingError{Err: fmt.Errorf("parse %q: %w", base, err)}
	}
	return fmt.Sprintf("%0*d", width, n+1), nil
}

// IdentityOptions configures student id issuance.
type IdentityOptions struct {
	Floor      string
	Width      int
	MaxRetries int
}

func (o IdentityOptions) withDefaults() IdentityOptions {
	if o.Floor == "" {
		o.Floor = DefaultInitialStudentID
	}
	if o.Width <= 0 {
		o.Width = DefaultStudentIDWidth
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultIssueRetries
	}
	return o
}

// Registrar creates registrations and issues their student ids. The current
// maximum is always re-read from the store; losing a uniqueness race re-reads
// and tries again up to MaxRetries times.
type Registrar struct {
	regs RegistrationRepository
	opts IdentityOptions
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewRegistrar(regs RegistrationRepository, opts IdentityOptions, log logrus.FieldLogger) *Registrar {
	return &Registrar{
		regs: regs,
		opts: opts.withDefaults(),
		log:  orDiscard(log),
		now:  time.Now,
	}
}

type registrationInput struct {
	StudentName   string `json:"student_name" validate:"required"`
	WechatID      string `json:"wechat_id" validate:"required"`
	WalletAddress string `json:"wallet_address" validate:"required"`
}

// Register stores reg under a freshly issued student id. Any ID, StudentID
// or approval on reg is ignored; new registrations await review.
func (r *Registrar) Register(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	if err := validateStruct(registrationInput{
		StudentName:   reg.StudentName,
		WechatID:      reg.WechatID,
		WalletAddress: reg.WalletAddress,
	}); err != nil {
		return domain.Registration{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		current, _, err := r.regs.MaxStudentID(ctx)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("read max student id: %w", err)
		}
		next, err := NextStudentID(current, r.opts.Floor, r.opts.Width)
		if err != nil {
			return domain.Registration{}, err
		}

		candidate := reg
		candidate.ID = 0
		candidate.StudentID = next
		candidate.Approved = nil
		now := r.now()
		candidate.CreatedAt = now
		candidate.UpdatedAt = &now

		err = r.regs.Create(ctx, &candidate)
		if err == nil {
			r.log.WithFields(logrus.Fields{"student_id": next, "attempt": attempt}).Info("registration created")
			return candidate, nil
		}
		if !errors.Is(err, domain.ErrDuplicateStudentID) {
			return domain.Registration{}, fmt.Errorf("create registration: %w", err)
		}
		lastErr = err
		r.log.WithFields(logrus.Fields{"student_id": next, "attempt": attempt}).Warn("student id taken, retrying")
	}
	return domain.Registration{}, &domain.SequencingError{Attempts: r.opts.MaxRetries, Err: lastErr}
}

func (r *Registrar) Get(ctx context.Context, id int64) (domain.Registration, error) {
	return r.regs.Get(ctx, id)
}

func (r *Registrar) GetByStudentID(ctx context.Context, studentID string) (domain.Registration, error) {
	return r.regs.GetByStudentID(ctx, studentID)
}

// List returns registrations newest first; approved filters by approval status when set.
func (r *Registrar) List(ctx context.Context, approved *bool) ([]domain.Registration, error) {
	return r.regs.List(ctx, approved)
}

// Update applies patch to registration id. The student id is immutable.
func (r *Registrar) Update(ctx context.Context, id int64, patch domain.RegistrationPatch) domain.Outcome {
	if err := r.regs.Update(ctx, id, patch); err != nil {
		r.log.WithError(err).WithField("registration_id", id).Warn("update registration failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}

// SetApproval marks registration id approved or rejected.
func (r *Registrar) SetApproval(ctx context.Context, id int64, approved bool) domain.Outcome {
	return r.Update(ctx, id, domain.RegistrationPatch{Approved: &approved})
}

// Delete removes registration id. The store retires its student id, so it is never reissued.
func (r *Registrar) Delete(ctx context.Context, id int64) domain.Outcome {
	if err := r.regs.Delete(ctx, id); err != nil {
		r.log.WithError(err).WithField("registration_id", id).Warn("delete registration failed")
		return domain.Failed(err)
	}
	return domain.Succeeded(1)
}
