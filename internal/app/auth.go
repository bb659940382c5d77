package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cohort-admin/internal/domain"
	"github.com/sirupsen/logrus"
)

// WalletDirectory resolves wallet addresses to staff or students. It only
// looks identities up; allow/deny decisions belong to the caller.
type WalletDirectory struct {
	staff StaffRepository
	regs  RegistrationRepository
	log   logrus.FieldLogger
}

func NewWalletDirectory(staff StaffRepository, regs RegistrationRepository, log logrus.FieldLogger) *WalletDirectory {
	return &WalletDirectory{staff: staff, regs: regs, log: orDiscard(log)}
}

// CheckWallet looks up staff first, then registrations. Unapproved students
// resolve to the pending role.
func (d *WalletDirectory) CheckWallet(ctx context.Context, wallet string) domain.AuthResult {
	s, err := d.staff.GetByWallet(ctx, wallet)
	switch {
	case err == nil:
		return domain.AuthResult{Success: true, Role: s.Role, ID: strconv.FormatInt(s.ID, 10), Name: s.Name}
	case !errors.Is(err, domain.ErrNotFound):
		d.log.WithError(err).Error("staff lookup failed")
		return domain.AuthResult{}
	}

	reg, err := d.regs.GetByWallet(ctx, wallet)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		return domain.AuthResult{}
	default:
		d.log.WithError(err).Error("registration lookup failed")
		return domain.AuthResult{}
	}
	if reg.Approved != nil && *reg.Approved {
		return domain.AuthResult{Success: true, Role: domain.RoleStudent, ID: reg.StudentID, Name: reg.StudentName}
	}
	return domain.AuthResult{Success: true, Role: domain.RolePending}
}

// EnsureAdmin points the first admin at wallet, creating a default admin if none exists.
func (d *WalletDirectory) EnsureAdmin(ctx context.Context, wallet string) (domain.Staff, bool, error) {
	if wallet == "" {
		return domain.Staff{}, false, domain.Invalid("admin wallet address is required", "wallet_address")
	}
	admin, err := d.staff.FirstWithRole(ctx, domain.StaffRoleAdmin)
	if err == nil {
		if err := d.staff.UpdateWallet(ctx, admin.ID, wallet); err != nil {
			return domain.Staff{}, false, fmt.Errorf("update admin wallet: %w", err)
		}
		admin.WalletAddress = wallet
		return admin, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Staff{}, false, fmt.Errorf("find admin: %w", err)
	}
	admin = domain.Staff{
		Name:          "oneblock",
		WechatID:      "oneblock",
		Role:          domain.StaffRoleAdmin,
		WalletAddress: wallet,
	}
	if err := d.staff.Create(ctx, &admin); err != nil {
		return domain.Staff{}, false, fmt.Errorf("create admin: %w", err)
	}
	return admin, true, nil
}
