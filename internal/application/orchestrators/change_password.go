package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Identity        identity.Identity
	CurrentPassword string
	NewPassword     string
	Request         RequestMeta
}

// MemberStoreForChangePassword defines the store interface needed by ChangePassword.
type MemberStoreForChangePassword interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string, mustChange bool) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	MemberStore MemberStoreForChangePassword
	Roles       *RoleResolver
	Audit       AuditRecorder
}

var (
	ErrPasswordFieldsRequired   = errors.New("current and new password are required")
	ErrCurrentPasswordWrong     = errors.New("current password is incorrect")
	ErrNewPasswordSame          = errors.New("new password must be different from current password")
	ErrChangeWhileImpersonating = errors.New("password cannot be changed while impersonating")
)

// ExecuteChangePassword verifies the current password, stores the new one and
// rebuilds the identity from scratch.
// PRE: Identity is authenticated
// POST: hash updated, must-change flag cleared, returned identity has MustChangePassword=false
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) (identity.Identity, error) {
	if input.Identity.IsImpersonating() {
		return identity.Identity{}, ErrChangeWhileImpersonating
	}
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return identity.Identity{}, ErrPasswordFieldsRequired
	}

	m, err := deps.MemberStore.GetByID(ctx, input.Identity.MemberID)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("load member for password change: %w", err)
	}

	if err := m.CheckPassword(input.CurrentPassword); err != nil {
		return identity.Identity{}, ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return identity.Identity{}, ErrNewPasswordSame
	}

	// Validates length and hashes.
	if err := m.SetPassword(input.NewPassword); err != nil {
		return identity.Identity{}, err
	}
	m.MustChangePassword = false

	if err := deps.MemberStore.UpdatePasswordHash(ctx, m.ID, m.PasswordHash, false); err != nil {
		return identity.Identity{}, err
	}

	slog.Info("auth_event", "event", "password_changed", "member_id", m.ID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.Identity.MemberIDString(), m.Email, audit.CategoryAuth, audit.ActionPasswordChange).
		WithResource("member", input.Identity.MemberIDString()), input.Request)

	return BuildIdentity(ctx, m, deps.Roles)
}
