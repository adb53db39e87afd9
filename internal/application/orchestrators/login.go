package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// MemberStoreForLogin defines the store interface needed by Login.
type MemberStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
	Request  RequestMeta
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	MemberStore MemberStoreForLogin
	Roles       *RoleResolver
	Audit       AuditRecorder
}

// ErrInvalidCredentials is the only authentication failure callers ever see.
var ErrInvalidCredentials = errors.New("invalid email or password")

var (
	decoyOnce   sync.Once
	decoyMember member.Member
)

// burnDecoy spends one bcrypt comparison so unknown emails cost the same as wrong passwords.
func burnDecoy(password string) {
	decoyOnce.Do(func() {
		_ = decoyMember.SetPassword("decoy-password-never-matches")
	})
	_ = decoyMember.CheckPassword(password)
}

// ExecuteLogin verifies credentials and builds the identity to sign in.
// PRE: none; blank fields fail like any other bad credential
// POST: Returns the identity on success; ErrInvalidCredentials for unknown email or wrong password
// INVARIANT: the two failure causes are indistinguishable to the caller
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (identity.Identity, error) {
	email := member.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return identity.Identity{}, ErrInvalidCredentials
	}

	m, err := deps.MemberStore.GetByEmail(ctx, email)
	if errors.Is(err, member.ErrNotFound) {
		burnDecoy(input.Password)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		recordAudit(ctx, deps.Audit, audit.NewEvent("", email, audit.CategoryAuth, audit.ActionLoginFailed).
			WithSeverity(audit.SeverityWarning), input.Request)
		return identity.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return identity.Identity{}, fmt.Errorf("load member for login: %w", err)
	}

	if err := m.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password")
		recordAudit(ctx, deps.Audit, audit.NewEvent("", email, audit.CategoryAuth, audit.ActionLoginFailed).
			WithSeverity(audit.SeverityWarning), input.Request)
		return identity.Identity{}, ErrInvalidCredentials
	}

	id, err := BuildIdentity(ctx, m, deps.Roles)
	if err != nil {
		return identity.Identity{}, err
	}

	slog.Info("auth_event", "event", "login_success", "member_id", id.MemberID, "roles", id.Roles)
	recordAudit(ctx, deps.Audit, audit.NewEvent(id.MemberIDString(), id.Email, audit.CategoryAuth, audit.ActionLogin), input.Request)
	return id, nil
}
