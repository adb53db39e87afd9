package orchestrators

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"

	emailAdapter "gym/internal/adapters/email"
	"gym/internal/domain/audit"
	"gym/internal/domain/member"
)

// temporaryPasswordAlphabet omits look-alike characters.
const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

const temporaryPasswordLength = 14

// MemberStoreForReset defines the store interface needed by ResetPassword.
type MemberStoreForReset interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string, mustChange bool) error
}

// ResetPasswordInput carries input for the reset-password orchestrator.
type ResetPasswordInput struct {
	ActorID    string
	ActorEmail string
	MemberID   int64
	Request    RequestMeta
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	MemberStore MemberStoreForReset
	Sender      emailAdapter.Sender
	Audit       AuditRecorder
}

// ResetPasswordResult carries the temporary password and whether it was mailed.
type ResetPasswordResult struct {
	TemporaryPassword string
	Emailed           bool
}

// GenerateTemporaryPassword returns a random password from temporaryPasswordAlphabet.
func GenerateTemporaryPassword() (string, error) {
	buf := make([]byte, temporaryPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, temporaryPasswordLength)
	for i, b := range buf {
		out[i] = temporaryPasswordAlphabet[int(b)%len(temporaryPasswordAlphabet)]
	}
	return string(out), nil
}

// ExecuteResetPassword replaces a member's password with a temporary one and
// flags the account so the next sign-in must choose a new password.
// PRE: caller holds the Admin role
// POST: hash replaced, must-change flag set; a failed email does not undo the reset
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) (ResetPasswordResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return ResetPasswordResult{}, err
	}

	temp, err := GenerateTemporaryPassword()
	if err != nil {
		return ResetPasswordResult{}, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := member.HashPassword(temp)
	if err != nil {
		return ResetPasswordResult{}, err
	}
	if err := deps.MemberStore.UpdatePasswordHash(ctx, m.ID, hash, true); err != nil {
		return ResetPasswordResult{}, err
	}

	memberID := strconv.FormatInt(m.ID, 10)
	slog.Info("auth_event", "event", "password_reset", "member_id", m.ID, "actor_id", input.ActorID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryMember, audit.ActionPasswordReset).
		WithSeverity(audit.SeverityWarning).
		WithResource("member", memberID), input.Request)

	result := ResetPasswordResult{TemporaryPassword: temp}
	if deps.Sender != nil {
		if _, err := deps.Sender.Send(ctx, emailAdapter.TemporaryPassword(m.Email, m.Name, temp)); err != nil {
			slog.Error("password_reset_email_failed", "member_id", m.ID, "error", err)
		} else {
			result.Emailed = true
		}
	}
	return result, nil
}
