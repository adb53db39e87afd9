package orchestrators

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gym/internal/domain/audit"
	"gym/internal/domain/member"
)

// MemberStoreForRegister defines the store interface needed by RegisterMember.
type MemberStoreForRegister interface {
	Create(ctx context.Context, m member.Member) (int64, error)
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name     string
	Email    string
	Password string
	Request  RequestMeta
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStoreForRegister
	Audit       AuditRecorder
}

// ExecuteRegisterMember creates a member account with a self-chosen password.
// PRE: none
// POST: Member persisted with a bcrypt hash and no must-change flag
// INVARIANT: Email must be unique (member.ErrEmailTaken from the store)
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	m := member.Member{
		Name:      strings.TrimSpace(input.Name),
		Email:     member.NormalizeEmail(input.Email),
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := m.SetPassword(input.Password); err != nil {
		return member.Member{}, err
	}

	id, err := deps.MemberStore.Create(ctx, m)
	if err != nil {
		return member.Member{}, err
	}
	m.ID = id

	slog.Info("auth_event", "event", "register", "member_id", id)
	recordAudit(ctx, deps.Audit, audit.NewEvent(strconv.FormatInt(id, 10), m.Email, audit.CategoryMember, audit.ActionRegister), input.Request)
	return m, nil
}
