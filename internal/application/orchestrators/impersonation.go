package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// OriginalAdminIDKey is the session key holding the impersonating admin's member id.
const OriginalAdminIDKey = "OriginalAdminId"

// ErrImpersonationTargetNotFound is returned when the member to impersonate does not exist.
var ErrImpersonationTargetNotFound = errors.New("impersonation target not found")

// SessionValues is the server-side session storage seen by impersonation.
type SessionValues interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemberStoreForImpersonation defines the store interface needed by impersonation.
type MemberStoreForImpersonation interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
}

// ImpersonationDeps holds dependencies for StartImpersonation and StopImpersonation.
type ImpersonationDeps struct {
	MemberStore MemberStoreForImpersonation
	Roles       *RoleResolver
	Session     SessionValues
	Audit       AuditRecorder
}

// StartImpersonationInput carries input for StartImpersonation.
type StartImpersonationInput struct {
	AdminID        string
	AdminEmail     string
	TargetMemberID int64
	Request        RequestMeta
}

// ExecuteStartImpersonation switches the session to the target member's identity.
// PRE: caller holds the Admin role (enforced by the route guard)
// POST: session stores AdminID under OriginalAdminIDKey; returned identity is the
// target with roles {Member}, the impersonation marker and no must-change flag
// POST: on ErrImpersonationTargetNotFound the session is untouched
func ExecuteStartImpersonation(ctx context.Context, input StartImpersonationInput, deps ImpersonationDeps) (identity.Identity, error) {
	target, err := deps.MemberStore.GetByID(ctx, input.TargetMemberID)
	if errors.Is(err, member.ErrNotFound) {
		slog.Info("impersonation_event", "event", "start_rejected", "admin_id", input.AdminID, "target_id", input.TargetMemberID, "reason", "not_found")
		return identity.Identity{}, ErrImpersonationTargetNotFound
	}
	if err != nil {
		return identity.Identity{}, fmt.Errorf("load impersonation target: %w", err)
	}

	if err := deps.Session.Set(ctx, OriginalAdminIDKey, input.AdminID); err != nil {
		return identity.Identity{}, fmt.Errorf("store impersonation marker: %w", err)
	}

	slog.Info("impersonation_event", "event", "start", "admin_id", input.AdminID, "target_id", target.ID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.AdminID, input.AdminEmail, audit.CategoryImpersonation, audit.ActionStart).
		WithSeverity(audit.SeverityWarning).
		WithResource("member", strconv.FormatInt(target.ID, 10)), input.Request)

	return identity.Identity{
		MemberID:      target.ID,
		Name:          target.Name,
		Email:         target.Email,
		Roles:         []identity.Role{identity.RoleMember},
		Impersonation: &identity.Impersonation{OriginalAdminID: input.AdminID},
	}, nil
}

// StopOutcome says what the caller must do with the session after StopImpersonation.
type StopOutcome int

const (
	// StopSignOut means the session must be signed out.
	StopSignOut StopOutcome = iota
	// StopRestoreAdmin means StopResult.Identity must be signed in persistently.
	StopRestoreAdmin
)

// StopImpersonationInput carries input for StopImpersonation.
type StopImpersonationInput struct {
	// FallbackAdminID is used when the session holds no marker.
	FallbackAdminID string
	Request         RequestMeta
}

// StopResult carries the outcome of StopImpersonation.
type StopResult struct {
	Outcome  StopOutcome
	Identity identity.Identity
}

// ExecuteStopImpersonation ends an impersonation and resolves what identity, if
// any, the session returns to.
// PRE: caller is authenticated
// POST: OriginalAdminIDKey is removed from the session on every path
// POST: a resolvable, existing admin yields StopRestoreAdmin with the same
// identity a fresh login would build; anything else yields StopSignOut
func ExecuteStopImpersonation(ctx context.Context, input StopImpersonationInput, deps ImpersonationDeps) (StopResult, error) {
	result, err := resolveStop(ctx, input, deps)
	if clearErr := deps.Session.Delete(ctx, OriginalAdminIDKey); clearErr != nil {
		return StopResult{}, errors.Join(err, fmt.Errorf("clear impersonation marker: %w", clearErr))
	}
	return result, err
}

func resolveStop(ctx context.Context, input StopImpersonationInput, deps ImpersonationDeps) (StopResult, error) {
	adminID, ok, err := deps.Session.Get(ctx, OriginalAdminIDKey)
	if err != nil {
		return StopResult{}, fmt.Errorf("read impersonation marker: %w", err)
	}
	if !ok || adminID == "" {
		adminID = input.FallbackAdminID
	}
	if adminID == "" {
		slog.Info("impersonation_event", "event", "stop_no_admin")
		return StopResult{Outcome: StopSignOut}, nil
	}

	memberID, err := strconv.ParseInt(adminID, 10, 64)
	if err != nil {
		slog.Warn("impersonation_event", "event", "stop_stale_admin", "admin_id", adminID, "reason", "malformed_id")
		return StopResult{Outcome: StopSignOut}, nil
	}

	admin, err := deps.MemberStore.GetByID(ctx, memberID)
	if errors.Is(err, member.ErrNotFound) {
		slog.Warn("impersonation_event", "event", "stop_stale_admin", "admin_id", adminID)
		return StopResult{Outcome: StopSignOut}, nil
	}
	if err != nil {
		return StopResult{}, fmt.Errorf("load impersonating admin: %w", err)
	}

	id, err := BuildIdentity(ctx, admin, deps.Roles)
	if err != nil {
		return StopResult{}, err
	}

	slog.Info("impersonation_event", "event", "stop", "admin_id", adminID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(adminID, admin.Email, audit.CategoryImpersonation, audit.ActionStop), input.Request)
	return StopResult{Outcome: StopRestoreAdmin, Identity: id}, nil
}
