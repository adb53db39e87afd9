package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// ErrRoleNotGrantable is returned for roles that are not stored as assignments.
// Member is implicit and Trainer comes from the trainer table.
var ErrRoleNotGrantable = errors.New("role cannot be granted directly")

// ErrLastAdmin is returned when a revoke would leave no Admin assignment.
var ErrLastAdmin = errors.New("cannot revoke the last admin")

// RoleStoreForGrant defines the role store interface needed by GrantRole.
type RoleStoreForGrant interface {
	Grant(ctx context.Context, email string, role identity.Role) error
}

// GrantRoleInput carries input for GrantRole.
type GrantRoleInput struct {
	ActorID    string
	ActorEmail string
	Email      string
	Role       identity.Role
	Request    RequestMeta
}

// GrantRoleDeps holds dependencies for GrantRole.
type GrantRoleDeps struct {
	RoleStore RoleStoreForGrant
	Audit     AuditRecorder
}

// ExecuteGrantRole assigns an additive role to an email. It takes effect at the
// holder's next sign-in.
// PRE: caller holds the Admin role
// POST: assignment stored; granting twice is a no-op
func ExecuteGrantRole(ctx context.Context, input GrantRoleInput, deps GrantRoleDeps) error {
	email := member.NormalizeEmail(input.Email)
	if email == "" {
		return member.ErrEmptyEmail
	}
	if input.Role != identity.RoleAdmin {
		return ErrRoleNotGrantable
	}
	if err := deps.RoleStore.Grant(ctx, email, input.Role); err != nil {
		return err
	}

	slog.Info("role_granted", "email", email, "role", input.Role, "actor_id", input.ActorID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRole, audit.ActionGrant).
		WithSeverity(audit.SeverityCritical).
		WithResource("email", email).
		WithDescription(string(input.Role)), input.Request)
	return nil
}

// RoleStoreForRevoke defines the role store interface needed by RevokeRole.
type RoleStoreForRevoke interface {
	Revoke(ctx context.Context, email string, role identity.Role) error
	ListByRole(ctx context.Context, role identity.Role) ([]string, error)
}

// RevokeRoleDeps holds dependencies for RevokeRole.
type RevokeRoleDeps struct {
	RoleStore RoleStoreForRevoke
	Audit     AuditRecorder
}

// ExecuteRevokeRole removes an additive role from an email. Sessions already
// carrying the role keep it until the holder signs in again.
// PRE: caller holds the Admin role
// POST: no assignment for (email, role) remains; at least one Admin remains
func ExecuteRevokeRole(ctx context.Context, input GrantRoleInput, deps RevokeRoleDeps) error {
	email := member.NormalizeEmail(input.Email)
	if email == "" {
		return member.ErrEmptyEmail
	}
	if input.Role != identity.RoleAdmin {
		return ErrRoleNotGrantable
	}

	holders, err := deps.RoleStore.ListByRole(ctx, input.Role)
	if err != nil {
		return err
	}
	held := false
	for _, h := range holders {
		if member.NormalizeEmail(h) == email {
			held = true
			break
		}
	}
	if !held {
		return nil
	}
	if len(holders) == 1 {
		return ErrLastAdmin
	}
	if err := deps.RoleStore.Revoke(ctx, email, input.Role); err != nil {
		return err
	}

	slog.Info("role_revoked", "email", email, "role", input.Role, "actor_id", input.ActorID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryRole, audit.ActionRevoke).
		WithSeverity(audit.SeverityCritical).
		WithResource("email", email).
		WithDescription(string(input.Role)), input.Request)
	return nil
}
