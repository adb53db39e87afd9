package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// MemberStoreForSeed defines the store interface needed by SeedAdmin.
type MemberStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	Create(ctx context.Context, m member.Member) (int64, error)
}

// RoleStoreForSeed defines the role store interface needed by SeedAdmin.
type RoleStoreForSeed interface {
	Grant(ctx context.Context, email string, role identity.Role) error
}

// SeedAdminInput carries input for SeedAdmin.
type SeedAdminInput struct {
	Email string
	Name  string
	// Password is optional; a temporary password is generated when empty.
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	MemberStore MemberStoreForSeed
	RoleStore   RoleStoreForSeed
}

// SeedAdminResult reports what SeedAdmin did.
type SeedAdminResult struct {
	MemberID int64
	Created  bool
	// GeneratedPassword is set only when a member was created without a configured password.
	GeneratedPassword string
}

// ErrSeedEmailRequired is returned when no bootstrap admin email is configured.
var ErrSeedEmailRequired = errors.New("bootstrap admin email is required")

// ExecuteSeedAdmin ensures the bootstrap admin exists and holds the Admin role.
// PRE: input.Email is the single configured bootstrap admin
// POST: a member with that email exists with an Admin assignment; a newly created
// member must change its password on first sign-in
// INVARIANT: idempotent; an existing member keeps its password
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (SeedAdminResult, error) {
	email := member.NormalizeEmail(input.Email)
	if email == "" {
		return SeedAdminResult{}, ErrSeedEmailRequired
	}

	var result SeedAdminResult
	existing, err := deps.MemberStore.GetByEmail(ctx, email)
	switch {
	case err == nil:
		result.MemberID = existing.ID
	case errors.Is(err, member.ErrNotFound):
		name := strings.TrimSpace(input.Name)
		if name == "" {
			name = "Administrator"
		}
		password := input.Password
		if password == "" {
			if password, err = GenerateTemporaryPassword(); err != nil {
				return SeedAdminResult{}, fmt.Errorf("generate admin password: %w", err)
			}
			result.GeneratedPassword = password
		}
		m := member.Member{Name: name, Email: email, MustChangePassword: true, CreatedAt: time.Now().UTC()}
		if err := m.Validate(); err != nil {
			return SeedAdminResult{}, err
		}
		if err := m.SetPassword(password); err != nil {
			return SeedAdminResult{}, err
		}
		if result.MemberID, err = deps.MemberStore.Create(ctx, m); err != nil {
			return SeedAdminResult{}, fmt.Errorf("create bootstrap admin: %w", err)
		}
		result.Created = true
	default:
		return SeedAdminResult{}, fmt.Errorf("load bootstrap admin: %w", err)
	}

	if err := deps.RoleStore.Grant(ctx, email, identity.RoleAdmin); err != nil {
		return SeedAdminResult{}, fmt.Errorf("grant bootstrap admin: %w", err)
	}

	slog.Info("seed_admin", "member_id", result.MemberID, "created", result.Created)
	return result, nil
}
