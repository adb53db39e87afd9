package orchestrators

import (
	"context"

	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

// BuildIdentity constructs the principal for a member whose credentials were already verified.
// PRE: m was loaded from the credential store
// POST: Roles holds Member first, then Trainer and Admin as resolved; nothing is carried from a previous identity
func BuildIdentity(ctx context.Context, m member.Member, roles *RoleResolver) (identity.Identity, error) {
	id := identity.Identity{
		MemberID:           m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Roles:              []identity.Role{identity.RoleMember},
		MustChangePassword: m.MustChangePassword,
	}

	trainerID, isTrainer, err := roles.TrainerIDForEmail(ctx, m.Email)
	if err != nil {
		return identity.Identity{}, err
	}
	if isTrainer {
		id.Roles = append(id.Roles, identity.RoleTrainer)
		id.TrainerID = &trainerID
	}

	isAdmin, err := roles.IsAdmin(ctx, m.Email)
	if err != nil {
		return identity.Identity{}, err
	}
	if isAdmin {
		id.Roles = append(id.Roles, identity.RoleAdmin)
	}
	return id, nil
}
