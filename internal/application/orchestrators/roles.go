package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"gym/internal/domain/identity"
	"gym/internal/domain/member"
	"gym/internal/domain/trainer"
)

// TrainerStoreForRoles defines the trainer lookup needed by RoleResolver.
type TrainerStoreForRoles interface {
	GetByEmail(ctx context.Context, email string) (trainer.Trainer, error)
}

// RoleStoreForRoles defines the role-assignment lookup needed by RoleResolver.
type RoleStoreForRoles interface {
	HasRole(ctx context.Context, email string, role identity.Role) (bool, error)
}

// RoleResolver answers role membership questions for an email.
// It is read-only. A blank email is "not found" for every question.
type RoleResolver struct {
	Trainers TrainerStoreForRoles
	Roles    RoleStoreForRoles
}

// NewRoleResolver creates a RoleResolver.
func NewRoleResolver(trainers TrainerStoreForRoles, roles RoleStoreForRoles) *RoleResolver {
	return &RoleResolver{Trainers: trainers, Roles: roles}
}

// IsTrainer reports whether email belongs to a trainer.
// POST: store misses are false; other store errors propagate
func (r *RoleResolver) IsTrainer(ctx context.Context, email string) (bool, error) {
	_, ok, err := r.TrainerIDForEmail(ctx, email)
	return ok, err
}

// TrainerIDForEmail returns the trainer id for email, if there is one.
// POST: ok is false on a miss or blank email
func (r *RoleResolver) TrainerIDForEmail(ctx context.Context, email string) (int64, bool, error) {
	email = member.NormalizeEmail(email)
	if email == "" {
		return 0, false, nil
	}
	t, err := r.Trainers.GetByEmail(ctx, email)
	if errors.Is(err, trainer.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve trainer: %w", err)
	}
	return t.ID, true, nil
}

// IsAdmin reports whether email holds the Admin role assignment.
func (r *RoleResolver) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = member.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	ok, err := r.Roles.HasRole(ctx, email, identity.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("resolve admin: %w", err)
	}
	return ok, nil
}
