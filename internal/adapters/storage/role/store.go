package role

import (
	"context"

	"gym/internal/domain/identity"
)

// Store persists role assignments keyed by email. Only additive roles
// (Trainer is resolved from the trainer table, so in practice Admin) live here.
type Store interface {
	// HasRole reports whether email holds role. A blank email never holds a role.
	HasRole(ctx context.Context, email string, role identity.Role) (bool, error)
	// Grant assigns role to email. Granting an existing assignment is a no-op.
	Grant(ctx context.Context, email string, role identity.Role) error
	// Revoke removes an assignment if present.
	Revoke(ctx context.Context, email string, role identity.Role) error
	// ListByRole returns the emails holding role.
	ListByRole(ctx context.Context, role identity.Role) ([]string, error)
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)
