package member

import (
	"context"

	domain "gym/internal/domain/member"
)

// Store errors. A miss is never a failure: callers branch on ErrNotFound and
// treat every other error as a data-access failure.
var (
	ErrNotFound   = domain.ErrNotFound
	ErrEmailTaken = domain.ErrEmailTaken
)

// Store persists Member credentials.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	Create(ctx context.Context, value domain.Member) (int64, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string, mustChange bool) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Search string
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)
