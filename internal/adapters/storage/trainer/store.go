package trainer

import (
	"context"

	domain "gym/internal/domain/trainer"
)

// ErrNotFound is returned when no trainer matches. It is a benign miss.
var ErrNotFound = domain.ErrNotFound

// ErrEmailTaken is returned when a trainer with the same email already exists.
var ErrEmailTaken = domain.ErrEmailTaken

// Store persists Trainer state.
type Store interface {
	GetByEmail(ctx context.Context, email string) (domain.Trainer, error)
	Create(ctx context.Context, value domain.Trainer) (int64, error)
	List(ctx context.Context) ([]domain.Trainer, error)
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)
