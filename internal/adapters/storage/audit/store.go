package audit

import (
	"context"
	"time"

	domain "gym/internal/domain/audit"
)

// Store is the append-only audit trail.
type Store interface {
	Save(ctx context.Context, event domain.Event) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Event, error)
}

// Filter narrows List. Nil fields match everything; From is inclusive, To exclusive.
type Filter struct {
	Category *domain.Category
	Action   *domain.Action
	ActorID  *string
	From     *time.Time
	To       *time.Time
}

var _ Store = (*SQLiteStore)(nil)
