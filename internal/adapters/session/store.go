// Package session holds server-side per-browser session values.
//
// The signed identity cookie carries who the caller is; this store carries the
// small amount of state that must not live in the cookie, such as the id of the
// admin who started an impersonation.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 8 * time.Hour

// Store keeps string values keyed by session id and value key.
// Every read or write of a live session extends its idle deadline.
type Store interface {
	// Get returns the value stored under key.
	// POST: ok is false on a miss or an expired session; err only on backend failure
	Get(ctx context.Context, sid, key string) (value string, ok bool, err error)

	// Set stores value under key, creating the session if needed.
	Set(ctx context.Context, sid, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, sid, key string) error

	// Destroy removes the whole session.
	Destroy(ctx context.Context, sid string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
