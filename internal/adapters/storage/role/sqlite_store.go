package role

import (
	"context"
	"fmt"
	"time"

	"gym/internal/adapters/storage"
	"gym/internal/domain/identity"
	memberDomain "gym/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new role assignment Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// HasRole reports whether email holds role.
// PRE: none
// POST: Returns false without a query when email is blank
func (s *SQLiteStore) HasRole(ctx context.Context, email string, role identity.Role) (bool, error) {
	email = memberDomain.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM role_assignment WHERE lower(email) = ? AND role = ?",
		email, string(role),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Grant assigns role to email.
// PRE: email is non-empty, role is valid
// POST: Assignment exists exactly once
func (s *SQLiteStore) Grant(ctx context.Context, email string, role identity.Role) error {
	email = memberDomain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("grant %s: email is required", role)
	}
	if !identity.IsValidRole(role) {
		return fmt.Errorf("grant: unknown role %q", role)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO role_assignment (email, role, granted_at) VALUES (?, ?, ?) ON CONFLICT(email, role) DO NOTHING",
		email, string(role), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Revoke removes an assignment.
// PRE: none
// POST: No assignment for (email, role) remains
func (s *SQLiteStore) Revoke(ctx context.Context, email string, role identity.Role) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM role_assignment WHERE lower(email) = ? AND role = ?",
		memberDomain.NormalizeEmail(email), string(role),
	)
	return err
}

// ListByRole returns the emails holding role, sorted.
func (s *SQLiteStore) ListByRole(ctx context.Context, role identity.Role) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT email FROM role_assignment WHERE role = ? ORDER BY email", string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
