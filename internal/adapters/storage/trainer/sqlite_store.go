package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym/internal/adapters/storage"
	memberDomain "gym/internal/domain/member"
	domain "gym/internal/domain/trainer"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new trainer Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByEmail retrieves a Trainer by email, ignoring case.
// PRE: none
// POST: Returns the entity, ErrNotFound on a miss (including a blank email), or the underlying error
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Trainer, error) {
	email = memberDomain.NormalizeEmail(email)
	if email == "" {
		return domain.Trainer{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, speciality FROM trainer WHERE lower(email) = ?", email)

	var entity domain.Trainer
	err := row.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Speciality)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trainer{}, ErrNotFound
	}
	return entity, err
}

// Create inserts a Trainer and returns its id.
// PRE: entity has been validated
// POST: Trainer persisted; ErrEmailTaken on duplicate email
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Trainer) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO trainer (name, email, speciality) VALUES (?, ?, ?)",
		strings.TrimSpace(entity.Name), memberDomain.NormalizeEmail(entity.Email), entity.Speciality,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert trainer: %w", err)
	}
	return res.LastInsertId()
}

// List returns all trainers ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, speciality FROM trainer ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Trainer
	for rows.Next() {
		var entity domain.Trainer
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Speciality); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
