package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym/internal/adapters/storage"
	domain "gym/internal/domain/member"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectColumns = "SELECT id, name, email, password_hash, must_change_password, created_at FROM member"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id > 0
// POST: Returns the entity, ErrNotFound on a miss, or the underlying error
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanOne(row.Scan)
}

// GetByEmail retrieves a Member by email, ignoring case and surrounding whitespace.
// PRE: email is non-empty
// POST: Returns the entity, ErrNotFound on a miss, or the underlying error
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Member{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE lower(email) = ?", email)
	return scanOne(row.Scan)
}

// Create inserts a new Member and returns its id.
// PRE: entity has been validated and carries a password hash
// POST: Member is persisted; ErrEmailTaken if the email already exists
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Member) (int64, error) {
	createdAt := entity.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO member (name, email, password_hash, must_change_password, created_at) VALUES (?, ?, ?, ?, ?)",
		strings.TrimSpace(entity.Name),
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		boolToInt(entity.MustChangePassword),
		createdAt.Format(dateLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return res.LastInsertId()
}

// UpdatePasswordHash replaces the password hash and must-change flag of a member.
// PRE: id > 0, hash is a bcrypt hash
// POST: Row updated; ErrNotFound if no member has that id
func (s *SQLiteStore) UpdatePasswordHash(ctx context.Context, id int64, hash string, mustChange bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET password_hash = ?, must_change_password = ? WHERE id = ?",
		hash, boolToInt(mustChange), id,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves Members based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	var queryBuilder strings.Builder

	queryBuilder.WriteString(selectColumns)
	where, args := searchClause(filter.Search)
	queryBuilder.WriteString(where)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	queryBuilder.WriteString(" ORDER BY name ASC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of members matching filter.Search; paging fields are ignored.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := searchClause(filter.Search)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&count)
	return count, err
}

func searchClause(search string) (string, []any) {
	if search == "" {
		return "", nil
	}
	like := "%" + search + "%"
	return " WHERE name LIKE ? OR email LIKE ?", []any{like, like}
}

func scanOne(scan func(dest ...any) error) (domain.Member, error) {
	entity, err := scanMember(scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, ErrNotFound
	}
	return entity, err
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var mustChange int
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&entity.PasswordHash,
		&mustChange,
		&createdAt,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.MustChangePassword = mustChange != 0
	entity.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
