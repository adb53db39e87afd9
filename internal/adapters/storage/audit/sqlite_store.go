package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym/internal/adapters/storage"
	domain "gym/internal/domain/audit"
)

// dateLayout is fixed width so that timestamps sort lexically.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultLimit = 100

const selectColumns = `SELECT id, timestamp, category, action, severity, actor_id, actor_email, resource_id, resource_type, description, ip_address, user_agent FROM audit_event`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends event; events are never updated.
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor_id, actor_email, resource_id, resource_type, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC().Format(dateLayout), string(event.Category), string(event.Action),
		string(event.Severity), event.ActorID, event.ActorEmail,
		event.ResourceID, event.ResourceType, event.Description, event.IPAddress, event.UserAgent)
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", event.Action, err)
	}
	return nil
}

// List returns the newest events matching every set field of filter.
// PRE: none; limit <= 0 selects defaultLimit, offset < 0 is treated as 0
// POST: Events ordered newest first; ties keep reverse insertion order
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	where, args := filter.clauses()

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (f Filter) clauses() ([]string, []any) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		where = append(where, cond)
		args = append(args, arg)
	}
	if f.Category != nil {
		add("category = ?", string(*f.Category))
	}
	if f.Action != nil {
		add("action = ?", string(*f.Action))
	}
	if f.ActorID != nil {
		add("actor_id = ?", *f.ActorID)
	}
	if f.From != nil {
		add("timestamp >= ?", f.From.UTC().Format(dateLayout))
	}
	if f.To != nil {
		add("timestamp < ?", f.To.UTC().Format(dateLayout))
	}
	return where, args
}

// scanEvents reads every row; an unparsable timestamp is an error.
func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var timestamp string
		err := rows.Scan(&e.ID, &timestamp, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail, &e.ResourceID, &e.ResourceType, &e.Description, &e.IPAddress, &e.UserAgent)
		if err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(dateLayout, timestamp); err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", timestamp, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
