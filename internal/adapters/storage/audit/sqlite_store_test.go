package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gym/internal/adapters/storage"
	domain "gym/internal/domain/audit"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(context.Background(), db); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStore_SaveAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	older := domain.NewEvent("7", "owner@gym.test", domain.CategoryAuth, domain.ActionLogin)
	older.Timestamp = time.Now().Add(-time.Hour)
	newer := domain.NewEvent("7", "owner@gym.test", domain.CategoryImpersonation, domain.ActionStart).
		WithResource("member", "42")

	for _, e := range []domain.Event{older, newer} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	events, err := store.List(ctx, Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List() returned %d events, want 2", len(events))
	}
	if events[0].ID != newer.ID {
		t.Errorf("first event = %s, want newest %s", events[0].ID, newer.ID)
	}
	if events[0].ResourceID != "42" {
		t.Errorf("ResourceID = %q, want 42", events[0].ResourceID)
	}
}

func TestSQLiteStore_ListFiltersByCategory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_ = store.Save(ctx, domain.NewEvent("7", "", domain.CategoryAuth, domain.ActionLogin))
	_ = store.Save(ctx, domain.NewEvent("7", "", domain.CategoryImpersonation, domain.ActionStart))

	cat := domain.CategoryImpersonation
	events, err := store.List(ctx, Filter{Category: &cat}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].Category != domain.CategoryImpersonation {
		t.Errorf("List(category=impersonation) = %v", events)
	}
}

func TestSQLiteStore_ListFiltersByActorAndTime(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, actor := range []string{"7", "42", "7"} {
		e := domain.NewEvent(actor, "", domain.CategoryAuth, domain.ActionLogin)
		e.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	actor := "7"
	events, err := store.List(ctx, Filter{ActorID: &actor}, 0, 0)
	if err != nil {
		t.Fatalf("List(actor) error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("List(actor=7) = %d events, want 2", len(events))
	}

	from, to := base.Add(30*time.Minute), base.Add(2*time.Hour)
	events, err = store.List(ctx, Filter{From: &from, To: &to}, 10, 0)
	if err != nil {
		t.Fatalf("List(range) error = %v", err)
	}
	if len(events) != 1 || events[0].ActorID != "42" {
		t.Errorf("List(range) = %+v, want only the 10:00 event", events)
	}
	if !events[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("Timestamp = %v, want round trip of %v", events[0].Timestamp, base.Add(time.Hour))
	}
}

func TestSQLiteStore_SameInstantKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := domain.NewEvent("7", "", domain.CategoryImpersonation, domain.ActionStart)
	second := domain.NewEvent("7", "", domain.CategoryImpersonation, domain.ActionStop)
	first.Timestamp, second.Timestamp = at, at
	for _, e := range []domain.Event{first, second} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	events, err := store.List(ctx, Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 || events[0].Action != domain.ActionStop {
		t.Errorf("List() = %+v, want stop before start", events)
	}
}

func TestSQLiteStore_ListOffset(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		e := domain.NewEvent("7", "", domain.CategoryAuth, domain.ActionLogin)
		e.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	first, err := store.List(ctx, Filter{}, 1, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	second, err := store.List(ctx, Filter{}, 1, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("List() lengths = %d, %d, want 1, 1", len(first), len(second))
	}
	if first[0].ID == second[0].ID {
		t.Errorf("offset 1 returned the same event %s as offset 0", first[0].ID)
	}
	if !second[0].Timestamp.Before(first[0].Timestamp) {
		t.Errorf("offset 1 timestamp %v not older than %v", second[0].Timestamp, first[0].Timestamp)
	}

	past, err := store.List(ctx, Filter{}, 10, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(past) != 0 {
		t.Errorf("List() past end = %d events, want 0", len(past))
	}
}
