package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gym/internal/adapters/session"
)

func TestSessions_IssuesAndReusesID(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	var sid string
	handler := Sessions(store, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("no session in context")
		}
		sid = sess.ID()
		_ = sess.Set(r.Context(), "OriginalAdminId", "7")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	issued := cookieNamed(rr, SessionCookieName)
	if issued == nil || issued.Value != sid {
		t.Fatalf("session cookie = %+v, want id %s", issued, sid)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issued)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if cookieNamed(rr, SessionCookieName) != nil {
		t.Error("existing session should not be reissued")
	}
	if sid != issued.Value {
		t.Errorf("sid = %s, want reused %s", sid, issued.Value)
	}
	if v, ok, _ := store.Get(context.Background(), sid, "OriginalAdminId"); !ok || v != "7" {
		t.Errorf("stored value = %q, %v", v, ok)
	}
}

func TestSession_RenewDropsValues(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(time.Hour)
	rr := httptest.NewRecorder()
	sess := &Session{id: "old", store: store, w: rr}
	_ = sess.Set(ctx, "k", "v")

	if err := sess.Renew(ctx); err != nil {
		t.Fatalf("Renew() error = %v", err)
	}
	if sess.ID() == "old" {
		t.Error("Renew should issue a new id")
	}
	if _, ok, _ := store.Get(ctx, "old", "k"); ok {
		t.Error("old session should be destroyed")
	}
	if c := cookieNamed(rr, SessionCookieName); c == nil || c.Value != sess.ID() {
		t.Error("Renew should write the new id cookie")
	}
}
