package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"gym/internal/adapters/session"
)

// SessionCookieName names the cookie carrying the server-side session id.
const SessionCookieName = "gym_sid"

const sessionContextKey contextKey = "session"

// Session is the request-scoped handle on server-side session storage.
type Session struct {
	id     string
	store  session.Store
	w      http.ResponseWriter
	secure bool
}

// ID returns the current session id.
func (s *Session) ID() string { return s.id }

// Get returns the value stored under key in this session.
func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

// Set stores value under key in this session.
func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

// Delete removes key from this session.
func (s *Session) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.id, key)
}

// Renew discards the current session and issues a fresh id.
// POST: old session destroyed, new id cookie written, no values carried over
func (s *Session) Renew(ctx context.Context) error {
	if err := s.store.Destroy(ctx, s.id); err != nil {
		return err
	}
	s.id = session.NewID()
	setSessionCookie(s.w, s.id, s.secure)
	return nil
}

// Destroy removes the session and expires its cookie.
func (s *Session) Destroy(ctx context.Context) error {
	err := s.store.Destroy(ctx, s.id)
	s.id = session.NewID()
	setSessionCookie(s.w, s.id, s.secure)
	return err
}

// Sessions returns middleware that loads or creates the server-side session and
// attaches its handle to the request context.
// It must run before Authenticate; see Pipeline.
func Sessions(store session.Store, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{store: store, w: w, secure: secure}
			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				sess.id = c.Value
			} else {
				sess.id = session.NewID()
				setSessionCookie(w, sess.id, secure)
				slog.Debug("session_created", "path", r.URL.Path)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext returns the session handle attached by Sessions.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func setSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}
