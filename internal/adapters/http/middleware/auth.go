package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/securecookie"

	"gym/internal/domain/identity"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

// AuthCookieName names the signed identity cookie.
const AuthCookieName = "gym_auth"

// DefaultAuthLifetime is how long an issued identity stays valid without activity.
const DefaultAuthLifetime = 8 * time.Hour

// Claim types written into the identity cookie. The member id is written under
// three names because older handlers read MemberId or UserId.
const (
	ClaimNameIdentifier     = "nameidentifier"
	ClaimMemberID           = "MemberId"
	ClaimUserID             = "UserId"
	ClaimName               = "name"
	ClaimEmail              = "email"
	ClaimRole               = "role"
	ClaimTrainerID          = "TrainerId"
	ClaimMustChangePassword = "MustChangePassword"
	ClaimIsImpersonating    = "IsImpersonating"
	ClaimImpersonatorID     = "ImpersonatorId"
)

var errInvalidTicket = errors.New("invalid identity ticket")

// Claim is one named attribute of the signed identity.
type Claim struct {
	Type  string `json:"t"`
	Value string `json:"v"`
}

// ticket is the signed cookie payload.
type ticket struct {
	Claims     []Claim `json:"claims"`
	IssuedAt   int64   `json:"iat"`
	ExpiresAt  int64   `json:"exp"`
	Persistent bool    `json:"persistent"`
}

// CookieAuth issues and reads the signed identity cookie.
type CookieAuth struct {
	codec    *securecookie.SecureCookie
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

// NewCookieAuth creates a CookieAuth.
// PRE: hashKey is 32 or 64 bytes; blockKey is 16, 24 or 32 bytes
// POST: cookies are authenticated with hashKey and encrypted with blockKey
func NewCookieAuth(hashKey, blockKey []byte, lifetime time.Duration, secure bool) *CookieAuth {
	if lifetime <= 0 {
		lifetime = DefaultAuthLifetime
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(lifetime.Seconds()))
	return &CookieAuth{codec: codec, lifetime: lifetime, secure: secure, now: time.Now}
}

// Claims flattens id into the cookie claim set.
// INVARIANT: the member id appears under ClaimNameIdentifier, ClaimMemberID and ClaimUserID
func Claims(id identity.Identity) []Claim {
	memberID := id.MemberIDString()
	claims := []Claim{
		{ClaimNameIdentifier, memberID},
		{ClaimMemberID, memberID},
		{ClaimUserID, memberID},
		{ClaimName, id.Name},
		{ClaimEmail, id.Email},
	}
	for _, r := range id.Roles {
		claims = append(claims, Claim{ClaimRole, string(r)})
	}
	if id.TrainerID != nil {
		claims = append(claims, Claim{ClaimTrainerID, strconv.FormatInt(*id.TrainerID, 10)})
	}
	if id.MustChangePassword {
		claims = append(claims, Claim{ClaimMustChangePassword, "true"})
	}
	if id.Impersonation != nil {
		claims = append(claims,
			Claim{ClaimIsImpersonating, "true"},
			Claim{ClaimImpersonatorID, id.Impersonation.OriginalAdminID})
	}
	return claims
}

// IdentityFromClaims rebuilds the canonical identity from a claim set.
// POST: errInvalidTicket if the member id is missing or the copies disagree
func IdentityFromClaims(claims []Claim) (identity.Identity, error) {
	var id identity.Identity
	ids := map[string]string{}
	var impersonating bool
	var impersonator string
	for _, c := range claims {
		switch c.Type {
		case ClaimNameIdentifier, ClaimMemberID, ClaimUserID:
			ids[c.Type] = c.Value
		case ClaimName:
			id.Name = c.Value
		case ClaimEmail:
			id.Email = c.Value
		case ClaimRole:
			id.Roles = append(id.Roles, identity.Role(c.Value))
		case ClaimTrainerID:
			tid, err := strconv.ParseInt(c.Value, 10, 64)
			if err != nil {
				return identity.Identity{}, errInvalidTicket
			}
			id.TrainerID = &tid
		case ClaimMustChangePassword:
			id.MustChangePassword = c.Value == "true"
		case ClaimIsImpersonating:
			impersonating = c.Value == "true"
		case ClaimImpersonatorID:
			impersonator = c.Value
		}
	}

	canonical := ids[ClaimNameIdentifier]
	if canonical == "" || ids[ClaimMemberID] != canonical || ids[ClaimUserID] != canonical {
		return identity.Identity{}, errInvalidTicket
	}
	memberID, err := strconv.ParseInt(canonical, 10, 64)
	if err != nil {
		return identity.Identity{}, errInvalidTicket
	}
	id.MemberID = memberID
	if !id.HasRole(identity.RoleMember) {
		return identity.Identity{}, errInvalidTicket
	}
	if impersonating {
		id.Impersonation = &identity.Impersonation{OriginalAdminID: impersonator}
	}
	return id, nil
}

// SignIn replaces the identity cookie with a freshly issued one for id.
// Persistent cookies carry an expiry; non-persistent ones end with the browser session.
// POST: any previously issued identity cookie is overwritten
func (a *CookieAuth) SignIn(w http.ResponseWriter, id identity.Identity, persistent bool) error {
	now := a.now()
	return a.write(w, ticket{
		Claims:     Claims(id),
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(a.lifetime).Unix(),
		Persistent: persistent,
	})
}

// SignOut expires the identity cookie.
func (a *CookieAuth) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (a *CookieAuth) write(w http.ResponseWriter, t ticket) error {
	encoded, err := a.codec.Encode(AuthCookieName, t)
	if err != nil {
		return fmt.Errorf("encode identity cookie: %w", err)
	}
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if t.Persistent {
		cookie.Expires = time.Unix(t.ExpiresAt, 0)
		cookie.MaxAge = int(time.Until(cookie.Expires).Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// read decodes and validates the identity cookie on r.
func (a *CookieAuth) read(r *http.Request) (ticket, identity.Identity, error) {
	c, err := r.Cookie(AuthCookieName)
	if err != nil || c.Value == "" {
		return ticket{}, identity.Identity{}, http.ErrNoCookie
	}
	var t ticket
	if err := a.codec.Decode(AuthCookieName, c.Value, &t); err != nil {
		return ticket{}, identity.Identity{}, err
	}
	if a.now().Unix() >= t.ExpiresAt {
		return ticket{}, identity.Identity{}, errInvalidTicket
	}
	id, err := IdentityFromClaims(t.Claims)
	return t, id, err
}

// Authenticate returns middleware that reads the identity cookie and attaches the
// identity to the request context. It does NOT block unauthenticated requests;
// use RequireAuth or RequireRole for that.
// Activity past half the lifetime reissues the cookie with a fresh expiry.
// PRE: Sessions ran earlier in the pipeline; otherwise the request fails with 500
func (a *CookieAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			slog.Error("internal_error", "error", "authentication ran without a session", "path", r.URL.Path)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		t, id, err := a.read(r)
		switch {
		case errors.Is(err, http.ErrNoCookie):
		case err != nil:
			slog.Info("auth_event", "event", "ticket_rejected", "error", err)
			a.SignOut(w)
		default:
			if a.now().Sub(time.Unix(t.IssuedAt, 0)) > a.lifetime/2 {
				now := a.now()
				t.IssuedAt = now.Unix()
				t.ExpiresAt = now.Add(a.lifetime).Unix()
				if err := a.write(w, t); err != nil {
					slog.Error("internal_error", "error", err)
				}
			}
			r = r.WithContext(ContextWithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns middleware that blocks unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that blocks requests from identities holding none of roles.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			for _, role := range roles {
				if id.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			slog.Warn("auth_denied", "member_id", id.MemberID, "path", r.URL.Path, "required", roles)
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// IdentityFromContext extracts the identity from the request context.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(identity.Identity)
	return id, ok
}

// ContextWithIdentity returns a context with the given identity set.
func ContextWithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
