package middleware

import (
	"net/http"
)

// RequirePasswordChange returns middleware that confines identities flagged
// must-change-password to changePath and logoutPath. Every other request is
// redirected to changePath. Unauthenticated requests pass through.
// The decision is taken from the identity on every request; there is no state.
func RequirePasswordChange(changePath, logoutPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || !id.MustChangePassword {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.Path == changePath || r.URL.Path == logoutPath {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, changePath, http.StatusSeeOther)
		})
	}
}
