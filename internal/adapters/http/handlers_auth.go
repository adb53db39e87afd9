package web

import (
	"errors"
	"log/slog"
	"net/http"

	"gym/internal/adapters/http/middleware"
	"gym/internal/application/orchestrators"
	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=254"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=8,max=72"`
}

type signInResponse struct {
	Identity identityView `json:"identity"`
	Redirect string       `json:"redirect,omitempty"`
}

// handleLoginForm handles GET /login
func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		writeJSON(w, r, http.StatusOK, map[string]any{"identity": viewOf(id)})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"csrf_token": middleware.CSRFToken(r)})
}

// handleLogin handles POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeInput(r, &req); err != nil {
		// Missing fields fail exactly like bad credentials.
		s.metrics.AuthEvent("login_failed")
		writeError(w, r, http.StatusUnauthorized, orchestrators.ErrInvalidCredentials.Error())
		return
	}

	id, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Request:  requestMeta(r),
	}, orchestrators.LoginDeps{
		MemberStore: s.stores.MemberStore,
		Roles:       s.roles,
		Audit:       s.stores.AuditStore,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		s.metrics.AuthEvent("login_failed")
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	if !s.signInFresh(w, r, id) {
		return
	}
	s.metrics.AuthEvent("login_success")
	writeJSON(w, r, http.StatusOK, signInResult(id))
}

// handleRegister handles POST /register
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeInput(r, &req); err != nil {
		inputError(w, r, err)
		return
	}

	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Request:  requestMeta(r),
	}, orchestrators.RegisterMemberDeps{
		MemberStore: s.stores.MemberStore,
		Audit:       s.stores.AuditStore,
	})
	switch {
	case errors.Is(err, member.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case isMemberValidationError(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	id, err := orchestrators.BuildIdentity(r.Context(), m, s.roles)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !s.signInFresh(w, r, id) {
		return
	}
	writeJSON(w, r, http.StatusCreated, signInResult(id))
}

// handleLogout handles POST /logout
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		s.metrics.AuthEvent("logout")
		slog.Info("auth_event", "event", "logout", "member_id", id.MemberID)
		if s.stores.AuditStore != nil {
			meta := requestMeta(r)
			e := audit.NewEvent(id.MemberIDString(), id.Email, audit.CategoryAuth, audit.ActionLogout).
				WithRequest(meta.IPAddress, meta.UserAgent)
			if err := s.stores.AuditStore.Save(r.Context(), e); err != nil {
				slog.Error("audit_write_failed", "error", err, "action", e.Action)
			}
		}
	}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := sess.Destroy(r.Context()); err != nil {
			internalError(w, r, err)
			return
		}
	}
	s.auth.SignOut(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePasswordForm handles GET /change-password
func (s *server) handleChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{
		"csrf_token":           middleware.CSRFToken(r),
		"must_change_password": id.MustChangePassword,
	})
}

// handleChangePassword handles POST /change-password
func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.IdentityFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeInput(r, &req); err != nil {
		inputError(w, r, err)
		return
	}

	id, err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		Identity:        current,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Request:         requestMeta(r),
	}, orchestrators.ChangePasswordDeps{
		MemberStore: s.stores.MemberStore,
		Roles:       s.roles,
		Audit:       s.stores.AuditStore,
	})
	switch {
	case errors.Is(err, orchestrators.ErrChangeWhileImpersonating):
		writeError(w, r, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, orchestrators.ErrCurrentPasswordWrong),
		errors.Is(err, orchestrators.ErrNewPasswordSame),
		errors.Is(err, orchestrators.ErrPasswordFieldsRequired),
		isMemberValidationError(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, member.ErrNotFound):
		// The account behind this identity is gone.
		s.auth.SignOut(w)
		writeError(w, r, http.StatusUnauthorized, "account no longer exists")
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	if err := s.auth.SignIn(w, id, true); err != nil {
		internalError(w, r, err)
		return
	}
	s.metrics.AuthEvent("password_changed")
	writeJSON(w, r, http.StatusOK, signInResult(id))
}

// handleMe handles GET /api/me
func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, viewOf(id))
}

// signInFresh renews the server-side session and issues a persistent identity cookie.
// It writes the error response itself and reports whether the caller may continue.
func (s *server) signInFresh(w http.ResponseWriter, r *http.Request, id identity.Identity) bool {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := sess.Renew(r.Context()); err != nil {
			internalError(w, r, err)
			return false
		}
	}
	if err := s.auth.SignIn(w, id, true); err != nil {
		internalError(w, r, err)
		return false
	}
	return true
}

func signInResult(id identity.Identity) signInResponse {
	res := signInResponse{Identity: viewOf(id)}
	if id.MustChangePassword {
		res.Redirect = ChangePasswordPath
	}
	return res
}

func isMemberValidationError(err error) bool {
	for _, target := range []error{
		member.ErrEmptyName, member.ErrNameTooLong, member.ErrEmptyEmail, member.ErrInvalidEmail,
		member.ErrEmailTooLong, member.ErrEmptyPassword, member.ErrPasswordTooShort, member.ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
