package web

import (
	"errors"
	"net/http"

	"gym/internal/adapters/http/middleware"
	"gym/internal/application/orchestrators"
)

// impersonationDeps builds deps for the request's session handle.
func (s *server) impersonationDeps(sess *middleware.Session) orchestrators.ImpersonationDeps {
	return orchestrators.ImpersonationDeps{
		MemberStore: s.stores.MemberStore,
		Roles:       s.roles,
		Session:     sess,
		Audit:       s.stores.AuditStore,
	}
}

// handleStartImpersonation handles POST /admin/impersonate/{memberID}
func (s *server) handleStartImpersonation(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.IdentityFromContext(r.Context())
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		internalError(w, r, errors.New("impersonation without session storage"))
		return
	}
	targetID, ok := pathID(r, "memberID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid member id")
		return
	}

	id, err := orchestrators.ExecuteStartImpersonation(r.Context(), orchestrators.StartImpersonationInput{
		AdminID:        admin.MemberIDString(),
		AdminEmail:     admin.Email,
		TargetMemberID: targetID,
		Request:        requestMeta(r),
	}, s.impersonationDeps(sess))
	if errors.Is(err, orchestrators.ErrImpersonationTargetNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	// Impersonation ends with the browser session.
	if err := s.auth.SignIn(w, id, false); err != nil {
		internalError(w, r, err)
		return
	}
	s.metrics.AuthEvent("impersonation_start")
	writeJSON(w, r, http.StatusOK, signInResponse{Identity: viewOf(id)})
}

// handleStopImpersonation handles POST /impersonation/stop
func (s *server) handleStopImpersonation(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.IdentityFromContext(r.Context())
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		internalError(w, r, errors.New("impersonation without session storage"))
		return
	}

	// The fallback comes only from the signed cookie, never from the request body.
	var fallback string
	if current.Impersonation != nil {
		fallback = current.Impersonation.OriginalAdminID
	}

	res, err := orchestrators.ExecuteStopImpersonation(r.Context(), orchestrators.StopImpersonationInput{
		FallbackAdminID: fallback,
		Request:         requestMeta(r),
	}, s.impersonationDeps(sess))
	if err != nil {
		internalError(w, r, err)
		return
	}

	switch res.Outcome {
	case orchestrators.StopRestoreAdmin:
		if err := s.auth.SignIn(w, res.Identity, true); err != nil {
			internalError(w, r, err)
			return
		}
		s.metrics.AuthEvent("impersonation_stop")
		writeJSON(w, r, http.StatusOK, signInResponse{Identity: viewOf(res.Identity)})
	default:
		s.auth.SignOut(w)
		s.metrics.AuthEvent("impersonation_signed_out")
		writeJSON(w, r, http.StatusOK, map[string]bool{"signed_out": true})
	}
}
