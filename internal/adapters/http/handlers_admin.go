package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gym/internal/adapters/http/middleware"
	auditStore "gym/internal/adapters/storage/audit"
	memberStore "gym/internal/adapters/storage/member"
	"gym/internal/application/listutil"
	"gym/internal/application/orchestrators"
	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
	"gym/internal/domain/member"
	"gym/internal/domain/trainer"
)

type memberView struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}

type trainerView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Speciality string `json:"speciality,omitempty"`
}

func trainerViewOf(t trainer.Trainer) trainerView {
	return trainerView{ID: t.ID, Name: t.Name, Email: t.Email, Speciality: t.Speciality}
}

type assignTrainerRequest struct {
	Name       string `json:"name" form:"name" validate:"required,max=100"`
	Email      string `json:"email" form:"email" validate:"required,email,max=254"`
	Speciality string `json:"speciality" form:"speciality" validate:"max=100"`
}

type grantRoleRequest struct {
	Email string `json:"email" form:"email" validate:"required,email,max=254"`
	Role  string `json:"role" form:"role" validate:"required"`
}

// handleAdminMembers handles GET /admin/members
func (s *server) handleAdminMembers(w http.ResponseWriter, r *http.Request) {
	q := listutil.ParseQuery(r.URL.Query())
	filter := memberStore.ListFilter{Limit: q.PerPage, Offset: q.Offset(), Search: q.Search}

	members, err := s.stores.MemberStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	total, err := s.stores.MemberStore.Count(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{ID: m.ID, Name: m.Name, Email: m.Email, MustChangePassword: m.MustChangePassword, CreatedAt: m.CreatedAt})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"page":    listutil.NewPageInfo(q.Page, q.PerPage, total),
		"members": views,
	})
}

// handleAdminResetPassword handles POST /admin/members/{memberID}/reset-password
func (s *server) handleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.IdentityFromContext(r.Context())
	memberID, ok := pathID(r, "memberID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid member id")
		return
	}

	res, err := orchestrators.ExecuteResetPassword(r.Context(), orchestrators.ResetPasswordInput{
		ActorID:    admin.MemberIDString(),
		ActorEmail: admin.Email,
		MemberID:   memberID,
		Request:    requestMeta(r),
	}, orchestrators.ResetPasswordDeps{
		MemberStore: s.stores.MemberStore,
		Sender:      s.sender,
		Audit:       s.stores.AuditStore,
	})
	if errors.Is(err, member.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	body := map[string]any{"emailed": res.Emailed}
	if !res.Emailed {
		// The admin has to hand the password over another way.
		body["temporary_password"] = res.TemporaryPassword
	}
	s.metrics.AuthEvent("password_reset")
	writeJSON(w, r, http.StatusOK, body)
}

// handleAdminTrainers handles GET /admin/trainers
func (s *server) handleAdminTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := s.stores.TrainerStore.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]trainerView, 0, len(trainers))
	for _, t := range trainers {
		views = append(views, trainerViewOf(t))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"trainers": views})
}

// handleAdminAssignTrainer handles POST /admin/trainers
func (s *server) handleAdminAssignTrainer(w http.ResponseWriter, r *http.Request) {
	var req assignTrainerRequest
	if err := decodeInput(r, &req); err != nil {
		inputError(w, r, err)
		return
	}

	admin, _ := middleware.IdentityFromContext(r.Context())
	t, err := orchestrators.ExecuteAssignTrainer(r.Context(), orchestrators.AssignTrainerInput{
		ActorID:    admin.MemberIDString(),
		ActorEmail: admin.Email,
		Name:       req.Name,
		Email:      req.Email,
		Speciality: req.Speciality,
		Request:    requestMeta(r),
	}, orchestrators.AssignTrainerDeps{
		TrainerStore: s.stores.TrainerStore,
		Audit:        s.stores.AuditStore,
	})
	switch {
	case errors.Is(err, trainer.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case errors.Is(err, trainer.ErrEmptyName), errors.Is(err, trainer.ErrEmptyEmail):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, trainerViewOf(t))
}

// handleAdminGrantRole handles POST /admin/roles
func (s *server) handleAdminGrantRole(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.IdentityFromContext(r.Context())
	var req grantRoleRequest
	if err := decodeInput(r, &req); err != nil {
		inputError(w, r, err)
		return
	}

	err := orchestrators.ExecuteGrantRole(r.Context(), orchestrators.GrantRoleInput{
		ActorID:    admin.MemberIDString(),
		ActorEmail: admin.Email,
		Email:      req.Email,
		Role:       identity.Role(req.Role),
		Request:    requestMeta(r),
	}, orchestrators.GrantRoleDeps{
		RoleStore: s.stores.RoleStore,
		Audit:     s.stores.AuditStore,
	})
	if errors.Is(err, orchestrators.ErrRoleNotGrantable) || errors.Is(err, member.ErrEmptyEmail) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminRevokeRole handles DELETE /admin/roles
func (s *server) handleAdminRevokeRole(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.IdentityFromContext(r.Context())
	var req grantRoleRequest
	if err := decodeInput(r, &req); err != nil {
		inputError(w, r, err)
		return
	}

	err := orchestrators.ExecuteRevokeRole(r.Context(), orchestrators.GrantRoleInput{
		ActorID:    admin.MemberIDString(),
		ActorEmail: admin.Email,
		Email:      req.Email,
		Role:       identity.Role(req.Role),
		Request:    requestMeta(r),
	}, orchestrators.RevokeRoleDeps{
		RoleStore: s.stores.RoleStore,
		Audit:     s.stores.AuditStore,
	})
	switch {
	case errors.Is(err, orchestrators.ErrRoleNotGrantable), errors.Is(err, member.ErrEmptyEmail):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, orchestrators.ErrLastAdmin):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminRoleHolders handles GET /admin/roles/{role}
func (s *server) handleAdminRoleHolders(w http.ResponseWriter, r *http.Request) {
	role := identity.Role(chi.URLParam(r, "role"))
	if role != identity.RoleAdmin {
		writeError(w, r, http.StatusBadRequest, orchestrators.ErrRoleNotGrantable.Error())
		return
	}
	emails, err := s.stores.RoleStore.ListByRole(r.Context(), role)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if emails == nil {
		emails = []string{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"role": role, "emails": emails})
}

// handleAdminAudit handles GET /admin/audit
func (s *server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	q := listutil.ParseQuery(r.URL.Query(), "category", "action", "actor_id", "from", "to")
	var filter auditStore.Filter
	if v := q.Filter("category"); v != nil {
		c := audit.Category(*v)
		filter.Category = &c
	}
	if v := q.Filter("action"); v != nil {
		a := audit.Action(*v)
		filter.Action = &a
	}
	filter.ActorID = q.Filter("actor_id")
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Filter(key)
		if v == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid "+key+": want RFC 3339")
			return
		}
		*dst = &ts
	}

	events, err := s.stores.AuditStore.List(r.Context(), filter, q.PerPage, q.Offset())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"page": q.Page, "per_page": q.PerPage, "events": events})
}

// handleTrainerMe handles GET /trainer/me
func (s *server) handleTrainerMe(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	t, err := s.stores.TrainerStore.GetByEmail(r.Context(), id.Email)
	if errors.Is(err, trainer.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, trainerViewOf(t))
}
