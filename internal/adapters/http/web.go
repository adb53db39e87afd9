// Package web is the HTTP adapter: routing, request decoding and the mapping of
// orchestrator outcomes onto responses and cookies.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gym/internal/adapters/email"
	"gym/internal/adapters/http/middleware"
	"gym/internal/adapters/metrics"
	"gym/internal/adapters/session"
	auditStore "gym/internal/adapters/storage/audit"
	memberStore "gym/internal/adapters/storage/member"
	roleStore "gym/internal/adapters/storage/role"
	trainerStore "gym/internal/adapters/storage/trainer"
	"gym/internal/application/orchestrators"
	"gym/internal/domain/identity"
)

// Paths the must-change-password gate lets through.
const (
	ChangePasswordPath = "/change-password"
	LogoutPath         = "/logout"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore  memberStore.Store
	TrainerStore trainerStore.Store
	RoleStore    roleStore.Store
	AuditStore   auditStore.Store
}

// Deps holds everything NewRouter wires together.
type Deps struct {
	Stores   Stores
	Sessions session.Store
	Auth     *middleware.CookieAuth
	Sender   email.Sender
	Metrics  *metrics.Metrics
	Limiter  *middleware.RateLimiter

	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	SlowRequestMs  int

	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// server carries the dependencies shared by all handlers.
type server struct {
	stores  Stores
	auth    *middleware.CookieAuth
	sender  email.Sender
	metrics *metrics.Metrics
	roles   *orchestrators.RoleResolver
	ready   func(ctx context.Context) error
}

// NewRouter wires HTTP handlers for the app.
// PRE: d.Stores, d.Sessions and d.Auth are set; CSRFKey is 32 bytes
// POST: Returns the handler, or middleware.ErrPipelineOrder if the auth pipeline is misassembled
func NewRouter(d Deps) (http.Handler, error) {
	if d.Auth == nil || d.Sessions == nil {
		return nil, errors.New("web: auth and session store are required")
	}
	s := &server{
		stores:  d.Stores,
		auth:    d.Auth,
		sender:  d.Sender,
		metrics: d.Metrics,
		roles:   orchestrators.NewRoleResolver(d.Stores.TrainerStore, d.Stores.RoleStore),
		ready:   d.Ready,
	}

	authPipeline, err := middleware.Pipeline(
		middleware.Stage{Name: middleware.StageSessions, Middleware: middleware.Sessions(d.Sessions, d.SecureCookies)},
		middleware.Stage{Name: middleware.StageAuthenticate, Middleware: d.Auth.Authenticate},
		middleware.Stage{Name: "password_gate", Middleware: middleware.RequirePasswordChange(ChangePasswordPath, LogoutPath)},
	)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timing(d.Metrics, d.SlowRequestMs))
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Handler)
		}
		r.Use(middleware.CSRF(d.CSRFKey, d.SecureCookies, d.TrustedOrigins))
		r.Use(authPipeline)

		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post(LogoutPath, s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get(ChangePasswordPath, s.handleChangePasswordForm)
			r.Post(ChangePasswordPath, s.handleChangePassword)
			r.Get("/api/me", s.handleMe)
			r.Post("/impersonation/stop", s.handleStopImpersonation)
		})

		if d.Metrics != nil {
			r.With(middleware.RequireRole(identity.RoleAdmin)).Handle("/metrics", d.Metrics.Handler())
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(identity.RoleTrainer))
			r.Get("/trainer/me", s.handleTrainerMe)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(identity.RoleAdmin))
			r.Post("/impersonate/{memberID}", s.handleStartImpersonation)
			r.Get("/members", s.handleAdminMembers)
			r.Post("/members/{memberID}/reset-password", s.handleAdminResetPassword)
			r.Get("/trainers", s.handleAdminTrainers)
			r.Post("/trainers", s.handleAdminAssignTrainer)
			r.Post("/roles", s.handleAdminGrantRole)
			r.Delete("/roles", s.handleAdminRevokeRole)
			r.Get("/roles/{role}", s.handleAdminRoleHolders)
			r.Get("/audit", s.handleAdminAudit)
		})
	})

	return r, nil
}

// handleHealth handles GET /healthz
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
