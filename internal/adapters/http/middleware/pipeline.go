package middleware

import (
	"errors"
	"fmt"
	"net/http"
)

// Stage names with an ordering contract.
const (
	StageSessions     = "sessions"
	StageAuthenticate = "authenticate"
)

// ErrPipelineOrder is returned when authentication would run before session
// storage is available, which would lose the impersonation marker.
var ErrPipelineOrder = errors.New("sessions stage must precede authenticate stage")

// Stage is a named middleware in the request pipeline.
type Stage struct {
	Name       string
	Middleware func(http.Handler) http.Handler
}

// Pipeline composes stages so that the first stage is outermost.
// PRE: if an authenticate stage is present, a sessions stage precedes it
// POST: Returns the composed middleware, or ErrPipelineOrder
func Pipeline(stages ...Stage) (func(http.Handler) http.Handler, error) {
	sessionsAt, authAt := -1, -1
	for i, s := range stages {
		if s.Middleware == nil {
			return nil, fmt.Errorf("stage %q has no middleware", s.Name)
		}
		switch s.Name {
		case StageSessions:
			sessionsAt = i
		case StageAuthenticate:
			authAt = i
		}
	}
	if authAt >= 0 && (sessionsAt < 0 || sessionsAt > authAt) {
		return nil, ErrPipelineOrder
	}

	return func(h http.Handler) http.Handler {
		for i := len(stages) - 1; i >= 0; i-- {
			h = stages[i].Middleware(h)
		}
		return h
	}, nil
}
