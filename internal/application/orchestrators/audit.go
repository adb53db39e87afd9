package orchestrators

import (
	"context"
	"log/slog"

	"gym/internal/domain/audit"
)

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// RequestMeta carries the caller details stamped on audit events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// recordAudit stores e if a recorder is configured. Audit failures are logged,
// never returned: the audited action has already happened.
func recordAudit(ctx context.Context, rec AuditRecorder, e audit.Event, meta RequestMeta) {
	if rec == nil {
		return
	}
	e = e.WithRequest(meta.IPAddress, meta.UserAgent)
	if err := rec.Save(ctx, e); err != nil {
		slog.Error("audit_write_failed", "error", err, "category", e.Category, "action", e.Action)
	}
}
