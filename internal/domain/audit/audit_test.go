package audit

import "testing"

func TestNewEvent_Defaults(t *testing.T) {
	a := NewEvent("7", "admin@gym.test", CategoryImpersonation, ActionStart)
	b := NewEvent("7", "admin@gym.test", CategoryImpersonation, ActionStart)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids = %q, %q; want distinct non-empty", a.ID, b.ID)
	}
	if a.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", a.Severity)
	}
	if a.Timestamp.IsZero() || a.Timestamp.Location().String() != "UTC" {
		t.Errorf("Timestamp = %v, want UTC now", a.Timestamp)
	}
}

func TestEvent_BuildersDoNotMutateReceiver(t *testing.T) {
	base := NewEvent("7", "admin@gym.test", CategoryMember, ActionPasswordReset)
	built := base.WithSeverity(SeverityWarning).
		WithResource("member", "42").
		WithDescription("temporary password issued").
		WithRequest("10.0.0.1", "curl/8")

	if base.Severity != SeverityInfo || base.ResourceID != "" {
		t.Error("builders must return a copy")
	}
	if built.Severity != SeverityWarning || built.ResourceType != "member" || built.ResourceID != "42" {
		t.Errorf("built = %+v", built)
	}
	if built.IPAddress != "10.0.0.1" || built.UserAgent != "curl/8" || built.Description == "" {
		t.Errorf("built request fields = %+v", built)
	}
}
