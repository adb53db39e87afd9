package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
)

func TestExecuteLogin_BuildsIdentity(t *testing.T) {
	f := newGymFixture(t)

	tests := []struct {
		name      string
		email     string
		password  string
		wantID    int64
		wantRoles []identity.Role
	}{
		{"member", "dana@gym.test", "dana-password", 42, []identity.Role{identity.RoleMember}},
		{"trainer", "KIM@gym.test", "coach-password", 12, []identity.Role{identity.RoleMember, identity.RoleTrainer}},
		{"admin", " owner@gym.test ", "owner-password", 7, []identity.Role{identity.RoleMember, identity.RoleAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExecuteLogin(context.Background(), LoginInput{Email: tt.email, Password: tt.password}, f.loginDeps())
			if err != nil {
				t.Fatalf("ExecuteLogin() error = %v", err)
			}
			if id.MemberID != tt.wantID {
				t.Errorf("MemberID = %d, want %d", id.MemberID, tt.wantID)
			}
			if !rolesEqual(id.Roles, tt.wantRoles) {
				t.Errorf("Roles = %v, want %v", id.Roles, tt.wantRoles)
			}
			if id.IsImpersonating() {
				t.Error("fresh login must not be impersonating")
			}
		})
	}
}

func TestExecuteLogin_TrainerIDClaim(t *testing.T) {
	f := newGymFixture(t)
	id, err := ExecuteLogin(context.Background(), LoginInput{Email: "kim@gym.test", Password: "coach-password"}, f.loginDeps())
	if err != nil {
		t.Fatalf("ExecuteLogin() error = %v", err)
	}
	if id.TrainerID == nil || *id.TrainerID != 3 {
		t.Errorf("TrainerID = %v, want 3", id.TrainerID)
	}
}

func TestExecuteLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newGymFixture(t)

	inputs := []LoginInput{
		{Email: "nobody@gym.test", Password: "dana-password"},
		{Email: "dana@gym.test", Password: "wrong-password"},
		{Email: "", Password: "dana-password"},
		{Email: "dana@gym.test", Password: ""},
	}
	for _, in := range inputs {
		_, err := ExecuteLogin(context.Background(), in, f.loginDeps())
		if err != ErrInvalidCredentials {
			t.Errorf("ExecuteLogin(%q) error = %v, want exactly ErrInvalidCredentials", in.Email, err)
		}
		if err != nil && err.Error() != "invalid email or password" {
			t.Errorf("message = %q", err.Error())
		}
	}
	for _, action := range f.audit.actions() {
		if action != audit.ActionLoginFailed {
			t.Errorf("audit action = %s, want login_failed", action)
		}
	}
}

func TestExecuteLogin_MustChangeCarried(t *testing.T) {
	f := newGymFixture(t)
	f.members.add(t, 50, "New Member", "new@gym.test", "temporary-pw", true)

	id, err := ExecuteLogin(context.Background(), LoginInput{Email: "new@gym.test", Password: "temporary-pw"}, f.loginDeps())
	if err != nil {
		t.Fatalf("ExecuteLogin() error = %v", err)
	}
	if !id.MustChangePassword {
		t.Error("MustChangePassword should be set")
	}
}

func TestExecuteLogin_PropagatesDataAccessFailure(t *testing.T) {
	f := newGymFixture(t)
	f.members.err = errBackend

	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "dana@gym.test", Password: "dana-password"}, f.loginDeps())
	if !errors.Is(err, errBackend) {
		t.Errorf("error = %v, want %v", err, errBackend)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store failure must not look like bad credentials")
	}
}
