package orchestrators

import (
	"context"
	"errors"
	"testing"

	"gym/internal/domain/identity"
	"gym/internal/domain/member"
)

func changeDeps(f *gymFixture) ChangePasswordDeps {
	return ChangePasswordDeps{MemberStore: f.members, Roles: f.resolver, Audit: f.audit}
}

func TestExecuteChangePassword_ClearsFlagAndRebuilds(t *testing.T) {
	f := newGymFixture(t)
	f.members.add(t, 50, "New Member", "new@gym.test", "temporary-pw", true)
	ctx := context.Background()

	current, err := ExecuteLogin(ctx, LoginInput{Email: "new@gym.test", Password: "temporary-pw"}, f.loginDeps())
	if err != nil {
		t.Fatalf("login error = %v", err)
	}

	next, err := ExecuteChangePassword(ctx, ChangePasswordInput{
		Identity: current, CurrentPassword: "temporary-pw", NewPassword: "brand-new-pw",
	}, changeDeps(f))
	if err != nil {
		t.Fatalf("ExecuteChangePassword() error = %v", err)
	}
	if next.MustChangePassword {
		t.Error("rebuilt identity must not carry the must-change flag")
	}
	if f.members.members[50].MustChangePassword {
		t.Error("stored flag should be cleared")
	}

	// Resupplying credentials works again with no leftover flag.
	again, err := ExecuteChangePassword(ctx, ChangePasswordInput{
		Identity: next, CurrentPassword: "brand-new-pw", NewPassword: "another-new-pw",
	}, changeDeps(f))
	if err != nil {
		t.Fatalf("second change error = %v", err)
	}
	if again.MustChangePassword {
		t.Error("second change should not set the flag")
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "new@gym.test", Password: "another-new-pw"}, f.loginDeps()); err != nil {
		t.Errorf("login with new password error = %v", err)
	}
}

func TestExecuteChangePassword_Rejections(t *testing.T) {
	f := newGymFixture(t)
	dana := identity.Identity{MemberID: 42, Roles: []identity.Role{identity.RoleMember}}
	impersonated := dana
	impersonated.Impersonation = &identity.Impersonation{OriginalAdminID: "7"}

	tests := []struct {
		name  string
		input ChangePasswordInput
		want  error
	}{
		{"impersonating", ChangePasswordInput{Identity: impersonated, CurrentPassword: "dana-password", NewPassword: "whatever-pw"}, ErrChangeWhileImpersonating},
		{"missing fields", ChangePasswordInput{Identity: dana, CurrentPassword: "", NewPassword: "whatever-pw"}, ErrPasswordFieldsRequired},
		{"wrong current", ChangePasswordInput{Identity: dana, CurrentPassword: "nope-nope", NewPassword: "whatever-pw"}, ErrCurrentPasswordWrong},
		{"same password", ChangePasswordInput{Identity: dana, CurrentPassword: "dana-password", NewPassword: "dana-password"}, ErrNewPasswordSame},
		{"too short", ChangePasswordInput{Identity: dana, CurrentPassword: "dana-password", NewPassword: "short"}, member.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteChangePassword(context.Background(), tt.input, changeDeps(f))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
