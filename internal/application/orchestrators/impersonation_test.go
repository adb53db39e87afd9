package orchestrators

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"gym/internal/domain/audit"
	"gym/internal/domain/identity"
)

func TestImpersonation_AdminSevenImpersonatesFortyTwo(t *testing.T) {
	f := newGymFixture(t)
	ctx := context.Background()
	sess := newMockSession()
	deps := f.impersonationDeps(sess)

	imp, err := ExecuteStartImpersonation(ctx, StartImpersonationInput{AdminID: "7", TargetMemberID: 42}, deps)
	if err != nil {
		t.Fatalf("ExecuteStartImpersonation() error = %v", err)
	}
	if !rolesEqual(imp.Roles, []identity.Role{identity.RoleMember}) {
		t.Errorf("Roles = %v, want {Member}", imp.Roles)
	}
	if imp.MemberIDString() != "42" {
		t.Errorf("MemberID = %s, want 42", imp.MemberIDString())
	}
	if !imp.IsImpersonating() || imp.Impersonation.OriginalAdminID != "7" {
		t.Errorf("Impersonation = %+v, want impersonator 7", imp.Impersonation)
	}
	if imp.MustChangePassword {
		t.Error("impersonated identity must not carry must-change")
	}
	if sess.values[OriginalAdminIDKey] != "7" {
		t.Errorf("session marker = %q, want 7", sess.values[OriginalAdminIDKey])
	}

	res, err := ExecuteStopImpersonation(ctx, StopImpersonationInput{}, deps)
	if err != nil {
		t.Fatalf("ExecuteStopImpersonation() error = %v", err)
	}
	if res.Outcome != StopRestoreAdmin {
		t.Fatalf("Outcome = %v, want StopRestoreAdmin", res.Outcome)
	}
	if !res.Identity.HasRole(identity.RoleAdmin) || res.Identity.MemberIDString() != "7" {
		t.Errorf("restored identity = %+v, want admin member 7", res.Identity)
	}
	if _, ok := sess.values[OriginalAdminIDKey]; ok {
		t.Error("marker should be cleared after stop")
	}

	want := []audit.Action{audit.ActionStart, audit.ActionStop}
	if got := f.audit.actions(); !reflect.DeepEqual(got, want) {
		t.Errorf("audit actions = %v, want %v", got, want)
	}
}

func TestImpersonation_RoundTripEqualsFreshLogin(t *testing.T) {
	f := newGymFixture(t)
	ctx := context.Background()
	deps := f.impersonationDeps(newMockSession())

	fresh, err := ExecuteLogin(ctx, LoginInput{Email: "owner@gym.test", Password: "owner-password"}, f.loginDeps())
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if _, err := ExecuteStartImpersonation(ctx, StartImpersonationInput{AdminID: fresh.MemberIDString(), TargetMemberID: 42}, deps); err != nil {
		t.Fatalf("start error = %v", err)
	}
	res, err := ExecuteStopImpersonation(ctx, StopImpersonationInput{}, deps)
	if err != nil {
		t.Fatalf("stop error = %v", err)
	}
	if !reflect.DeepEqual(res.Identity, fresh) {
		t.Errorf("restored = %+v, want fresh login %+v", res.Identity, fresh)
	}
}

func TestStartImpersonation_TargetNotFoundLeavesSessionUntouched(t *testing.T) {
	f := newGymFixture(t)
	sess := newMockSession()

	_, err := ExecuteStartImpersonation(context.Background(), StartImpersonationInput{AdminID: "7", TargetMemberID: 999}, f.impersonationDeps(sess))
	if !errors.Is(err, ErrImpersonationTargetNotFound) {
		t.Errorf("error = %v, want ErrImpersonationTargetNotFound", err)
	}
	if len(sess.values) != 0 {
		t.Errorf("session = %v, want untouched", sess.values)
	}
}

func TestStartImpersonation_SecondStartOverwritesMarker(t *testing.T) {
	f := newGymFixture(t)
	sess := newMockSession()
	deps := f.impersonationDeps(sess)
	ctx := context.Background()

	_, _ = ExecuteStartImpersonation(ctx, StartImpersonationInput{AdminID: "7", TargetMemberID: 42}, deps)
	imp, err := ExecuteStartImpersonation(ctx, StartImpersonationInput{AdminID: "7", TargetMemberID: 12}, deps)
	if err != nil {
		t.Fatalf("second start error = %v", err)
	}
	if imp.MemberID != 12 || sess.values[OriginalAdminIDKey] != "7" {
		t.Errorf("last write should win: identity %d, marker %q", imp.MemberID, sess.values[OriginalAdminIDKey])
	}
}

func TestStopImpersonation_Branches(t *testing.T) {
	tests := []struct {
		name        string
		marker      string
		fallback    string
		wantOutcome StopOutcome
		wantMember  int64
	}{
		{"no marker no fallback signs out", "", "", StopSignOut, 0},
		{"fallback used when marker absent", "", "7", StopRestoreAdmin, 7},
		{"marker wins over fallback", "7", "42", StopRestoreAdmin, 7},
		{"stale admin signs out", "999", "", StopSignOut, 0},
		{"malformed admin id signs out", "seven", "", StopSignOut, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGymFixture(t)
			sess := newMockSession()
			if tt.marker != "" {
				sess.values[OriginalAdminIDKey] = tt.marker
			}

			res, err := ExecuteStopImpersonation(context.Background(), StopImpersonationInput{FallbackAdminID: tt.fallback}, f.impersonationDeps(sess))
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			if res.Identity.MemberID != tt.wantMember {
				t.Errorf("MemberID = %d, want %d", res.Identity.MemberID, tt.wantMember)
			}
			if _, ok := sess.values[OriginalAdminIDKey]; ok {
				t.Error("marker must be cleared on every branch")
			}
		})
	}
}

func TestStopImpersonation_StoreFailureStillClearsMarker(t *testing.T) {
	f := newGymFixture(t)
	f.members.err = errBackend
	sess := newMockSession()
	sess.values[OriginalAdminIDKey] = "7"

	_, err := ExecuteStopImpersonation(context.Background(), StopImpersonationInput{}, f.impersonationDeps(sess))
	if !errors.Is(err, errBackend) {
		t.Errorf("error = %v, want %v", err, errBackend)
	}
	if _, ok := sess.values[OriginalAdminIDKey]; ok {
		t.Error("marker should be cleared even when the lookup fails")
	}
}
