package orchestrators

import (
	"context"
	"errors"
	"testing"
)

func TestRoleResolver_TrainerLookups(t *testing.T) {
	f := newGymFixture(t)
	ctx := context.Background()

	tests := []struct {
		email  string
		wantID int64
		wantOK bool
	}{
		{"kim@gym.test", 3, true},
		{"  KIM@Gym.Test ", 3, true},
		{"dana@gym.test", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}
	for _, tt := range tests {
		id, ok, err := f.resolver.TrainerIDForEmail(ctx, tt.email)
		if err != nil {
			t.Errorf("TrainerIDForEmail(%q) error = %v", tt.email, err)
		}
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("TrainerIDForEmail(%q) = %d, %v; want %d, %v", tt.email, id, ok, tt.wantID, tt.wantOK)
		}
		isTrainer, _ := f.resolver.IsTrainer(ctx, tt.email)
		if isTrainer != tt.wantOK {
			t.Errorf("IsTrainer(%q) = %v, want %v", tt.email, isTrainer, tt.wantOK)
		}
	}
}

func TestRoleResolver_IsAdmin(t *testing.T) {
	f := newGymFixture(t)
	ctx := context.Background()

	if ok, err := f.resolver.IsAdmin(ctx, " Owner@GYM.test"); err != nil || !ok {
		t.Errorf("IsAdmin(owner) = %v, %v; want true", ok, err)
	}
	if ok, _ := f.resolver.IsAdmin(ctx, "dana@gym.test"); ok {
		t.Error("IsAdmin(dana) should be false")
	}

	calls := f.roles.calls
	if ok, err := f.resolver.IsAdmin(ctx, ""); ok || err != nil {
		t.Errorf("IsAdmin(blank) = %v, %v; want false, nil", ok, err)
	}
	if f.roles.calls != calls {
		t.Error("blank email should not reach the store")
	}
}

func TestRoleResolver_PropagatesStoreFailure(t *testing.T) {
	f := newGymFixture(t)
	f.trainers.err = errBackend
	f.roles.err = errBackend

	if _, _, err := f.resolver.TrainerIDForEmail(context.Background(), "kim@gym.test"); !errors.Is(err, errBackend) {
		t.Errorf("TrainerIDForEmail error = %v, want %v", err, errBackend)
	}
	if _, err := f.resolver.IsAdmin(context.Background(), "owner@gym.test"); !errors.Is(err, errBackend) {
		t.Errorf("IsAdmin error = %v, want %v", err, errBackend)
	}
}
