package member_test

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"gym/internal/domain/member"
)

func init() {
	member.HashCost = bcrypt.MinCost
}

// TestMember_Validate tests validation of Member.
func TestMember_Validate(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr error
	}{
		{
			name:   "valid member",
			member: member.Member{Name: "Dana Reyes", Email: "dana@gym.test"},
		},
		{
			name:    "empty name",
			member:  member.Member{Name: "  ", Email: "dana@gym.test"},
			wantErr: member.ErrEmptyName,
		},
		{
			name:    "name too long",
			member:  member.Member{Name: strings.Repeat("a", 101), Email: "dana@gym.test"},
			wantErr: member.ErrNameTooLong,
		},
		{
			name:    "empty email",
			member:  member.Member{Name: "Dana"},
			wantErr: member.ErrEmptyEmail,
		},
		{
			name:    "email without at sign",
			member:  member.Member{Name: "Dana", Email: "dana.gym.test"},
			wantErr: member.ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestMember_SetPassword tests the SetPassword method.
func TestMember_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "deadlift-day", false},
		{"exactly 8 chars", "12345678", false},
		{"empty password", "", true},
		{"too short", "short", true},
		{"exactly 72 bytes", strings.Repeat("a", 72), false},
		{"73 bytes", strings.Repeat("a", 73), true},
		{"40 runes over 72 bytes", strings.Repeat("é", 40), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &member.Member{}
			err := m.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && m.PasswordHash == tt.password {
				t.Error("SetPassword() should hash the password, not store plaintext")
			}
		})
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := member.HashPassword(strings.Repeat("x", 80))
	if !errors.Is(err, member.ErrPasswordTooLong) {
		t.Errorf("HashPassword() error = %v, want ErrPasswordTooLong", err)
	}
}

// TestMember_CheckPassword tests the CheckPassword method.
func TestMember_CheckPassword(t *testing.T) {
	m := &member.Member{}
	if err := m.SetPassword("deadlift-day"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	if err := m.CheckPassword("deadlift-day"); err != nil {
		t.Errorf("CheckPassword(correct) = %v, want nil", err)
	}
	if err := m.CheckPassword("squat-day"); err != member.ErrWrongPassword {
		t.Errorf("CheckPassword(wrong) = %v, want ErrWrongPassword", err)
	}
	if err := (&member.Member{}).CheckPassword("deadlift-day"); err != member.ErrWrongPassword {
		t.Errorf("CheckPassword(no hash) = %v, want ErrWrongPassword", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := member.NormalizeEmail("  Dana@Gym.TEST "); got != "dana@gym.test" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "dana@gym.test")
	}
}
