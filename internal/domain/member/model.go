package member

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// HashCost is the bcrypt cost used by SetPassword. Tests lower it to bcrypt.MinCost.
var HashCost = 12

// Domain errors
var (
	ErrEmptyName        = errors.New("member name cannot be empty")
	ErrNameTooLong      = errors.New("member name cannot exceed 100 characters")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password cannot exceed 72 bytes")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Lookup errors returned by member stores. A miss is never a data-access failure.
var (
	ErrNotFound   = errors.New("member not found")
	ErrEmailTaken = errors.New("email is already registered")
)

// Member is the durable credential record of a gym member.
// Trainer and admin status are not stored here; they are resolved from other tables.
type Member struct {
	ID                 int64
	Name               string
	Email              string
	PasswordHash       string
	MustChangePassword bool
	CreatedAt          time.Time
}

// NormalizeEmail trims whitespace and lower-cases an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the Member has valid data.
// PRE: Member struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(m.Email) == "" {
		return ErrEmptyEmail
	}
	if len(m.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty, >= MinPasswordLength characters and <= MaxPasswordLength bytes
// POST: PasswordHash is set to a salted bcrypt hash
func (m *Member) SetPassword(plaintext string) error {
	hash, err := HashPassword(plaintext)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Member fields are not mutated
func (m *Member) CheckPassword(plaintext string) error {
	if m.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// HashPassword derives a bcrypt hash for plaintext after applying the password rules.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	// bcrypt only reads the first 72 bytes.
	if len(plaintext) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
