package trainer

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName  = errors.New("trainer name cannot be empty")
	ErrEmptyEmail = errors.New("trainer email cannot be empty")
	ErrNotFound   = errors.New("trainer not found")
	ErrEmailTaken = errors.New("trainer email is already registered")
)

// Trainer is a staff member who runs lessons. A trainer logs in through the
// member record that shares its email.
type Trainer struct {
	ID         int64
	Name       string
	Email      string
	Speciality string
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
