// Package audit models the append-only trail of security-relevant actions:
// sign-ins, impersonation, password and role changes.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the area of the system an audit event belongs to.
type Category string

const (
	CategoryAuth          Category = "auth"
	CategoryImpersonation Category = "impersonation"
	CategoryMember        Category = "member"
	CategoryRole          Category = "role"
	CategoryTrainer       Category = "trainer"
)

// Action represents the action that occurred.
type Action string

const (
	ActionLogin          Action = "login"
	ActionLoginFailed    Action = "login_failed"
	ActionLogout         Action = "logout"
	ActionRegister       Action = "register"
	ActionPasswordChange Action = "password_change"
	ActionPasswordReset  Action = "password_reset"
	ActionStart          Action = "start"
	ActionStop           Action = "stop"
	ActionGrant          Action = "grant"
	ActionRevoke         Action = "revoke"
	ActionAssign         Action = "assign"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ResourceID   string    `json:"resource_id,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	Description  string    `json:"description,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

// NewEvent creates a new audit event with the current timestamp.
// PRE: action is non-empty
// POST: Returns an Event with a fresh id and info severity
func NewEvent(actorID, actorEmail string, category Category, action Action) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from an HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}
