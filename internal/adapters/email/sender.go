// Package email delivers account notifications to members.
package email

import (
	"context"
	"fmt"
	"html"
	"time"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Receipt is what the provider reports for an accepted message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a Message through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// TemporaryPassword builds the notification sent after an admin resets a password.
// PRE: to and tempPassword are non-empty
func TemporaryPassword(to, name, tempPassword string) Message {
	return Message{
		To:      to,
		Subject: "Your gym account password was reset",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>An administrator reset your password. Your temporary password is <strong>%s</strong>.</p><p>You will be asked to choose a new password when you sign in.</p>",
			html.EscapeString(name), html.EscapeString(tempPassword)),
		Text: fmt.Sprintf(
			"Hi %s,\n\nAn administrator reset your password. Your temporary password is %s\n\nYou will be asked to choose a new password when you sign in.\n",
			name, tempPassword),
	}
}
