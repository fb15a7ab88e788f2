package mail

import (
	"context"
	"fmt"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Service sends outbound email. Delivery is best-effort: approval flows
// must not fail because notification did.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

// AccessCodeMessage builds the teacher verification email.
func AccessCodeMessage(to, code string) Message {
	return Message{
		To:      to,
		Subject: "Your Teacher Verification Code",
		Text: fmt.Sprintf(`Your verification code is: %s

This code is valid for 24 hours.

If you did not request this, please ignore this email.`, code),
	}
}
