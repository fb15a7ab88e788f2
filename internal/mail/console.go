package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleService logs messages instead of delivering them. Used in dev or
// when no SendGrid API key is configured.
type ConsoleService struct {
	log zerolog.Logger
}

var _ Service = (*ConsoleService)(nil)

// NewConsoleService creates a log-only mail service.
func NewConsoleService(log zerolog.Logger) *ConsoleService {
	return &ConsoleService{log: log.With().Str("component", "console_mail").Logger()}
}

// Send writes the message to the log.
func (s *ConsoleService) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("Email (delivery disabled)")
	return nil
}
