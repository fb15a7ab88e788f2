package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridService delivers mail through the SendGrid v3 API.
type SendgridService struct {
	key  string
	from *sgmail.Email
	log  zerolog.Logger
}

var _ Service = (*SendgridService)(nil)

// NewSendgridService creates a SendGrid-backed mail service.
func NewSendgridService(apiKey, fromName, fromAddr string, log zerolog.Logger) *SendgridService {
	return &SendgridService{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromAddr),
		log:  log.With().Str("component", "sendgrid_mail").Logger(),
	}
}

// Send delivers a single plain-text message.
func (s *SendgridService) Send(ctx context.Context, msg Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}

	s.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}
