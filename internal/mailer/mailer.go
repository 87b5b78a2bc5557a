// Package mailer delivers password-reset mail.
package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"workshophub/internal/middleware"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ResetMessage is the data rendered into a password-reset mail.
type ResetMessage struct {
	ToName    string
	ToAddress string
	Token     string
	ExpiresIn string
}

// Mailer sends transactional mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, msg ResetMessage) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client   sendClient
	fromName string
	from     string
}

// NewSendGridMailer builds a mailer for apiKey sending as from.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: "WorkshopHub",
		from:     from,
	}
}

// SendPasswordReset implements Mailer.
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	if msg.ToAddress == "" {
		return fmt.Errorf("send password reset: empty recipient")
	}

	plain, htmlBody := renderReset(msg)
	email := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		"Reset your WorkshopHub password",
		mail.NewEmail(msg.ToName, msg.ToAddress),
		plain,
		htmlBody,
	)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send password reset: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes mail to the structured log instead of delivering it. Used when no
// SendGrid key is configured.
type LogMailer struct{}

// SendPasswordReset implements Mailer.
func (LogMailer) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	middleware.Logger.InfoContext(ctx, "password reset mail (not delivered)",
		"to", maskAddress(msg.ToAddress), "expires_in", msg.ExpiresIn)
	return nil
}

// New picks SendGrid when apiKey is set, otherwise LogMailer.
func New(apiKey, from string) Mailer {
	if strings.TrimSpace(apiKey) == "" {
		return LogMailer{}
	}
	return NewSendGridMailer(apiKey, from)
}

func renderReset(msg ResetMessage) (string, string) {
	name := msg.ToName
	if name == "" {
		name = "there"
	}
	plain := fmt.Sprintf(
		"Hi %s,\n\nUse this token to reset your password: %s\nIt expires in %s.\n\n"+
			"If you did not request a reset you can ignore this message.\n",
		name, msg.Token, msg.ExpiresIn)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Use this token to reset your password:</p><p><code>%s</code></p>`+
			`<p>It expires in %s.</p><p>If you did not request a reset you can ignore this message.</p>`,
		html.EscapeString(name), html.EscapeString(msg.Token), html.EscapeString(msg.ExpiresIn))
	return plain, htmlBody
}

// maskAddress hides the local part of an address for logging.
func maskAddress(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
