package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer implements Mailer using the SendGrid v3 API.
type SendGridMailer struct {
	apiKey    string
	fromName  string
	fromEmail string
	logger    *slog.Logger
}

// NewSendGridMailer creates a SendGrid-backed mailer.
func NewSendGridMailer(apiKey, fromName, fromEmail string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// Send delivers a single HTML email via SendGrid.
func (m *SendGridMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlBody)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}

	if response.StatusCode >= 400 {
		m.logger.ErrorContext(ctx, "sendgrid rejected message",
			slog.Int("status", response.StatusCode),
			slog.String("body", response.Body),
		)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	m.logger.InfoContext(ctx, "mail sent",
		slog.Int("status", response.StatusCode),
		slog.String("to", to),
		slog.String("subject", subject),
	)

	return nil
}
