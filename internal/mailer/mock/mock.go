package mock

import (
	"context"
	"log/slog"
	"time"
)

// MockMailer logs outgoing mail and always succeeds. Used in local
// development when no SendGrid key is configured. It simulates a 10ms delay
// to mimic real sending latency.
type MockMailer struct {
	logger *slog.Logger
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer(logger *slog.Logger) *MockMailer {
	return &MockMailer{logger: logger}
}

// Send logs the mail details and simulates a sending delay.
func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	time.Sleep(10 * time.Millisecond)

	m.logger.InfoContext(ctx, "mock mailer: mail sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(htmlBody)),
	)

	return nil
}
