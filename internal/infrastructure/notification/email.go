package notification

import (
	"context"
	"fmt"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailSender implements NotificationSender over SMTP. Delivery is best
// effort: callers log failures and move on, the financial transaction has
// already committed by the time a notification goes out.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewEmailSender creates an SMTP-backed notification sender
func NewEmailSender(cfg config.MailConfig, logger *zap.Logger) (*EmailSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: host cannot be empty")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail: from address cannot be empty")
	}

	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}, nil
}

// Notify sends an email to the client, attaching the rendered ticket when a
// path is given. Clients without an email address are skipped silently.
func (s *EmailSender) Notify(ctx context.Context, client *registry.Client, subject, body string, attachmentPath string) error {
	if client.Email == "" {
		s.logger.Debug("skipping notification, client has no email",
			zap.String("client_id", client.ID.String()),
		)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", client.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if attachmentPath != "" {
		m.Attach(attachmentPath)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send notification to %s: %w", client.Email, err)
		}
	}

	s.logger.Info("notification sent",
		zap.String("client_id", client.ID.String()),
		zap.String("to", client.Email),
		zap.String("subject", subject),
	)
	return nil
}

// Ensure EmailSender implements NotificationSender
var _ billing.NotificationSender = (*EmailSender)(nil)
