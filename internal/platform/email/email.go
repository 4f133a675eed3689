package email

import (
	"context"
	"strings"

	"gopkg.in/gomail.v2"

	"eval360/internal/domain/notifications"
	"eval360/internal/platform/config"
)

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, from, to, subject, body string) error {
	return nil
}

type smtpMailer struct {
	dialer *gomail.Dialer
}

// New returns a mailer that drops everything unless email is enabled and an
// SMTP host is configured.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)}
}

func (s *smtpMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(buildMessage(from, to, subject, body))
}

func buildMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
