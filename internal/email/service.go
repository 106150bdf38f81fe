// Package email sends notification mail over SMTP.
package email

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/careconnect/careconnect-api/internal/config"
)

type Service interface {
	SendPasswordReset(ctx context.Context, email string, token string, expiresAt time.Time) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer Dialer
	from   string
	appURL string
	logger *zap.Logger
}

// NewService returns an SMTP backed service, or one that only logs when email is disabled.
func NewService(cfg config.EmailConfig, logger *zap.Logger) Service {
	if !cfg.Enabled {
		return &logService{logger: logger}
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewSMTPService(d, cfg.From, cfg.AppURL, logger)
}

func NewSMTPService(dialer Dialer, from, appURL string, logger *zap.Logger) Service {
	return &smtpService{dialer: dialer, from: from, appURL: appURL, logger: logger}
}

func (s *smtpService) SendPasswordReset(ctx context.Context, email string, token string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, url.QueryEscape(token))
	body := fmt.Sprintf("A password reset was requested for your CareConnect account.\n\n"+
		"Use the link below before %s to choose a new password:\n\n%s\n\n"+
		"If you did not request this, you can ignore this message.",
		expiresAt.UTC().Format("2006-01-02 15:04 MST"), link)
	return s.SendCustom(ctx, email, "Reset your CareConnect password", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Debug("email sent", zap.String("subject", subject))
	return nil
}

type logService struct {
	logger *zap.Logger
}

func (s *logService) SendPasswordReset(_ context.Context, _ string, _ string, expiresAt time.Time) error {
	s.logger.Info("email disabled, skipping password reset", zap.Time("expires_at", expiresAt))
	return nil
}

func (s *logService) SendCustom(_ context.Context, _ string, subject string, _ string) error {
	s.logger.Info("email disabled, skipping message", zap.String("subject", subject))
	return nil
}
